package sync

import (
	"io/ioutil"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/mdexport/mdexport/pkg/errors"
)

// fakeConverter pretends to convert by writing a fixed payload to the
// output path. Inputs whose path contains `failOn` fail instead.
type fakeConverter struct {
	installErr error
	failOn     string
	converted  []string
}

func (c *fakeConverter) Name() string {
	return "fake"
}

func (c *fakeConverter) CheckInstalled() error {
	return c.installErr
}

func (c *fakeConverter) Convert(input, output string) error {
	if c.failOn != "" && strings.Contains(input, c.failOn) {
		return errors.New("conversion failed")
	}

	c.converted = append(c.converted, input)
	return afero.WriteFile(fs, output, []byte("%PDF-1.4 fake"), 0644)
}

func TestProcessDirectory(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard
	converter := &fakeConverter{}
	syncer := New(converter, SkipAllPrompter{})

	modTime := time.Date(2024, 3, 14, 9, 26, 53, 0, time.UTC)
	writeFiles(t, map[string]string{
		"/vault/notes/x.md":     "# x",
		"/vault/assets/img.png": "png bytes",
	})
	assert.NoError(t, fs.Chtimes("/vault/assets/img.png", modTime, modTime))

	counters, err := syncer.processDirectory("/vault", "/export")
	assert.NoError(t, err)
	assert.Equal(t, Counters{Converted: 1, Copied: 1}, counters)

	assert.Equal(t, []string{"/vault/notes/x.md"}, converter.converted)

	pdf, err := afero.ReadFile(fs, "/export/notes/x.pdf")
	assert.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(pdf))

	// The copy is byte-identical and keeps the source's modtime.
	png, err := afero.ReadFile(fs, "/export/assets/img.png")
	assert.NoError(t, err)
	assert.Equal(t, "png bytes", string(png))

	fi, err := fs.Stat("/export/assets/img.png")
	assert.NoError(t, err)
	assert.Equal(t, modTime, fi.ModTime())
}

func TestProcessMirrorsEmptyDirectories(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard
	syncer := New(&fakeConverter{}, SkipAllPrompter{})

	writeFiles(t, map[string]string{"/vault/a.txt": "a"})
	assert.NoError(t, fs.MkdirAll("/vault/empty/nested", 0755))

	_, err := syncer.processDirectory("/vault", "/export")
	assert.NoError(t, err)

	exists, err := afero.DirExists(fs, "/export/empty/nested")
	assert.NoError(t, err)
	assert.True(t, exists)
}

func TestProcessIsolatesFailures(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard
	converter := &fakeConverter{failOn: "broken"}
	syncer := New(converter, SkipAllPrompter{})

	writeFiles(t, map[string]string{
		"/vault/broken.md": "# fails",
		"/vault/works.md":  "# ok",
		"/vault/plain.txt": "ok",
	})

	counters, err := syncer.processDirectory("/vault", "/export")
	assert.NoError(t, err)
	assert.Equal(t, Counters{Converted: 1, Copied: 1, Errors: 1}, counters)

	// The failed file left no output, and the rest were unaffected.
	assertExists(t, false, "/export/broken.pdf")
	assertExists(t, true, "/export/works.pdf")
	assertExists(t, true, "/export/plain.txt")
}

func TestProcessOverwritesExistingOutput(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard
	syncer := New(&fakeConverter{}, SkipAllPrompter{})

	writeFiles(t, map[string]string{
		"/vault/a.txt":  "new contents",
		"/export/a.txt": "old contents that are longer",
	})

	counters, err := syncer.processDirectory("/vault", "/export")
	assert.NoError(t, err)
	assert.Equal(t, Counters{Copied: 1}, counters)

	contents, err := afero.ReadFile(fs, "/export/a.txt")
	assert.NoError(t, err)
	assert.Equal(t, "new contents", string(contents))
}
