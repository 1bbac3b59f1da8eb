package sync

import (
	"io/ioutil"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/mdexport/mdexport/pkg/config"
	"github.com/mdexport/mdexport/pkg/errors"
)

func TestRunNoMappings(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard

	// The converter isn't even checked when there's nothing to do.
	converter := &fakeConverter{installErr: errors.New("not installed")}
	syncer := New(converter, SkipAllPrompter{})
	assert.NoError(t, syncer.Run(nil))
}

func TestRunAbortsOnMissingConverter(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard
	writeFiles(t, map[string]string{"/vault/x.md": "# x"})

	converter := &fakeConverter{installErr: errors.New("pandoc not found")}
	syncer := New(converter, SkipAllPrompter{})

	err := syncer.Run([]config.Mapping{{Input: "/vault", Output: "/export"}})
	assert.Error(t, err)

	// No mapping was touched: the output root was never created.
	assertExists(t, false, "/export")
}

func TestRunSkipsMissingInputRoot(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard
	writeFiles(t, map[string]string{"/vault-b/x.md": "# x"})

	converter := &fakeConverter{}
	syncer := New(converter, SkipAllPrompter{})

	err := syncer.Run([]config.Mapping{
		{Input: "/vault-a", Output: "/export-a"},
		{Input: "/vault-b", Output: "/export-b"},
	})
	assert.NoError(t, err)

	// The first mapping was skipped, the second still ran.
	assertExists(t, false, "/export-a")
	assertExists(t, true, "/export-b/x.pdf")
}

func TestRunFullSync(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard
	writeFiles(t, map[string]string{
		"/vault/notes/x.md":     "# x",
		"/vault/assets/img.png": "png",
	})
	writeFiles(t, map[string]string{
		"/export/outdated/old.pdf": "stale",
	})

	converter := &fakeConverter{}
	prompter := &scriptedPrompter{t: t, answers: []Answer{AnswerDeleteAll}}
	syncer := New(converter, prompter)
	mappings := []config.Mapping{{Input: "/vault", Output: "/export"}}

	assert.NoError(t, syncer.Run(mappings))

	assertExists(t, true, "/export/notes/x.pdf")
	assertExists(t, true, "/export/assets/img.png")
	assertExists(t, false, "/export/outdated")

	// Running again on an unchanged input is a no-op for cleanup: the
	// output tree exactly matches expectations, so nothing prompts.
	rerunPrompter := &scriptedPrompter{t: t}
	assert.NoError(t, New(converter, rerunPrompter).Run(mappings))
	assert.Empty(t, rerunPrompter.asked)

	stale, err := findStale("/vault", "/export")
	assert.NoError(t, err)
	assert.Empty(t, stale)
}

func TestRunSkipAllKeepsStaleOutput(t *testing.T) {
	fs = afero.NewMemMapFs()
	stdout = ioutil.Discard
	writeFiles(t, map[string]string{"/vault/x.md": "# x"})
	writeFiles(t, map[string]string{
		"/export/stale/old.pdf":   "stale",
		"/export/also-stale.test": "stale",
	})

	prompter := &scriptedPrompter{t: t, answers: []Answer{AnswerSkipAll}}
	syncer := New(&fakeConverter{}, prompter)

	err := syncer.Run([]config.Mapping{{Input: "/vault", Output: "/export"}})
	assert.NoError(t, err)

	// One prompt, then everything else was skipped without asking.
	assert.Len(t, prompter.asked, 1)
	assertExists(t, true, "/export/stale/old.pdf")
	assertExists(t, true, "/export/also-stale.test")
	assertExists(t, true, "/export/x.pdf")
}
