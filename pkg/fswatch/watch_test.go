package fswatch

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"

	"github.com/mdexport/mdexport/pkg/errors"
)

func TestGetPathsToWatch(t *testing.T) {
	fs = afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "/vault/sub/file.md", []byte("# x"), 0644))
	assert.NoError(t, afero.WriteFile(fs, "/other/a.txt", []byte("a"), 0644))
	assert.NoError(t, fs.MkdirAll("/vault/empty", 0755))

	paths, err := getPathsToWatch([]string{"/vault", "/other"})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"/vault",
		"/vault/sub",
		"/vault/sub/file.md",
		"/vault/empty",
		"/other",
		"/other/a.txt",
	}, paths)
}

func TestGetPathsToWatchMissingRoot(t *testing.T) {
	fs = afero.NewMemMapFs()

	_, err := getPathsToWatch([]string{"/never-created"})
	assert.Equal(t, errors.FileNotFound{Path: "/never-created"}, err)
}

func TestGetPathsToWatchFileRoot(t *testing.T) {
	fs = afero.NewMemMapFs()
	assert.NoError(t, afero.WriteFile(fs, "/vault.md", []byte("# x"), 0644))

	_, err := getPathsToWatch([]string{"/vault.md"})
	assert.Error(t, err)
}

func TestDebounce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	in := make(chan struct{}, 8)
	out := Debounce(in, clock, time.Second)

	// A burst of events produces exactly one output once things go quiet.
	in <- struct{}{}
	clock.BlockUntil(1)
	in <- struct{}{}
	clock.BlockUntil(2)
	clock.Advance(time.Second)
	<-out

	// A later event starts a fresh quiet period.
	in <- struct{}{}
	clock.BlockUntil(1)
	clock.Advance(time.Second)
	<-out

	select {
	case <-out:
		t.Fatal("unexpected extra event")
	default:
	}
}
