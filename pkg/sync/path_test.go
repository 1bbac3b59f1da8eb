package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpectedPath(t *testing.T) {
	tests := []struct {
		name      string
		inputFile string
		exp       string
		expError  bool
	}{
		{
			name:      "Markdown",
			inputFile: "/vault/notes/x.md",
			exp:       "/export/notes/x.pdf",
		},
		{
			name:      "MarkdownUppercase",
			inputFile: "/vault/notes/README.MD",
			exp:       "/export/notes/README.pdf",
		},
		{
			name:      "MarkdownMixedCase",
			inputFile: "/vault/notes/x.Md",
			exp:       "/export/notes/x.pdf",
		},
		{
			name:      "MarkdownWithDotsInStem",
			inputFile: "/vault/notes/v1.2.md",
			exp:       "/export/notes/v1.2.pdf",
		},
		{
			name:      "NonMarkdownKeepsExtension",
			inputFile: "/vault/assets/img.png",
			exp:       "/export/assets/img.png",
		},
		{
			// Only .md is special -- .markdown is treated as a plain file.
			name:      "LongMarkdownExtension",
			inputFile: "/vault/notes/x.markdown",
			exp:       "/export/notes/x.markdown",
		},
		{
			name:      "NoExtension",
			inputFile: "/vault/Makefile",
			exp:       "/export/Makefile",
		},
		{
			name:      "TopLevelFile",
			inputFile: "/vault/x.md",
			exp:       "/export/x.pdf",
		},
		{
			name:      "OutsideInputRoot",
			inputFile: "/elsewhere/x.md",
			expError:  true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			actual, err := ExpectedPath(test.inputFile, "/vault", "/export")
			if test.expError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, test.exp, actual)
		})
	}
}

func TestExpectedPathDeterministic(t *testing.T) {
	first, err := ExpectedPath("/vault/a/b/c.md", "/vault", "/export")
	assert.NoError(t, err)
	second, err := ExpectedPath("/vault/a/b/c.md", "/vault", "/export")
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}
