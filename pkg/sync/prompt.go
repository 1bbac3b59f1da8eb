package sync

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Answer is the operator's response to one stale-item prompt.
type Answer int

const (
	// AnswerSkip keeps the item. It's the default on empty input.
	AnswerSkip Answer = iota

	// AnswerDelete deletes the item.
	AnswerDelete

	// AnswerDeleteAll deletes the item and every remaining stale item
	// without further prompts.
	AnswerDeleteAll

	// AnswerSkipAll keeps the item and every remaining stale item without
	// further prompts.
	AnswerSkipAll
)

// StaleItem is one entry under the output root with no counterpart derived
// from the input root.
type StaleItem struct {
	// RelPath is the item's path relative to the output root.
	RelPath string

	// IsDir records whether the item is a directory. Directories are
	// deleted recursively.
	IsDir bool
}

func (item StaleItem) kind() string {
	if item.IsDir {
		return "directory"
	}
	return "file"
}

// StalePrompter decides what to do with one stale item. The cleanup phase
// calls it once per item until a sticky answer is returned.
type StalePrompter interface {
	AskDelete(item StaleItem) (Answer, error)
}

// Mocked for unit testing.
var (
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin
)

// TerminalPrompter asks the operator on the terminal with a single-character
// y/N/a/s choice per item. Unrecognized input re-asks.
type TerminalPrompter struct {
	reader *bufio.Reader
}

// NewTerminalPrompter returns a prompter reading from the process's stdin.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{reader: bufio.NewReader(stdin)}
}

// AskDelete implements StalePrompter.
func (p *TerminalPrompter) AskDelete(item StaleItem) (Answer, error) {
	for {
		fmt.Fprintf(stdout, "  Delete stale %s %q? [y/N/a(ll)/s(kip all)]: ",
			item.kind(), item.RelPath)

		line, err := p.reader.ReadString('\n')
		if err != nil {
			return AnswerSkip, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "n":
			return AnswerSkip, nil
		case "y":
			return AnswerDelete, nil
		case "a":
			return AnswerDeleteAll, nil
		case "s":
			return AnswerSkipAll, nil
		}
	}
}

// SkipAllPrompter never deletes anything. It's used for unattended runs
// (watch mode), where prompting would block forever and deleting without a
// human in the loop isn't acceptable.
type SkipAllPrompter struct{}

// AskDelete implements StalePrompter.
func (SkipAllPrompter) AskDelete(_ StaleItem) (Answer, error) {
	return AnswerSkipAll, nil
}
