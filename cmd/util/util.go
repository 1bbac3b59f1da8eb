package util

import (
	"fmt"
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"

	"github.com/mdexport/mdexport/pkg/errors"
)

// HandleFatalError prints the user-facing message for `err` and exits with a
// non-zero status. It's the single exit path for command failures so that
// friendly errors are shown without their wrapping context.
func HandleFatalError(err error) {
	fmt.Fprintln(os.Stderr, errors.GetPrintableMessage(err))
	log.WithError(err).Debug("Fatal error")
	os.Exit(1)
}

// HandlePanic recovers from panics in the main goroutine so that we can show
// a readable message rather than a bare stack trace.
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	fmt.Fprintf(os.Stderr, "mdexport crashed: %v\n\n%s", r, debug.Stack())
	os.Exit(1)
}
