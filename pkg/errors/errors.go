package errors

import (
	"fmt"
)

// New returns an error with the given message.
func New(msg string) error {
	return errorString{msg}
}

type errorString struct {
	msg string
}

func (err errorString) Error() string {
	return err.msg
}

// ContextError annotates an error with the operation that caused it. The
// resulting message reads like a call stack: "parse config: read file: ...".
type ContextError struct {
	Context string
	Err     error
}

// WithContext wraps `err` with a short description of the operation that
// failed.
func WithContext(err error, context string) error {
	return ContextError{Context: context, Err: err}
}

func (err ContextError) Error() string {
	return fmt.Sprintf("%s: %s", err.Context, err.Err)
}

func (err ContextError) Unwrap() error {
	return err.Err
}

// FriendlyError is an error whose message is meant to be shown to the user
// directly, without the wrapping context. It's used for expected failures
// that have a remediation the user should read, such as a converter missing
// from the PATH.
type FriendlyError struct {
	Message string
}

// NewFriendlyError creates a FriendlyError with a formatted message.
func NewFriendlyError(format string, args ...interface{}) error {
	return FriendlyError{Message: fmt.Sprintf(format, args...)}
}

func (err FriendlyError) Error() string {
	return err.Message
}

// FriendlyMessage implements the friendly interface.
func (err FriendlyError) FriendlyMessage() string {
	return err.Message
}

type friendly interface {
	FriendlyMessage() string
}

// GetPrintableMessage returns the message that should be shown to the user
// for `err`. If the error (or any error it wraps) has a friendly message,
// that message is returned on its own. Otherwise, the full context chain is
// returned.
func GetPrintableMessage(err error) string {
	for unwrapped := err; unwrapped != nil; {
		if friendlyErr, ok := unwrapped.(friendly); ok {
			return friendlyErr.FriendlyMessage()
		}

		contextErr, ok := unwrapped.(ContextError)
		if !ok {
			break
		}
		unwrapped = contextErr.Err
	}
	return err.Error()
}
