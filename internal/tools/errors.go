package tools

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docedit/internal/docpos"
	"github.com/dgallion1/docedit/internal/editor"
)

var (
	ErrToolNotFound          = errors.New("tool not found")
	ErrToolNameEmpty         = errors.New("tool name cannot be empty")
	ErrHandlerNil            = errors.New("tool handler cannot be nil")
	ErrToolAlreadyRegistered = errors.New("tool already registered")
	ErrMissingRequiredArg    = errors.New("missing required argument")
	ErrInvalidArgs           = errors.New("invalid arguments")
	ErrNotFound              = errors.New("not found")
	ErrNothingChanged        = errors.New("document unchanged")
	ErrInternal              = errors.New("internal error")
	ErrCanceled              = errors.New("canceled")
)

// Error codes returned to agents alongside the message.
const (
	CodeInvalidArgs   = "INVALID_ARGS"
	CodeOutOfRange    = "OUT_OF_RANGE"
	CodeNotFound      = "NOT_FOUND"
	CodeCommandFailed = "COMMAND_FAILED"
	CodeNoChange      = "NO_CHANGE"
	CodeUnknownTool   = "UNKNOWN_TOOL"
	CodeCanceled      = "CANCELED"
	CodeInternal      = "INTERNAL"
)

// ErrorCode classifies an error returned by a tool.
func ErrorCode(err error) string {
	var rerr *docpos.RangeError
	switch {
	case errors.As(err, &rerr):
		return CodeOutOfRange
	case errors.Is(err, ErrInvalidArgs), errors.Is(err, ErrMissingRequiredArg):
		return CodeInvalidArgs
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, editor.ErrCommandFailed):
		return CodeCommandFailed
	case errors.Is(err, ErrNothingChanged):
		return CodeNoChange
	case errors.Is(err, ErrToolNotFound):
		return CodeUnknownTool
	case errors.Is(err, ErrCanceled):
		return CodeCanceled
	}
	return CodeInternal
}

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgs, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

// commandFailed adds the attempted coordinates to a failed transaction.
// The editor's own command name is dropped so the message names the
// operation once.
func commandFailed(op string, from, to int, err error) error {
	reason := err.Error()
	var cerr *editor.CommandError
	if errors.As(err, &cerr) {
		reason = cerr.Reason
	}
	if to < 0 {
		return fmt.Errorf("%s at %d: %w: %s", op, from, editor.ErrCommandFailed, reason)
	}
	return fmt.Errorf("%s [%d, %d): %w: %s", op, from, to, editor.ErrCommandFailed, reason)
}
