package model

import "errors"

// Error kinds surfaced by the relay. Callers match them with errors.Is.
var (
	ErrInvalidReference = errors.New("invalid pull request reference")
	ErrValidation       = errors.New("validation failed")
	ErrInvalidStrategy  = errors.New("invalid merge strategy")
	ErrToolUnavailable  = errors.New("gh CLI unavailable")
	ErrAuthentication   = errors.New("gh CLI not authenticated")
	ErrToolExecution    = errors.New("gh CLI execution failed")
)

// Error is a classified failure. Message is safe to show to a user; Err holds
// the underlying cause, which is only ever logged.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError creates an Error of the given kind. cause may be nil.
func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Is reports whether target is the kind of this error.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the user-facing message of a classified error, or
// fallback for anything else.
func UserMessage(err error, fallback string) string {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Message
	}
	return fallback
}

// Detail returns the underlying cause text of a classified error, or the
// whole error text otherwise. Empty when there is no cause.
func Detail(err error) string {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		if relayErr.Err == nil {
			return ""
		}
		return relayErr.Err.Error()
	}
	return err.Error()
}
