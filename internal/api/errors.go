package api

import (
	"errors"
	"fmt"
)

// Kind classifies a failed operation
type Kind int

const (
	// KindValidation: a required field was empty; nothing was sent.
	KindValidation Kind = iota + 1
	// KindUnauthorized: token missing or rejected; the session was cleared.
	KindUnauthorized
	// KindNotFoundOrForbidden: the note does not exist or is not the caller's.
	KindNotFoundOrForbidden
	// KindRequestFailed: any other non-2xx response.
	KindRequestFailed
	// KindNetwork: no response was received.
	KindNetwork
)

// String returns the metric/log label of the kind
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFoundOrForbidden:
		return "not_found_or_forbidden"
	case KindRequestFailed:
		return "request_failed"
	case KindNetwork:
		return "network"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Error is the failure of a client operation. Message is meant for the user.
type Error struct {
	Kind    Kind
	Op      string // register, login, list_notes, ...
	Status  int    // HTTP status, 0 when no response
	Message string
	Err     error
}

// Sentinels for errors.Is; only the Kind is compared
var (
	ErrValidation          = &Error{Kind: KindValidation}
	ErrUnauthorized        = &Error{Kind: KindUnauthorized}
	ErrNotFoundOrForbidden = &Error{Kind: KindNotFoundOrForbidden}
	ErrRequestFailed       = &Error{Kind: KindRequestFailed}
	ErrNetwork             = &Error{Kind: KindNetwork}
)

// Error implements the error interface
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewValidationError reports an empty or malformed field found before any
// request was made
func NewValidationError(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

// KindOf returns the Kind of err, or 0 when err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
