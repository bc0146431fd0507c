package services

import (
	"errors"
	"fmt"

	"github.com/ajramos/maildash/internal/mailapi"
)

// ErrorKind classifies every failure the dashboard can report.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// TransportFailure means the service could not be reached or answered garbage.
	TransportFailure
	// RemoteRejection means the service answered and refused.
	RemoteRejection
	// ValidationFailure is raised client side before any remote call.
	ValidationFailure
	// SelectionOutOfScope is raised when acting on a message that is not displayed.
	SelectionOutOfScope
)

func (k ErrorKind) String() string {
	switch k {
	case TransportFailure:
		return "transport failure"
	case RemoteRejection:
		return "remote rejection"
	case ValidationFailure:
		return "validation failure"
	case SelectionOutOfScope:
		return "selection out of scope"
	}
	return "unknown"
}

// Validation errors
var (
	ErrEmptyRecipient       = errors.New("recipient cannot be empty")
	ErrInvalidRecipient     = errors.New("recipient is not a valid address")
	ErrInvalidSchedule      = errors.New("schedule time must be in the future")
	ErrEmptyTemplateName    = errors.New("template name cannot be empty")
	ErrWrongFolder          = errors.New("action not available in this folder")
	ErrEmptySelection       = errors.New("no messages selected")
	ErrBulkActionNotAllowed = errors.New("bulk action not available in this folder")
	ErrSessionOpen          = errors.New("a compose session is already open")
	ErrSessionBusy          = errors.New("compose session is busy")
	ErrNoSession            = errors.New("no compose session open")
	ErrNotConfirmed         = errors.New("action requires confirmation")
	ErrNoConfirmation       = errors.New("nothing to confirm")
	ErrNoPendingFile        = errors.New("no file chosen for upload")
	ErrNothingToUndo        = errors.New("no action to undo")
	ErrTemplateNotFound     = errors.New("template not found")
)

// ErrOutOfScope is wrapped by every SelectionOutOfScope error.
var ErrOutOfScope = errors.New("message is not in the displayed collection")

// Error carries the kind and the operation that failed.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation marks err as a client side rule violation raised by op.
func Validation(op string, err error) error {
	return &Error{Kind: ValidationFailure, Op: op, Err: err}
}

// OutOfScope reports op acting on a message that is not displayed.
func OutOfScope(op string) error {
	return &Error{Kind: SelectionOutOfScope, Op: op, Err: ErrOutOfScope}
}

// Classify wraps a transport level error with its kind. Errors that are
// already classified pass through untouched.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	var apiErr *mailapi.APIError
	if errors.As(err, &apiErr) {
		return &Error{Kind: RemoteRejection, Op: op, Err: err}
	}
	// mailapi.ErrTransport, context errors and anything unexpected
	return &Error{Kind: TransportFailure, Op: op, Err: err}
}

// KindOf returns the kind of err, or KindUnknown when err is not classified.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsValidation reports whether err was raised before any remote call.
func IsValidation(err error) bool {
	k := KindOf(err)
	return k == ValidationFailure || k == SelectionOutOfScope
}

// IsRemote reports whether err came from talking to the service.
func IsRemote(err error) bool {
	k := KindOf(err)
	return k == TransportFailure || k == RemoteRejection
}

// UserMessage returns the text shown to the user for err.
func UserMessage(err error) string {
	var apiErr *mailapi.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Kind == TransportFailure {
			return "Could not reach the mail service"
		}
		return e.Err.Error()
	}
	return err.Error()
}
