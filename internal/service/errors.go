package service

import "errors"

// ErrorKind classifies orchestration failures for the transport layer
type ErrorKind int

const (
	ErrInternal ErrorKind = iota
	ErrInvalidInput
	ErrUnauthenticated
	ErrForbidden
	ErrNotFound
	ErrStoreFailure
)

// Error is an orchestration failure with a caller-facing message
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the error kind; unclassified errors are internal
func KindOf(err error) ErrorKind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return ErrInternal
}
