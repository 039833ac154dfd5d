package apperror

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindCycle         Kind = "CYCLE_DETECTED"
	KindLimitExceeded Kind = "LIMIT_EXCEEDED"
	KindInternal      Kind = "INTERNAL_ERROR"
)

type Metadata struct {
	HTTPStatus    int
	PublicMessage string
	// Verbatim reports whether the error message may be returned to clients as-is.
	Verbatim bool
}

// Conflicts and cycles are reported as 400 rather than 409 to keep a single
// "bad request" status for every caller-correctable failure.
var metadataByKind = map[Kind]Metadata{
	KindValidation: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "validation failed",
		Verbatim:      true,
	},
	KindNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
		Verbatim:      true,
	},
	KindConflict: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "conflict detected",
		Verbatim:      true,
	},
	KindCycle: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "cycle detected",
		Verbatim:      true,
	},
	KindLimitExceeded: {
		HTTPStatus:    http.StatusBadRequest,
		PublicMessage: "limit exceeded",
		Verbatim:      true,
	},
	KindInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		PublicMessage: "internal server error",
		Verbatim:      false,
	},
}

func MetadataFor(kind Kind) Metadata {
	if meta, ok := metadataByKind[kind]; ok {
		return meta
	}
	return metadataByKind[KindInternal]
}

type Error struct {
	kind    Kind
	message string
	cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Wrap(kind Kind, err error, message string) *Error {
	if err == nil {
		return New(kind, message)
	}
	return &Error{kind: kind, message: message, cause: err}
}

func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func Cycle(format string, args ...any) *Error {
	return New(KindCycle, fmt.Sprintf(format, args...))
}

func LimitExceeded(format string, args ...any) *Error {
	return New(KindLimitExceeded, fmt.Sprintf(format, args...))
}

// Internal wraps a storage or infrastructure failure.
func Internal(err error, message string) *Error {
	return Wrap(KindInternal, err, message)
}

func (e *Error) Kind() Kind {
	if e == nil {
		return KindInternal
	}
	return e.kind
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// KindOf returns the kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	if typed := As(err); typed != nil {
		return typed.kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == kind
}
