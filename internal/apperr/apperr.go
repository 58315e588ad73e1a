// Package apperr defines the error kinds surfaced by the API and their
// HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
	"sort"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindInvalidCredentials
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindInvalidFormat
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindInvalidFormat:
		return "invalid_format"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation, KindInvalidCredentials:
		return http.StatusUnprocessableEntity
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidFormat:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fields maps a request field to its messages.
type Fields map[string][]string

// Add appends a message for field.
func (f Fields) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Error is the single error type handlers turn into responses.
type Error struct {
	Kind    Kind
	Message string
	Fields  Fields
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a ValidationError. The message is the first field
// message in key order, or a generic one when fields is empty.
func Validation(fields Fields) *Error {
	msg := "The given data was invalid."
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(fields[k]) > 0 {
			msg = fields[k][0]
			break
		}
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

// FieldError is a ValidationError with a single field.
func FieldError(field, msg string) *Error {
	return Validation(Fields{field: {msg}})
}

// InvalidCredentials never says which part of the credentials was wrong.
func InvalidCredentials(field string) *Error {
	msg := "Invalid credentials."
	return &Error{Kind: KindInvalidCredentials, Message: msg, Fields: Fields{field: {msg}}}
}

func Unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}

func Forbidden() *Error {
	return &Error{Kind: KindForbidden, Message: "Unauthorized"}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func InvalidFormat(msg string) *Error {
	return &Error{Kind: KindInvalidFormat, Message: msg}
}

// Internal wraps an unexpected failure. The wrapped error text is returned
// to the client as a diagnostic.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
