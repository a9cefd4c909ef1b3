// Package apperr holds the error taxonomy surfaced to API callers.
package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindForbidden
	KindInvalidCredentials
	KindUnauthenticated
	KindTooManyRequests
	KindPayloadTooLarge
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindInvalidCredentials:
		return "invalid_credentials"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindTooManyRequests:
		return "too_many_requests"
	case KindPayloadTooLarge:
		return "payload_too_large"
	default:
		return "unknown"
	}
}

// Error is rendered as {message, errors?} with Status as the HTTP code.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Errors  map[string][]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) WithField(field, msg string) *Error {
	if e.Errors == nil {
		e.Errors = make(map[string][]string)
	}
	e.Errors[field] = append(e.Errors[field], msg)
	return e
}

func Validation(fields map[string][]string) *Error {
	msg := "The given data was invalid."
	if len(fields) == 1 {
		for _, msgs := range fields {
			if len(msgs) > 0 {
				msg = msgs[0]
			}
		}
	}
	return &Error{Kind: KindValidation, Status: http.StatusUnprocessableEntity, Message: msg, Errors: fields}
}

// FieldError is a validation error on a single field.
func FieldError(field, msg string) *Error {
	return Validation(map[string][]string{field: {msg}})
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func Conflict(field, msg string) *Error {
	e := &Error{Kind: KindConflict, Status: http.StatusConflict, Message: msg}
	if field != "" {
		e.WithField(field, msg)
	}
	return e
}

func Forbidden(msg string) *Error {
	return &Error{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

// InvalidCredentials is the 400 variant used when re-authenticating with a
// current password.
func InvalidCredentials(field, msg string) *Error {
	e := &Error{Kind: KindInvalidCredentials, Status: http.StatusBadRequest, Message: msg}
	if field != "" {
		e.WithField(field, msg)
	}
	return e
}

// InvalidLogin reads the same for an unknown email and a wrong password.
func InvalidLogin() *Error {
	const msg = "The provided credentials are incorrect."
	return (&Error{Kind: KindInvalidCredentials, Status: http.StatusUnprocessableEntity, Message: msg}).WithField("email", msg)
}

func Unauthenticated() *Error {
	return &Error{Kind: KindUnauthenticated, Status: http.StatusUnauthorized, Message: "Unauthenticated."}
}

func PayloadTooLarge() *Error {
	return &Error{Kind: KindPayloadTooLarge, Status: http.StatusRequestEntityTooLarge, Message: "The request body is too large."}
}

func TooManyRequests() *Error {
	return &Error{Kind: KindTooManyRequests, Status: http.StatusTooManyRequests, Message: "Too Many Attempts."}
}

// As unwraps err into an *Error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
