package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Kind classifies a failure so the transport layer can pick a status code
// without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindValidation
	KindForbidden
	KindConflict
	KindInvalidTransition
)

// Error carries a kind plus a user-facing message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// E builds an apperr.Error.
func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Ef builds an apperr.Error with a formatted message.
func Ef(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NotFound, Validation, Forbidden, Conflict are shorthand constructors for
// the common kinds.
func NotFound(msg string) *Error   { return E(KindNotFound, msg) }
func Validation(msg string) *Error { return E(KindValidation, msg) }
func Forbidden(msg string) *Error  { return E(KindForbidden, msg) }
func Conflict(msg string) *Error   { return E(KindConflict, msg) }

// KindOf returns the kind of err, or KindUnknown for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusCode maps an error to the HTTP status the standard envelope uses.
func StatusCode(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation:
		return fiber.StatusBadRequest
	case KindForbidden:
		return fiber.StatusForbidden
	case KindConflict, KindInvalidTransition:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
