package services

import (
	"errors"
	"fmt"

	"github.com/benjibook/api-go/store"
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindForbidden
	KindBadRequest
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NOT_FOUND"
	case KindForbidden:
		return "FORBIDDEN"
	case KindBadRequest:
		return "BAD_REQUEST"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL"
	}
}

// Error is returned by every service operation that fails for a reason the
// caller can act on. Anything else is INTERNAL.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func Forbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func BadRequest(msg string) error {
	return &Error{Kind: KindBadRequest, Message: msg}
}

func Unauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

func Internal(msg string, err error) error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf reports the kind of err; errors that are not *Error are INTERNAL.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// storeErr converts a store error: ErrNotFound becomes NOT_FOUND with msg,
// anything else becomes INTERNAL.
func storeErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return NotFound(msg)
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return Internal(msg, err)
}
