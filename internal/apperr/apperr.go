// Package apperr carries the small closed set of failure kinds callers branch on.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindTransport Kind = iota // store or broker failure; also the zero value
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "transport"
	}
}

type Error struct {
	Kind  Kind
	Op    string // operation that failed, e.g. "bookings.insert"
	Field string // offending input field for validation errors
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Op != "" {
		return fmt.Sprintf("%s [%s, op=%s]", msg, e.Kind, e.Op)
	}
	return fmt.Sprintf("%s [%s]", msg, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(field, msg string) error {
	return &Error{Kind: KindValidation, Field: field, Msg: msg}
}

func NotFound(op string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: "not found"}
}

func Conflict(op, msg string) error {
	return &Error{Kind: KindConflict, Op: op, Msg: msg}
}

// Transport wraps a store/broker error. A nil err stays nil.
func Transport(op string, err error) error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return err
	}
	return &Error{Kind: KindTransport, Op: op, Err: err}
}

// KindOf classifies err. Errors not built by this package count as transport.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindTransport
}

func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// FieldOf returns the offending field of a validation error.
func FieldOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Field
	}
	return ""
}
