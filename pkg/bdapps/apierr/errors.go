// Package apierr defines the error type returned by every bdapps operation.
//
// All failures fall into one of three kinds: a transport failure while talking
// to the remote API, a malformed inbound webhook body, or an inbound body that
// is missing a required field. Callers match kinds with errors.Is against the
// package sentinels, or use errors.As to reach the code and detail.
package apierr

import (
	"errors"
	"fmt"
)

// Kind tags an Error with its failure class.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindMalformedPayload
	KindMissingField
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport_failure"
	case KindMalformedPayload:
		return "malformed_payload"
	case KindMissingField:
		return "missing_field"
	default:
		return "unknown"
	}
}

// Sentinels matched by (*Error).Is.
var (
	ErrTransport        = errors.New("bdapps: transport failure")
	ErrMalformedPayload = errors.New("bdapps: malformed payload")
	ErrMissingField     = errors.New("bdapps: missing required field")
)

// Error is the single domain error of the library.
type Error struct {
	Kind    Kind
	Message string
	// Code is copied from the underlying failure when one is available
	// (API statusCode or HTTP status).
	Code string
	// Detail carries the API statusDetail of a failed call, if any.
	Detail string
	// Field names the first missing field for KindMissingField.
	Field string
	Err   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrMalformedPayload:
		return e.Kind == KindMalformedPayload
	case ErrMissingField:
		return e.Kind == KindMissingField
	}
	return false
}

// coder and detailer are implemented by transport errors that carry an API
// status code and detail.
type coder interface{ ErrorCode() string }

type detailer interface{ ErrorDetail() string }

// Transport wraps err into a transport failure prefixed with op, e.g.
// "SMS sending failed: <cause>". The code and detail of the cause are copied
// when it exposes them.
func Transport(op string, err error) *Error {
	e := &Error{
		Kind:    KindTransport,
		Message: op,
		Err:     err,
	}
	if err == nil {
		return e
	}
	e.Message = fmt.Sprintf("%s: %s", op, err.Error())

	var c coder
	if errors.As(err, &c) {
		e.Code = c.ErrorCode()
	}
	var d detailer
	if errors.As(err, &d) {
		e.Detail = d.ErrorDetail()
	}
	return e
}

// MalformedPayload reports an inbound body that could not be parsed as JSON.
// subject names the message kind, as in "Invalid SMS received".
func MalformedPayload(subject string, err error) *Error {
	return &Error{
		Kind:    KindMalformedPayload,
		Message: fmt.Sprintf("Invalid %s received", subject),
		Err:     err,
	}
}

// MissingField reports the first required field absent from an inbound body.
func MissingField(field string) *Error {
	return &Error{
		Kind:    KindMissingField,
		Message: "Missing required field: " + field,
		Field:   field,
	}
}
