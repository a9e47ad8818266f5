// Package bridgeerr implements the closed error-kind taxonomy the bridge
// runtime uses to communicate failures from transports and the pipeline up
// through the dispatcher to the agent-facing envelope.
package bridgeerr

import (
	"errors"
	"fmt"
)

// Kind is one of the nine closed error kinds. No other values are valid.
type Kind string

const (
	InvalidInput   Kind = "InvalidInput"
	NotReady       Kind = "NotReady"
	Timeout        Kind = "Timeout"
	Disconnected   Kind = "Disconnected"
	DawReported    Kind = "DawReported"
	BridgeBusy     Kind = "BridgeBusy"
	BridgeReported Kind = "BridgeReported"
	ProtocolError  Kind = "ProtocolError"
	Internal       Kind = "Internal"
)

// Error is the typed error carried through the pipeline and dispatcher.
// Details is an optional structured payload surfaced in the error envelope
// (e.g. missing chunk indices, the offending field name).
type Error struct {
	Kind    Kind
	Message string
	Details any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error carrying an underlying cause (e.g. a classified
// socket error from errclass), preserved for errors.Is/As and logging.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// WithDetails attaches a structured details payload and returns the
// receiver, for fluent construction: bridgeerr.New(...).WithDetails(...).
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// Is reports whether target is a *Error with the same Kind, enabling
// errors.Is(err, bridgeerr.New(bridgeerr.Timeout, "")) style checks when the
// caller only cares about the kind.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, otherwise
// returns Internal, the catch-all for panics and unclassified failures.
func KindOf(err error) Kind {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind
	}
	return Internal
}
