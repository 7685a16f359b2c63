// Package apierr defines the error taxonomy shared by all vendor clients.
//
// Every error surfaced by a vendor client carries a stable Kind plus, where
// available, the vendor's original business code and response body so callers
// can classify failures without knowing which platform produced them.
package apierr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kind classifies a request failure independent of the vendor that caused it.
type Kind string

const (
	// KindAPI covers non-success HTTP statuses and business failures
	// reported inside an HTTP 2xx body.
	KindAPI Kind = "api"
	// KindAuth covers 401/403 responses and explicit vendor auth-failure codes.
	KindAuth Kind = "auth"
	// KindNetwork covers transport failures where no response was received.
	KindNetwork Kind = "network"
	// KindParameter covers invalid caller input, detected before any I/O.
	KindParameter Kind = "parameter"
	// KindTimeout covers requests that exceeded their deadline.
	// It is treated as a network subtype for retry purposes.
	KindTimeout Kind = "timeout"
)

// Error is the normalized error surfaced by every vendor client.
// It is immutable once constructed.
type Error struct {
	Kind       Kind
	Message    string
	VendorCode string
	HTTPStatus int
	Body       []byte
	cause      error
}

// New builds an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf builds an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// FromStatus builds an Error from an HTTP response. Statuses 401 and 403
// classify as auth; every other non-success status classifies as api.
func FromStatus(status int, vendorCode, message string, body []byte) *Error {
	kind := KindAPI
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		kind = KindAuth
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{
		Kind:       kind,
		Message:    message,
		VendorCode: vendorCode,
		HTTPStatus: status,
		Body:       body,
	}
}

// FromTransport builds an Error from a transport failure with no response.
// Deadline and timeout failures classify as timeout, everything else as network.
func FromTransport(err error) *Error {
	kind := KindNetwork
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Message: err.Error(), cause: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.VendorCode != "" && e.HTTPStatus != 0 {
		return fmt.Sprintf("%s error (http %d, code %s): %s", e.Kind, e.HTTPStatus, e.VendorCode, e.Message)
	}
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("%s error (http %d): %s", e.Kind, e.HTTPStatus, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying transport error, if any.
func (e *Error) Unwrap() error { return e.cause }

// AsError extracts an *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := AsError(err)
	return ok && ae.Kind == kind
}

// IsAPI reports whether err is a business-level API failure.
func IsAPI(err error) bool { return IsKind(err, KindAPI) }

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return IsKind(err, KindAuth) }

// IsNetwork reports whether err is a transport failure, including timeouts.
func IsNetwork(err error) bool { return IsKind(err, KindNetwork) || IsKind(err, KindTimeout) }

// IsParameter reports whether err is invalid caller input.
func IsParameter(err error) bool { return IsKind(err, KindParameter) }

// IsTimeout reports whether err is a deadline failure.
func IsTimeout(err error) bool { return IsKind(err, KindTimeout) }
