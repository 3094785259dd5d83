package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a device-level failure
type ErrorKind string

const (
	// ErrorKindConnectivity - dial, authentication or network failure
	ErrorKindConnectivity ErrorKind = "connectivity"
	// ErrorKindProtocol - the device answered with a non-success status
	ErrorKindProtocol ErrorKind = "protocol"
	// ErrorKindParse - the answer lacked the expected marker or structure
	ErrorKindParse ErrorKind = "parse"
)

// DeviceError is a classified device-level failure
type DeviceError struct {
	Kind       ErrorKind
	Detail     string
	StatusCode int
	Reason     string
	Content    string
	Err        error
}

// Error implements error
func (e *DeviceError) Error() string {
	msg := fmt.Sprintf("%s failure: %s", e.Kind, e.Detail)
	if e.Kind == ErrorKindProtocol && e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status_code: %d, reason: %s)", msg, e.StatusCode, e.Reason)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error
func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewConnectivityError wraps a dial/auth/network error
func NewConnectivityError(detail string, err error) *DeviceError {
	return &DeviceError{Kind: ErrorKindConnectivity, Detail: detail, Err: err}
}

// NewProtocolError records a rejected request with the device's answer verbatim
func NewProtocolError(statusCode int, reason, content string) *DeviceError {
	return &DeviceError{
		Kind:       ErrorKindProtocol,
		Detail:     "the request failed",
		StatusCode: statusCode,
		Reason:     reason,
		Content:    content,
	}
}

// NewParseError records a response that lacked the expected structure
func NewParseError(format string, args ...any) *DeviceError {
	return &DeviceError{Kind: ErrorKindParse, Detail: fmt.Sprintf(format, args...)}
}

// KindOf classifies any error. Errors that are not DeviceErrors come from the
// transport and count as connectivity failures.
func KindOf(err error) ErrorKind {
	var de *DeviceError
	if errors.As(err, &de) {
		return de.Kind
	}
	return ErrorKindConnectivity
}
