package hub

import (
	"errors"
	"fmt"
)

// Error kinds for device communication.
//
// TransportError covers everything that can go wrong talking HTTP to the
// device: connection refused/reset, timeout, a non-2xx status, or a response
// body that is not valid JSON. Transport errors are always retryable.
//
// ConnectionError is the stable kind surfaced to callers once retries are
// exhausted. Callers should match on it with errors.As or IsConnectionError;
// the underlying transport detail is preserved for logging via Unwrap.
//
// SchemaError indicates a configuration payload that cannot be used: it
// matches neither the legacy hub/api_key shape nor the modern endpoints
// shape. Schema errors are never retried (retrying cannot fix an
// unrecognized shape).
//
// Device-reported failures (a non-zero "error" field in an otherwise valid
// response) are not errors at all: operations surface them as a negative
// boolean result, so callers can tell "can't talk to the device" apart from
// "the device rejected the request".

// errMalformedBody marks a 2xx response whose body is not valid JSON.
var errMalformedBody = errors.New("response body is not valid JSON")

// TransportError is a failure of a single HTTP exchange with the device.
type TransportError struct {
	Path       string // API path, e.g. "/api/config/get"
	StatusCode int    // HTTP status, 0 for connection-level faults
	Err        error  // underlying error, if any
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport error on %s: device returned status %d", e.Path, e.StatusCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("transport error on %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("transport error on %s", e.Path)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// ConnectionError is returned after all retry attempts for an operation have
// failed at the transport level.
type ConnectionError struct {
	Path     string // API path of the failing operation
	Attempts int    // total attempts made (retries + 1)
	Err      error  // last transport error observed
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("device unreachable on %s after %d attempt(s): %v", e.Path, e.Attempts, e.Err)
}

// Unwrap returns the underlying error for error chain inspection.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// SchemaError indicates a device configuration payload that matches neither
// the legacy nor the modern schema, or is missing the sections a patch needs.
type SchemaError struct {
	Reason string
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	return "unusable device configuration: " + e.Reason
}

// IsTransportError reports whether err is (or wraps) a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsConnectionError reports whether err is (or wraps) a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}

// IsSchemaError reports whether err is (or wraps) a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
