package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed wraps network-level failures (dial, TLS, timeout, read).
	ErrRequestFailed = errors.New("vk request failed")
	// ErrCircuitOpen is returned without I/O while the circuit breaker is open.
	ErrCircuitOpen = errors.New("vk circuit breaker open")
	// ErrResponseTooLarge is returned when a body exceeds MaxResponseBytes.
	ErrResponseTooLarge = errors.New("vk response too large")
	// ErrInvalidURL is returned for URLs http.NewRequest cannot parse.
	ErrInvalidURL = errors.New("invalid request url")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	// Body holds at most the first 512 bytes of the response.
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("vk http status %d", e.StatusCode)
}

// Temporary reports whether the status is a server-side failure.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= 500
}
