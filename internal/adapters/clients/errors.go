// Package clients provides the instrumented HTTP client used for downstream services.
package clients

import (
	"errors"
	"fmt"
)

// Client errors are infrastructure failures. Callers translate them into
// domain errors at the anti-corruption layer.
var (
	// ErrCircuitOpen is returned without contacting the upstream while the circuit is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrRequestFailed wraps transport failures and upstream 5xx responses.
	ErrRequestFailed = errors.New("request failed")
)

// StatusError reports an upstream 5xx response. The body has already been closed.
type StatusError struct {
	StatusCode int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.StatusCode)
}

// Unwrap lets callers match the error with errors.Is(err, ErrRequestFailed).
func (e *StatusError) Unwrap() error {
	return ErrRequestFailed
}
