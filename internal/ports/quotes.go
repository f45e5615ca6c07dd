// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrFetchFailure, ErrValidation, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quoteboard/internal/domain"
)

// QuoteSource fetches a single quote from a remote endpoint.
type QuoteSource interface {
	// FetchQuote issues one request and returns the first quote of the response.
	// Every failure is returned as a *domain.FetchError.
	FetchQuote(ctx context.Context) (domain.Quote, error)
}

// FetchRecorder receives the outcome of every fetch attempt made by the board.
type FetchRecorder interface {
	RecordFetch(outcome domain.FetchOutcome, duration time.Duration)
}

// BoardObserver is notified with the new snapshot after every committed board change.
type BoardObserver interface {
	ObserveBoard(board domain.Board)
}
