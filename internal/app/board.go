// Package app contains application services that orchestrate use cases.
// It coordinates domain state and infrastructure through ports and knows
// nothing about HTTP or the wire format of the quote source.
package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quoteboard/internal/domain"
	"github.com/jsamuelsen/quoteboard/internal/platform/logging"
	"github.com/jsamuelsen/quoteboard/internal/ports"
)

// CancelFunc ends a subscription and closes its channel.
type CancelFunc func()

// QuoteBoard orchestrates the fetch, save and delete use cases over a ViewState.
type QuoteBoard struct {
	source   ports.QuoteSource
	state    *ViewState
	recorder ports.FetchRecorder
	logger   *slog.Logger
	newID    func() string
	now      func() time.Time
}

// QuoteBoardConfig contains the dependencies of the board.
type QuoteBoardConfig struct {
	Source ports.QuoteSource

	// Recorder is optional and receives the outcome of every fetch.
	Recorder ports.FetchRecorder

	// Observers are registered before the board is returned.
	Observers []ports.BoardObserver

	// DiscardStaleFetches drops a response when a later-issued fetch was already applied.
	DiscardStaleFetches bool

	Logger *slog.Logger

	// NewID and Now default to uuid.NewString and time.Now.
	NewID func() string
	Now   func() time.Time
}

// NewQuoteBoard creates a board with an empty view state.
// It panics when no quote source is configured.
func NewQuoteBoard(cfg QuoteBoardConfig) *QuoteBoard {
	if cfg.Source == nil {
		panic("app: QuoteBoard requires a quote source")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	b := &QuoteBoard{
		source:   cfg.Source,
		state:    NewViewState(cfg.DiscardStaleFetches),
		recorder: cfg.Recorder,
		logger:   logger.With(slog.String("component", "app.QuoteBoard")),
		newID:    cfg.NewID,
		now:      cfg.Now,
	}

	if b.newID == nil {
		b.newID = uuid.NewString
	}

	if b.now == nil {
		b.now = time.Now
	}

	for _, o := range cfg.Observers {
		b.state.Observe(o.ObserveBoard)
	}

	return b
}

// Start issues the initial fetch in the background.
// The returned channel is closed once that fetch has finished.
func (b *QuoteBoard) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		defer close(done)

		b.FetchQuote(ctx)
	}()

	return done
}

// FetchQuote requests a new quote and applies it as the current quote.
// Failures are logged and swallowed; the current quote then keeps its value.
// The returned snapshot reflects the board after the attempt.
func (b *QuoteBoard) FetchQuote(ctx context.Context) domain.Board {
	logger := b.loggerFrom(ctx)
	seq := b.state.BeginFetch()
	start := time.Now()

	quote, err := b.source.FetchQuote(ctx)
	if err != nil {
		b.record(domain.FetchFailed, time.Since(start))
		logger.ErrorContext(ctx, "error fetching quote",
			slog.Uint64("seq", seq),
			slog.Any("error", err),
		)

		return b.state.Snapshot()
	}

	board, outcome := b.state.ApplyFetch(seq, quote)
	b.record(outcome, time.Since(start))

	if outcome == domain.FetchStale {
		logger.WarnContext(ctx, "discarded stale quote",
			slog.Uint64("seq", seq),
		)

		return board
	}

	logger.DebugContext(ctx, "fetched quote",
		slog.Uint64("seq", seq),
		slog.Uint64("version", board.Version),
	)

	return board
}

// SaveQuote appends the current quote to the saved list.
// It is a no-op when there is no current quote or it is already saved.
func (b *QuoteBoard) SaveQuote(ctx context.Context) domain.Board {
	board, saved := b.state.Save(b.newID(), b.now())
	if saved {
		b.loggerFrom(ctx).InfoContext(ctx, "saved quote",
			slog.Int("saved_count", len(board.Saved)),
		)
	}

	return board
}

// DeleteQuote removes the saved quote at a zero-based position.
// Later entries shift down by one; an out-of-range position is a no-op.
func (b *QuoteBoard) DeleteQuote(ctx context.Context, position int) domain.Board {
	board, deleted := b.state.DeleteAt(position)
	if deleted {
		b.loggerFrom(ctx).InfoContext(ctx, "deleted saved quote",
			slog.Int("position", position),
		)
	}

	return board
}

// DeleteSavedQuote removes the saved quote with the given ID. Unknown IDs are a no-op.
func (b *QuoteBoard) DeleteSavedQuote(ctx context.Context, id string) domain.Board {
	board, deleted := b.state.DeleteByID(id)
	if deleted {
		b.loggerFrom(ctx).InfoContext(ctx, "deleted saved quote",
			slog.String("saved_id", id),
		)
	}

	return board
}

// Board returns the current snapshot.
func (b *QuoteBoard) Board(_ context.Context) domain.Board {
	return b.state.Snapshot()
}

// Subscribe returns a channel that receives the board after every change.
// Delivery is latest-wins: a slow reader only ever sees the newest pending snapshot.
func (b *QuoteBoard) Subscribe() (<-chan domain.Board, CancelFunc) {
	ch := make(chan domain.Board, 1)

	unobserve := b.state.Observe(func(board domain.Board) {
		select {
		case <-ch:
		default:
		}

		ch <- board
	})

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			unobserve()
			close(ch)
		})
	}
}

func (b *QuoteBoard) record(outcome domain.FetchOutcome, d time.Duration) {
	if b.recorder != nil {
		b.recorder.RecordFetch(outcome, d)
	}
}

func (b *QuoteBoard) loggerFrom(ctx context.Context) *slog.Logger {
	if logger, ok := logging.Lookup(ctx); ok {
		return logger.With(slog.String("component", "app.QuoteBoard"))
	}

	return b.logger
}
