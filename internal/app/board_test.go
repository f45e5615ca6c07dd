package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quoteboard/internal/domain"
	"github.com/jsamuelsen/quoteboard/internal/mocks"
	"github.com/jsamuelsen/quoteboard/internal/ports"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sequentialIDs() func() string {
	n := 0

	return func() string {
		n++

		return fmt.Sprintf("id-%d", n)
	}
}

func newTestBoard(t *testing.T, source *mocks.MockQuoteSource) *QuoteBoard {
	t.Helper()

	return NewQuoteBoard(QuoteBoardConfig{
		Source:              source,
		DiscardStaleFetches: true,
		Logger:              discardLogger(),
		NewID:               sequentialIDs(),
		Now:                 func() time.Time { return fixedNow },
	})
}

func TestNewQuoteBoard_PanicsWithoutSource(t *testing.T) {
	assert.Panics(t, func() {
		NewQuoteBoard(QuoteBoardConfig{Logger: discardLogger()})
	})
}

func TestNewQuoteBoard_DefaultsLogger(t *testing.T) {
	board := NewQuoteBoard(QuoteBoardConfig{Source: mocks.NewMockQuoteSource(t)})

	require.NotNil(t, board)
	assert.Empty(t, board.Board(context.Background()).Saved)
}

func TestQuoteBoard_FetchQuote(t *testing.T) {
	tests := []struct {
		name        string
		initial     domain.Quote
		result      domain.Quote
		err         error
		wantCurrent domain.Quote
		wantOutcome domain.FetchOutcome
	}{
		{
			name:        "success sets current",
			result:      "A",
			wantCurrent: "A",
			wantOutcome: domain.FetchSuccess,
		},
		{
			name:        "failure keeps previous quote",
			initial:     "previous",
			err:         domain.NewFetchError("quotes", "status 500", nil),
			wantCurrent: "previous",
			wantOutcome: domain.FetchFailed,
		},
		{
			name:        "failure with no previous quote",
			err:         errors.New("network down"),
			wantCurrent: "",
			wantOutcome: domain.FetchFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := mocks.NewMockQuoteSource(t)
			recorder := mocks.NewMockFetchRecorder(t)

			board := NewQuoteBoard(QuoteBoardConfig{
				Source:              source,
				Recorder:            recorder,
				DiscardStaleFetches: true,
				Logger:              discardLogger(),
			})

			if !tt.initial.IsEmpty() {
				source.EXPECT().FetchQuote(mock.Anything).Return(tt.initial, nil).Once()
				recorder.EXPECT().RecordFetch(domain.FetchSuccess, mock.Anything).Return().Once()
				board.FetchQuote(context.Background())
			}

			source.EXPECT().FetchQuote(mock.Anything).Return(tt.result, tt.err).Once()
			recorder.EXPECT().RecordFetch(tt.wantOutcome, mock.Anything).Return().Once()

			got := board.FetchQuote(context.Background())

			assert.Equal(t, tt.wantCurrent, got.Current)
			assert.Equal(t, tt.wantCurrent, board.Board(context.Background()).Current)
		})
	}
}

func TestQuoteBoard_FetchFailureIsLoggedAtError(t *testing.T) {
	var buf bytes.Buffer

	source := mocks.NewMockQuoteSource(t)
	source.EXPECT().FetchQuote(mock.Anything).
		Return(domain.Quote(""), domain.NewFetchError("quotes", "status 503", nil))

	board := NewQuoteBoard(QuoteBoardConfig{
		Source: source,
		Logger: slog.New(slog.NewJSONHandler(&buf, nil)),
	})

	board.FetchQuote(context.Background())

	assert.Contains(t, buf.String(), `"level":"ERROR"`)
	assert.Contains(t, buf.String(), "error fetching quote")
	assert.Contains(t, buf.String(), "status 503")
}

func TestQuoteBoard_StaleFetchIsDiscarded(t *testing.T) {
	source := mocks.NewMockQuoteSource(t)
	board := newTestBoard(t, source)

	release := make(chan struct{})
	started := make(chan struct{})

	source.EXPECT().FetchQuote(mock.Anything).
		RunAndReturn(func(context.Context) (domain.Quote, error) {
			close(started)
			<-release

			return "slow", nil
		}).Once()

	done := make(chan domain.Board)

	go func() {
		done <- board.FetchQuote(context.Background())
	}()

	<-started

	source.EXPECT().FetchQuote(mock.Anything).Return(domain.Quote("fast"), nil).Once()
	fast := board.FetchQuote(context.Background())
	require.Equal(t, domain.Quote("fast"), fast.Current)

	close(release)

	slow := <-done
	assert.Equal(t, domain.Quote("fast"), slow.Current)
	assert.Equal(t, domain.Quote("fast"), board.Board(context.Background()).Current)
}

func TestQuoteBoard_FirstElementScenario(t *testing.T) {
	// Give a man a fish: fetch, save twice, delete.
	source := mocks.NewMockQuoteSource(t)
	board := newTestBoard(t, source)
	ctx := context.Background()

	source.EXPECT().FetchQuote(mock.Anything).Return(domain.Quote("Give a man a fish..."), nil).Once()

	got := board.FetchQuote(ctx)
	require.Equal(t, domain.Quote("Give a man a fish..."), got.Current)

	got = board.SaveQuote(ctx)
	assert.Equal(t, []domain.Quote{"Give a man a fish..."}, got.Texts())

	got = board.SaveQuote(ctx)
	assert.Len(t, got.Saved, 1)

	got = board.DeleteQuote(ctx, 0)
	assert.Empty(t, got.Saved)
	assert.Equal(t, domain.Quote("Give a man a fish..."), got.Current)
}

func TestQuoteBoard_TwoQuotesScenario(t *testing.T) {
	source := mocks.NewMockQuoteSource(t)
	board := newTestBoard(t, source)
	ctx := context.Background()

	source.EXPECT().FetchQuote(mock.Anything).Return(domain.Quote("Q1"), nil).Once()
	board.FetchQuote(ctx)
	board.SaveQuote(ctx)

	source.EXPECT().FetchQuote(mock.Anything).Return(domain.Quote("Q2"), nil).Once()
	board.FetchQuote(ctx)
	got := board.SaveQuote(ctx)

	require.Equal(t, []domain.Quote{"Q1", "Q2"}, got.Texts())
	assert.Equal(t, "id-1", got.Saved[0].ID)
	assert.Equal(t, "id-2", got.Saved[1].ID)
	assert.Equal(t, fixedNow, got.Saved[1].SavedAt)

	got = board.DeleteQuote(ctx, 0)
	assert.Equal(t, []domain.Quote{"Q2"}, got.Texts())
}

func TestQuoteBoard_SaveWithoutCurrentIsNoop(t *testing.T) {
	board := newTestBoard(t, mocks.NewMockQuoteSource(t))

	got := board.SaveQuote(context.Background())

	assert.Empty(t, got.Saved)
	assert.Zero(t, got.Version)
}

func TestQuoteBoard_DeleteSavedQuote(t *testing.T) {
	source := mocks.NewMockQuoteSource(t)
	board := newTestBoard(t, source)
	ctx := context.Background()

	source.EXPECT().FetchQuote(mock.Anything).Return(domain.Quote("Q1"), nil).Once()
	board.FetchQuote(ctx)
	board.SaveQuote(ctx)

	got := board.DeleteSavedQuote(ctx, "nope")
	assert.Len(t, got.Saved, 1)

	got = board.DeleteSavedQuote(ctx, "id-1")
	assert.Empty(t, got.Saved)
}

func TestQuoteBoard_Subscribe(t *testing.T) {
	source := mocks.NewMockQuoteSource(t)
	board := newTestBoard(t, source)
	ctx := context.Background()

	updates, cancel := board.Subscribe()

	source.EXPECT().FetchQuote(mock.Anything).Return(domain.Quote("Q1"), nil).Once()
	board.FetchQuote(ctx)
	board.SaveQuote(ctx)

	// Latest wins: only the newest snapshot is pending.
	select {
	case got := <-updates:
		assert.Equal(t, uint64(2), got.Version)
		assert.Len(t, got.Saved, 1)
	case <-time.After(time.Second):
		t.Fatal("no update received")
	}

	cancel()
	cancel()

	_, open := <-updates
	assert.False(t, open)

	board.DeleteQuote(ctx, 0)
}

func TestQuoteBoard_Start(t *testing.T) {
	source := mocks.NewMockQuoteSource(t)
	board := newTestBoard(t, source)

	source.EXPECT().FetchQuote(mock.Anything).Return(domain.Quote("mounted"), nil).Once()

	select {
	case <-board.Start(context.Background()):
	case <-time.After(time.Second):
		t.Fatal("initial fetch did not finish")
	}

	assert.Equal(t, domain.Quote("mounted"), board.Board(context.Background()).Current)
}

type countingObserver struct {
	boards []domain.Board
}

func (o *countingObserver) ObserveBoard(b domain.Board) {
	o.boards = append(o.boards, b)
}

func TestQuoteBoard_ConfiguredObservers(t *testing.T) {
	source := mocks.NewMockQuoteSource(t)
	observer := &countingObserver{}

	board := NewQuoteBoard(QuoteBoardConfig{
		Source:    source,
		Observers: []ports.BoardObserver{observer},
		Logger:    discardLogger(),
	})

	source.EXPECT().FetchQuote(mock.Anything).Return(domain.Quote("Q1"), nil).Once()
	board.FetchQuote(context.Background())
	board.SaveQuote(context.Background())

	require.Len(t, observer.boards, 2)
	assert.Equal(t, uint64(2), observer.boards[1].Version)
}
