package app

import (
	"slices"
	"sync"
	"time"

	"github.com/jsamuelsen/quoteboard/internal/domain"
)

// Observer receives the new snapshot after every committed change.
// Observers run synchronously on the committing goroutine and must not
// mutate the ViewState they observe.
type Observer func(domain.Board)

// ViewState holds the current quote and the saved list.
// Every committed change bumps the version and notifies observers in commit order.
type ViewState struct {
	mu      sync.Mutex
	current domain.Quote
	saved   []domain.SavedQuote
	version uint64

	// issued is the last sequence token handed out by BeginFetch,
	// applied the newest one whose response was committed.
	issued       uint64
	applied      uint64
	discardStale bool

	// notifyMu is taken before mu is released so observers see versions in order.
	notifyMu  sync.Mutex
	observers map[int]Observer
	nextID    int
}

// NewViewState creates an empty view state. When discardStale is set, a fetch
// response older than the last applied one is dropped instead of overwriting it.
func NewViewState(discardStale bool) *ViewState {
	return &ViewState{
		saved:        make([]domain.SavedQuote, 0),
		discardStale: discardStale,
		observers:    make(map[int]Observer),
	}
}

// Observe registers fn and returns a function that removes it.
func (s *ViewState) Observe(fn Observer) (cancel func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	return func() {
		s.notifyMu.Lock()
		defer s.notifyMu.Unlock()

		delete(s.observers, id)
	}
}

// Snapshot returns a copy of the current state.
func (s *ViewState) Snapshot() domain.Board {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// BeginFetch issues the sequence token for a new fetch.
func (s *ViewState) BeginFetch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued++

	return s.issued
}

// ApplyFetch commits the result of the fetch identified by seq.
// It returns FetchStale without touching the state when a newer fetch
// has already been applied and stale responses are discarded.
func (s *ViewState) ApplyFetch(seq uint64, quote domain.Quote) (domain.Board, domain.FetchOutcome) {
	s.mu.Lock()

	if s.discardStale && seq < s.applied {
		board := s.snapshotLocked()
		s.mu.Unlock()

		return board, domain.FetchStale
	}

	s.applied = max(s.applied, seq)

	if quote == s.current {
		board := s.snapshotLocked()
		s.mu.Unlock()

		return board, domain.FetchSuccess
	}

	s.current = quote

	return s.commitLocked(), domain.FetchSuccess
}

// Save appends the current quote under id. It is a no-op when there is no
// current quote or the quote is already saved.
func (s *ViewState) Save(id string, now time.Time) (domain.Board, bool) {
	s.mu.Lock()

	if view := s.viewLocked(); !view.CanSave() || view.Contains(view.Current) {
		board := s.snapshotLocked()
		s.mu.Unlock()

		return board, false
	}

	s.saved = append(s.saved, domain.SavedQuote{
		ID:      id,
		Text:    s.current,
		SavedAt: now,
	})

	return s.commitLocked(), true
}

// DeleteAt removes the saved entry at position i. Out of range is a no-op.
func (s *ViewState) DeleteAt(i int) (domain.Board, bool) {
	s.mu.Lock()

	if i < 0 || i >= len(s.saved) {
		board := s.snapshotLocked()
		s.mu.Unlock()

		return board, false
	}

	s.saved = slices.Delete(s.saved, i, i+1)

	return s.commitLocked(), true
}

// DeleteByID removes the saved entry with the given ID. Unknown IDs are a no-op.
func (s *ViewState) DeleteByID(id string) (domain.Board, bool) {
	s.mu.Lock()

	i := s.viewLocked().IndexOf(id)
	if i < 0 {
		board := s.snapshotLocked()
		s.mu.Unlock()

		return board, false
	}

	s.saved = slices.Delete(s.saved, i, i+1)

	return s.commitLocked(), true
}

// commitLocked bumps the version, releases mu and notifies observers.
// Callers must hold mu; it is released on return.
func (s *ViewState) commitLocked() domain.Board {
	s.version++
	board := s.snapshotLocked()

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, id := range s.observerIDsLocked() {
		s.observers[id](board)
	}

	return board
}

// observerIDsLocked returns observer IDs in registration order. Callers must hold notifyMu.
func (s *ViewState) observerIDsLocked() []int {
	ids := make([]int, 0, len(s.observers))
	for id := range s.observers {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// viewLocked shares the saved slice with the state. It must not escape mu.
func (s *ViewState) viewLocked() domain.Board {
	return domain.Board{Current: s.current, Saved: s.saved, Version: s.version}
}

func (s *ViewState) snapshotLocked() domain.Board {
	return domain.Board{
		Current: s.current,
		Saved:   slices.Clone(s.saved),
		Version: s.version,
	}
}
