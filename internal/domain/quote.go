// Package domain contains core business entities and rules.
package domain

import (
	"slices"
	"time"
)

// Quote is a short piece of text from the remote quote source.
// It has no identity beyond its content. The zero value means "no quote".
type Quote string

// IsEmpty reports whether the quote is absent.
func (q Quote) IsEmpty() bool {
	return q == ""
}

// String implements fmt.Stringer.
func (q Quote) String() string {
	return string(q)
}

// SavedQuote is an entry of the saved list.
// ID is assigned once at insertion and never reused within a session.
type SavedQuote struct {
	ID      string
	Text    Quote
	SavedAt time.Time
}

// Board is an immutable snapshot of the view state.
type Board struct {
	// Current is the most recently applied fetch result, empty until the first success.
	Current Quote

	// Saved holds the saved quotes in insertion order.
	Saved []SavedQuote

	// Version increments on every committed change.
	Version uint64
}

// HasCurrent reports whether a current quote is displayed.
func (b Board) HasCurrent() bool {
	return !b.Current.IsEmpty()
}

// CanSave reports whether the save control is enabled.
func (b Board) CanSave() bool {
	return b.HasCurrent()
}

// Contains reports whether q is already in the saved list.
func (b Board) Contains(q Quote) bool {
	return slices.ContainsFunc(b.Saved, func(s SavedQuote) bool {
		return s.Text == q
	})
}

// Texts returns the saved quote texts in order.
func (b Board) Texts() []Quote {
	texts := make([]Quote, len(b.Saved))
	for i, s := range b.Saved {
		texts[i] = s.Text
	}

	return texts
}

// IndexOf returns the position of the saved entry with the given ID, or -1.
func (b Board) IndexOf(id string) int {
	return slices.IndexFunc(b.Saved, func(s SavedQuote) bool {
		return s.ID == id
	})
}

// FetchOutcome classifies how a fetch ended.
type FetchOutcome string

const (
	// FetchSuccess means the response was applied to the board.
	FetchSuccess FetchOutcome = "success"

	// FetchFailed means the fetch failed and the board is unchanged.
	FetchFailed FetchOutcome = "failure"

	// FetchStale means a newer fetch had already been applied and the response was dropped.
	FetchStale FetchOutcome = "stale"
)
