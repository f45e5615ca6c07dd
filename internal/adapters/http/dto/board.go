package dto

import (
	"time"

	"github.com/jsamuelsen/quoteboard/internal/domain"
)

// BoardResponse is the JSON form of a board snapshot.
type BoardResponse struct {
	Current    string               `json:"current"`
	HasCurrent bool                 `json:"hasCurrent"`
	CanSave    bool                 `json:"canSave"`
	Saved      []SavedQuoteResponse `json:"saved"`
	Version    uint64               `json:"version"`
}

// SavedQuoteResponse is one entry of the saved list.
type SavedQuoteResponse struct {
	ID      string    `json:"id"`
	Text    string    `json:"text"`
	SavedAt time.Time `json:"savedAt"`
}

// NewBoardResponse converts a board snapshot. Saved is never null.
func NewBoardResponse(b domain.Board) BoardResponse {
	saved := make([]SavedQuoteResponse, len(b.Saved))
	for i, s := range b.Saved {
		saved[i] = SavedQuoteResponse{
			ID:      s.ID,
			Text:    s.Text.String(),
			SavedAt: s.SavedAt.UTC(),
		}
	}

	return BoardResponse{
		Current:    b.Current.String(),
		HasCurrent: b.HasCurrent(),
		CanSave:    b.CanSave(),
		Saved:      saved,
		Version:    b.Version,
	}
}

// PositionRequest identifies a saved entry by zero-based position.
type PositionRequest struct {
	Position int `uri:"position" json:"position"`
}

// SavedIDRequest identifies a saved entry by its stable ID.
type SavedIDRequest struct {
	ID string `uri:"id" json:"id" validate:"required,notempty,max=64"`
}
