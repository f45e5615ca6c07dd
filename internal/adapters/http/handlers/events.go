package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteboard/internal/adapters/http/dto"
)

// EventBoard is the server-sent event name carrying a board snapshot.
const EventBoard = "board"

// Events handles GET /board/events. It sends the current board, then one
// event per new version until the client goes away or Close is called.
func (h *BoardHandler) Events(c *gin.Context) {
	ctx := c.Request.Context()

	updates, cancel := h.board.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	initial := h.board.Board(ctx)
	last := initial.Version

	c.SSEvent(EventBoard, dto.NewBoardResponse(initial))
	c.Writer.Flush()

	var heartbeat <-chan time.Time
	if h.heartbeat > 0 {
		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		heartbeat = ticker.C
	}

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false

		case <-h.done:
			return false

		case board, ok := <-updates:
			if !ok {
				return false
			}

			if board.Version > last {
				last = board.Version
				c.SSEvent(EventBoard, dto.NewBoardResponse(board))
			}

			return true

		case <-heartbeat:
			_, err := io.WriteString(w, ": heartbeat\n\n")
			return err == nil
		}
	})
}
