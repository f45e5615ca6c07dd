package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quoteboard/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteboard/internal/app"
	"github.com/jsamuelsen/quoteboard/internal/domain"
)

// DefaultHeartbeat is the interval between keep-alive comments on the event stream.
const DefaultHeartbeat = 15 * time.Second

// BoardHandler serves the JSON API and the event stream of the board.
type BoardHandler struct {
	board     *app.QuoteBoard
	heartbeat time.Duration

	done      chan struct{}
	closeOnce sync.Once
}

// NewBoardHandler creates a board handler. A non-positive heartbeat
// disables keep-alive comments on the event stream.
func NewBoardHandler(board *app.QuoteBoard, heartbeat time.Duration) *BoardHandler {
	return &BoardHandler{
		board:     board,
		heartbeat: heartbeat,
		done:      make(chan struct{}),
	}
}

// Close ends every open event stream. It is safe to call more than once.
func (h *BoardHandler) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
}

// GetBoard handles GET /board.
//
// @Summary Get the board
// @Tags board
// @Produce json
// @Success 200 {object} dto.BoardResponse
// @Router /api/v1/board [get]
func (h *BoardHandler) GetBoard(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewBoardResponse(h.board.Board(c.Request.Context())))
}

// FetchQuote handles POST /board/fetch. A failed fetch is not an error
// for the caller: the unchanged board is returned with 200.
//
// @Summary Fetch a new quote
// @Tags board
// @Produce json
// @Success 200 {object} dto.BoardResponse
// @Router /api/v1/board/fetch [post]
func (h *BoardHandler) FetchQuote(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewBoardResponse(h.board.FetchQuote(c.Request.Context())))
}

// SaveQuote handles POST /board/save.
//
// @Summary Save the current quote
// @Tags board
// @Produce json
// @Success 200 {object} dto.BoardResponse
// @Router /api/v1/board/save [post]
func (h *BoardHandler) SaveQuote(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewBoardResponse(h.board.SaveQuote(c.Request.Context())))
}

// DeleteAtPosition handles DELETE /board/positions/:position.
//
// @Summary Delete a saved quote by position
// @Tags board
// @Produce json
// @Param position path int true "Zero-based position"
// @Success 200 {object} dto.BoardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/board/positions/{position} [delete]
func (h *BoardHandler) DeleteAtPosition(c *gin.Context) {
	var req dto.PositionRequest
	if err := dto.BindURIAndValidate(c, &req); err != nil {
		dto.HandleError(c, domain.NewValidationErrorWithValue("position", "must be an integer", c.Param("position")))
		return
	}

	c.JSON(http.StatusOK, dto.NewBoardResponse(h.board.DeleteQuote(c.Request.Context(), req.Position)))
}

// DeleteSaved handles DELETE /board/saved/:id.
//
// @Summary Delete a saved quote by ID
// @Tags board
// @Produce json
// @Param id path string true "Saved quote ID"
// @Success 200 {object} dto.BoardResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/board/saved/{id} [delete]
func (h *BoardHandler) DeleteSaved(c *gin.Context) {
	var req dto.SavedIDRequest
	if err := dto.BindURIAndValidate(c, &req); err != nil {
		dto.HandleError(c, validationError(err, "id", c.Param("id")))
		return
	}

	c.JSON(http.StatusOK, dto.NewBoardResponse(h.board.DeleteSavedQuote(c.Request.Context(), req.ID)))
}

// RegisterRoutes registers the board routes on rg.
func (h *BoardHandler) RegisterRoutes(rg *gin.RouterGroup) {
	board := rg.Group("/board")

	board.GET("", h.GetBoard)
	board.POST("/fetch", h.FetchQuote)
	board.POST("/save", h.SaveQuote)
	board.DELETE("/positions/:position", h.DeleteAtPosition)
	board.DELETE("/saved/:id", h.DeleteSaved)
	board.GET("/events", h.Events)
}

// validationError converts a binding or validator failure into a domain
// validation error for field.
func validationError(err error, field string, value any) error {
	if msg, ok := dto.ValidationErrors(err)[field]; ok {
		return domain.NewValidationErrorWithValue(field, msg, value)
	}

	return domain.NewValidationErrorWithValue(field, "is invalid", value)
}
