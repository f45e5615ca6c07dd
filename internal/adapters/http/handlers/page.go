package handlers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"

	"github.com/jsamuelsen/quoteboard/internal/adapters/http/dto"
	"github.com/jsamuelsen/quoteboard/internal/app"
	"github.com/jsamuelsen/quoteboard/internal/domain"
)

//go:embed templates/board.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/board.html"))

// PageHandler renders the board as an HTML page and accepts its form posts.
type PageHandler struct {
	board      *app.QuoteBoard
	eventsPath string
}

// NewPageHandler creates a page handler. eventsPath is the URL the page
// subscribes to for board updates.
func NewPageHandler(board *app.QuoteBoard, eventsPath string) *PageHandler {
	return &PageHandler{
		board:      board,
		eventsPath: eventsPath,
	}
}

type pageView struct {
	Current    string
	HasCurrent bool
	CanSave    bool
	Saved      []savedView
	Version    uint64
	EventsPath string
}

type savedView struct {
	ID   string
	Text string
}

func (h *PageHandler) view(b domain.Board) pageView {
	saved := make([]savedView, len(b.Saved))
	for i, s := range b.Saved {
		saved[i] = savedView{ID: s.ID, Text: s.Text.String()}
	}

	return pageView{
		Current:    b.Current.String(),
		HasCurrent: b.HasCurrent(),
		CanSave:    b.CanSave(),
		Saved:      saved,
		Version:    b.Version,
		EventsPath: h.eventsPath,
	}
}

// Index handles GET /.
func (h *PageHandler) Index(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Render(http.StatusOK, render.HTML{
		Template: pageTemplate,
		Name:     "board.html",
		Data:     h.view(h.board.Board(c.Request.Context())),
	})
}

// Fetch handles POST /fetch.
func (h *PageHandler) Fetch(c *gin.Context) {
	h.board.FetchQuote(c.Request.Context())
	h.redirect(c)
}

// Save handles POST /save.
func (h *PageHandler) Save(c *gin.Context) {
	h.board.SaveQuote(c.Request.Context())
	h.redirect(c)
}

// Delete handles POST /saved/:id/delete.
func (h *PageHandler) Delete(c *gin.Context) {
	var req dto.SavedIDRequest
	if err := dto.BindURIAndValidate(c, &req); err != nil {
		dto.HandleError(c, validationError(err, "id", c.Param("id")))
		return
	}

	h.board.DeleteSavedQuote(c.Request.Context(), req.ID)
	h.redirect(c)
}

func (h *PageHandler) redirect(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// RegisterRoutes registers the page routes on the engine root.
func (h *PageHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/", h.Index)
	engine.POST("/fetch", h.Fetch)
	engine.POST("/save", h.Save)
	engine.POST("/saved/:id/delete", h.Delete)
}
