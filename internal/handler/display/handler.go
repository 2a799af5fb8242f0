package display

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ocupmed/queue-api/internal/handler"
	"github.com/ocupmed/queue-api/internal/middleware"
	"github.com/ocupmed/queue-api/internal/service/display"
)

// Handler serves the passive call display. The board endpoint is
// unauthenticated: the screen in the waiting room has no operator.
type Handler struct {
	feed *display.Feed
}

func NewHandler(feed *display.Feed) *Handler {
	return &Handler{feed: feed}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/display/board", middleware.Cache(middleware.DisplayCacheConfig()), h.GetBoard)
}

func (h *Handler) GetBoard(c *gin.Context) {
	board, err := h.feed.Board(c.Request.Context(), today())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(board))
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
