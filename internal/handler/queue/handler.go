package queue

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ocupmed/queue-api/internal/handler"
	"github.com/ocupmed/queue-api/internal/middleware"
	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/internal/service/queue"
	"github.com/ocupmed/queue-api/pkg/errors"
)

type Handler struct {
	service *queue.Service
}

func NewHandler(service *queue.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	q := r.Group("/queue")
	{
		q.GET("", h.GetQueue)
		q.POST("/:id/rooms/:room/start", h.StartRoom)
		q.POST("/:id/rooms/:room/finish", h.FinishRoom)
	}
}

// GetQueue returns the active queue with per-room control states for
// the acting operator.
func (h *Handler) GetQueue(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("operator context missing"))
		return
	}

	entries, err := h.service.Snapshot(c.Request.Context(), actor, today())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(entries))
}

func (h *Handler) StartRoom(c *gin.Context) {
	h.apply(c, func(actor model.Actor, visitID uuid.UUID, room model.Room) (*model.Visit, error) {
		return h.service.Start(c.Request.Context(), actor, visitID, room)
	})
}

func (h *Handler) FinishRoom(c *gin.Context) {
	h.apply(c, func(actor model.Actor, visitID uuid.UUID, room model.Room) (*model.Visit, error) {
		return h.service.Finish(c.Request.Context(), actor, visitID, room)
	})
}

// apply runs one operator-triggered room transition. Denials
// and conflicts answer with a fresh queue snapshot so a stale client
// resyncs instead of patching its optimistic state.
func (h *Handler) apply(
	c *gin.Context,
	fn func(actor model.Actor, visitID uuid.UUID, room model.Room) (*model.Visit, error),
) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("operator context missing"))
		return
	}

	visitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid visit ID"))
		return
	}

	room := model.Room(c.Param("room"))
	if !room.Valid() {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("unknown room"))
		return
	}

	updated, err := fn(actor, visitID, room)
	if err != nil {
		switch {
		case errors.IsForbidden(err):
			h.rejectWithSnapshot(c, actor, http.StatusForbidden, err)
		case errors.IsConflict(err):
			h.rejectWithSnapshot(c, actor, http.StatusConflict, err)
		case errors.IsNotFound(err):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("visit not found"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}

func (h *Handler) rejectWithSnapshot(c *gin.Context, actor model.Actor, status int, cause error) {
	entries, err := h.service.Snapshot(c.Request.Context(), actor, today())
	if err != nil {
		c.JSON(status, handler.NewErrorResponse(cause.Error()))
		return
	}
	c.JSON(status, &handler.Response{
		Status:  "error",
		Message: cause.Error(),
		Data:    entries,
	})
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
