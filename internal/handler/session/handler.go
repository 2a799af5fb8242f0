package session

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ocupmed/queue-api/internal/handler"
	"github.com/ocupmed/queue-api/internal/middleware"
	"github.com/ocupmed/queue-api/internal/service/session"
)

type Handler struct {
	service *session.Service
}

func NewHandler(service *session.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/sessions")
	{
		sessions.GET("/open", h.GetOpenSession)
		sessions.GET("/visits/:id", h.ListVisitSessions)
	}
}

// GetOpenSession returns the acting operator's open attendance session,
// if any, so a reloaded client can rehydrate its elapsed-time timer
// from started_at instead of a cached value.
func (h *Handler) GetOpenSession(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("operator context missing"))
		return
	}

	open, err := h.service.OpenForOperator(c.Request.Context(), actor.OperatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}
	if open == nil {
		c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"session":         open,
		"elapsed_seconds": int(open.Elapsed(time.Now()).Seconds()),
	}))
}

func (h *Handler) ListVisitSessions(c *gin.Context) {
	visitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid visit ID"))
		return
	}

	sessions, err := h.service.History(c.Request.Context(), visitID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(sessions))
}
