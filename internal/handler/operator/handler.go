package operator

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ocupmed/queue-api/internal/handler"
	"github.com/ocupmed/queue-api/internal/middleware"
	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/internal/service/auth"
)

type Handler struct {
	service *auth.Service
}

func NewHandler(service *auth.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/operators", h.CreateOperator)
}

// CreateOperator registers a staff member. Only unrestricted operators
// may create accounts.
func (h *Handler) CreateOperator(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("operator context missing"))
		return
	}
	if actor.AccessLevel != model.AccessAll {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("insufficient access level"))
		return
	}

	var req model.CreateOperatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}
