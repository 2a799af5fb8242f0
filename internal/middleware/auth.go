package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/ocupmed/queue-api/internal/handler"
	"github.com/ocupmed/queue-api/internal/model"
	"github.com/ocupmed/queue-api/internal/repository"
	"github.com/ocupmed/queue-api/internal/service/auth"
)

// ContextActor is the gin context key holding the resolved operator.
const ContextActor = "actor"

type AuthMiddleware struct {
	authService *auth.Service
	operators   repository.OperatorRepository
	levels      *cache.Cache
}

func NewAuthMiddleware(authService *auth.Service, operators repository.OperatorRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		operators:   operators,
		levels:      cache.New(time.Minute, 5*time.Minute),
	}
}

// Authenticate verifies the bearer token and sets the actor context.
// The access level is re-read from the operator record (short cache)
// rather than trusted from the token, so a revoked or demoted operator
// loses rooms within the cache TTL even with a valid token.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		actor, err := m.authService.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		actor.AccessLevel = m.currentLevel(c, actor)

		c.Set(ContextActor, *actor)
		c.Next()
	}
}

func (m *AuthMiddleware) currentLevel(c *gin.Context, actor *model.Actor) model.AccessLevel {
	key := actor.OperatorID.String()
	if cached, ok := m.levels.Get(key); ok {
		return cached.(model.AccessLevel)
	}

	operator, err := m.operators.Get(c.Request.Context(), actor.OperatorID)
	if err != nil {
		// Unresolved access level denies everything downstream.
		return 0
	}
	m.levels.Set(key, operator.AccessLevel, cache.DefaultExpiration)
	return operator.AccessLevel
}

// ActorFromContext returns the operator context set by Authenticate.
func ActorFromContext(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}
