package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guardino-io/guardino/internal/domain/reseller"
	"github.com/guardino-io/guardino/internal/infrastructure/auth"
	"github.com/guardino-io/guardino/internal/shared/constants"
	"github.com/guardino-io/guardino/internal/shared/logger"
	"github.com/guardino-io/guardino/internal/shared/utils"
)

type AuthMiddleware struct {
	jwtService   *auth.JWTService
	resellerRepo reseller.Repository
	logger       logger.Interface
}

func NewAuthMiddleware(jwtService *auth.JWTService, resellerRepo reseller.Repository, logger logger.Interface) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:   jwtService,
		resellerRepo: resellerRepo,
		logger:       logger,
	}
}

// RequireAuth verifies the bearer token and rejects suspended resellers on
// every request, not just at login. Locked resellers still pass; the
// usecases decide what a locked account may do.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "missing authorization token")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := m.jwtService.Verify(parts[1])
		if err != nil {
			m.logger.Warnw("failed to verify token", "error", err)
			utils.ErrorResponse(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		actor, err := m.resellerRepo.GetByID(c.Request.Context(), claims.ResellerID)
		if err != nil {
			m.logger.Errorw("failed to load reseller for auth", "error", err, "reseller_id", claims.ResellerID)
			utils.ErrorResponse(c, http.StatusInternalServerError, "failed to authenticate request")
			c.Abort()
			return
		}
		if actor == nil || actor.Status() == reseller.StatusSuspended {
			utils.ErrorResponse(c, http.StatusForbidden, "account is suspended")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyResellerID, claims.ResellerID)
		c.Set(constants.ContextKeyIsRoot, actor.IsRoot())

		c.Next()
	}
}

// RequireRoot guards the fleet-management routes. Must run after RequireAuth.
func (m *AuthMiddleware) RequireRoot() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !c.GetBool(constants.ContextKeyIsRoot) {
			utils.ErrorResponse(c, http.StatusForbidden, "root access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
