package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"coopsave/internal/models"
	"coopsave/internal/services"
	"coopsave/internal/utils"
)

const (
	ContextActor     = "actor"
	ContextAdminID   = "admin_id"
	ContextBranchID  = "branch_id"
	ContextRequestID = "request_id"
)

// AuthRequired validates the bearer token and resolves the acting admin.
// The role is re-read on every request, so a permission edit or admin
// deactivation takes effect on the holder's next call.
func AuthRequired(identity services.IdentityService, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		actor, err := identity.ResolveActor(c.Request.Context(), claims.AdminID)
		if err != nil {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		c.Set(ContextActor, actor)
		c.Set(ContextAdminID, actor.AdminID)
		if actor.BranchID != nil {
			c.Set(ContextBranchID, actor.BranchID.Hex())
		}

		c.Next()
	}
}

// RequirePermission gates a route group on a permission with no record
// scope. Handlers still re-check against the concrete target.
func RequirePermission(permissions services.PermissionService, permission models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil || !permissions.CanPerform(actor, permission, nil) {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetActor returns the resolved actor, or nil outside AuthRequired.
func GetActor(c *gin.Context) *services.Actor {
	value, exists := c.Get(ContextActor)
	if !exists {
		return nil
	}

	actor, ok := value.(*services.Actor)
	if !ok {
		return nil
	}

	return actor
}
