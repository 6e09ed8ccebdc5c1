package routes

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/handlers"
	"coopsave/pkg/websocket"
)

// Handlers collects everything SetupRoutes mounts under /api/v1.
type Handlers struct {
	Auth      *handlers.AuthHandler
	Prospect  *handlers.ProspectHandler
	User      *handlers.UserHandler
	Savings   *handlers.SavingsHandler
	Branch    *handlers.BranchHandler
	Role      *handlers.RoleHandler
	Admin     *handlers.AdminHandler
	Plan      *handlers.PlanHandler
	Product   *handlers.ProductHandler
	Broadcast *handlers.BroadcastHandler
	Lookup    *handlers.LookupHandler
	WebSocket *websocket.Handler
}

func SetupRoutes(engine *gin.Engine, h *Handlers, auth gin.HandlerFunc) {
	api := engine.Group("/api/v1")

	SetupAuthRoutes(api, h.Auth, auth)
	SetupProspectRoutes(api, h.Prospect, auth)
	SetupUserRoutes(api, h.User, auth)
	SetupSavingsRoutes(api, h.Savings, auth)
	SetupBranchRoutes(api, h.Branch, auth)
	SetupRoleRoutes(api, h.Role, auth)
	SetupAdminRoutes(api, h.Admin, auth)
	SetupPlanRoutes(api, h.Plan, auth)
	SetupProductRoutes(api, h.Product, auth)
	SetupBroadcastRoutes(api, h.Broadcast, auth)
	SetupLookupRoutes(api, h.Lookup, auth)

	// Live updates stream, one socket per signed-in admin
	ws := api.Group("/ws")
	ws.Use(auth)
	{
		ws.GET("", h.WebSocket.HandleWebSocket)
	}
}
