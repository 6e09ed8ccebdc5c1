package routes

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/handlers"
)

func SetupBranchRoutes(r *gin.RouterGroup, branchHandler *handlers.BranchHandler, auth gin.HandlerFunc) {
	// Public list feeds the registration form
	r.GET("/branches/public", branchHandler.ListPublic)

	branches := r.Group("/branches")
	branches.Use(auth)
	{
		branches.POST("/", branchHandler.Create)
		branches.GET("/", branchHandler.List)
		branches.GET("/:id", branchHandler.Get)
		branches.PUT("/:id", branchHandler.Update)
		branches.DELETE("/:id", branchHandler.Delete)
	}
}

func SetupRoleRoutes(r *gin.RouterGroup, roleHandler *handlers.RoleHandler, auth gin.HandlerFunc) {
	roles := r.Group("/roles")
	roles.Use(auth)
	{
		roles.POST("/", roleHandler.Create)
		roles.GET("/", roleHandler.List)
		roles.GET("/permissions", roleHandler.ListPermissions)
		roles.GET("/:id", roleHandler.Get)
		roles.PUT("/:id", roleHandler.Update)
		roles.DELETE("/:id", roleHandler.Delete)
	}
}

func SetupAdminRoutes(r *gin.RouterGroup, adminHandler *handlers.AdminHandler, auth gin.HandlerFunc) {
	admins := r.Group("/admins")
	admins.Use(auth)
	{
		admins.POST("/", adminHandler.Create)
		admins.GET("/", adminHandler.List)
		admins.GET("/:id", adminHandler.Get)
		admins.PUT("/:id", adminHandler.Update)
		admins.POST("/:id/deactivate", adminHandler.Deactivate)
	}
}

func SetupLookupRoutes(r *gin.RouterGroup, lookupHandler *handlers.LookupHandler, auth gin.HandlerFunc) {
	// States are public for the registration form
	r.GET("/lookups/states", lookupHandler.ListStates)

	lookups := r.Group("/lookups")
	lookups.Use(auth)
	{
		lookups.GET("/banks", lookupHandler.ListBanks)
		lookups.POST("/resolve-account", lookupHandler.ResolveAccount)
	}
}
