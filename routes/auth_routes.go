package routes

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/handlers"
)

func SetupAuthRoutes(r *gin.RouterGroup, authHandler *handlers.AuthHandler, auth gin.HandlerFunc) {
	public := r.Group("/auth")
	{
		public.POST("/login", authHandler.Login)
	}

	protected := r.Group("/auth")
	protected.Use(auth)
	{
		protected.GET("/profile", authHandler.GetProfile)
	}
}
