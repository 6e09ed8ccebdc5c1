package routes

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/handlers"
)

func SetupPlanRoutes(r *gin.RouterGroup, planHandler *handlers.PlanHandler, auth gin.HandlerFunc) {
	r.GET("/plans/active", planHandler.ListActive)

	plans := r.Group("/plans")
	plans.Use(auth)
	{
		plans.POST("/", planHandler.Create)
		plans.GET("/", planHandler.List)
		plans.GET("/:id", planHandler.Get)
		plans.PUT("/:id", planHandler.Update)
		plans.DELETE("/:id", planHandler.Delete)
	}
}

func SetupProductRoutes(r *gin.RouterGroup, productHandler *handlers.ProductHandler, auth gin.HandlerFunc) {
	r.GET("/products/active", productHandler.ListActive)

	products := r.Group("/products")
	products.Use(auth)
	{
		products.POST("/", productHandler.Create)
		products.GET("/", productHandler.List)
		products.GET("/:id", productHandler.Get)
		products.PUT("/:id", productHandler.Update)
		products.DELETE("/:id", productHandler.Delete)
	}
}

func SetupBroadcastRoutes(r *gin.RouterGroup, broadcastHandler *handlers.BroadcastHandler, auth gin.HandlerFunc) {
	broadcasts := r.Group("/broadcasts")
	broadcasts.Use(auth)
	{
		broadcasts.POST("/", broadcastHandler.Send)
		broadcasts.GET("/", broadcastHandler.List)
		broadcasts.GET("/:id/recipients", broadcastHandler.GetRecipients)
		broadcasts.DELETE("/:id", broadcastHandler.Delete)
	}
}
