package routes

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/handlers"
)

func SetupProspectRoutes(r *gin.RouterGroup, prospectHandler *handlers.ProspectHandler, auth gin.HandlerFunc) {
	// Public registration endpoint, no auth required
	r.POST("/register", prospectHandler.Register)

	prospects := r.Group("/prospects")
	prospects.Use(auth)
	{
		prospects.GET("/", prospectHandler.List)
		prospects.PUT("/:id/kyc", prospectHandler.ReviewKYC)
		prospects.POST("/:id/convert", prospectHandler.Convert)
	}
}

func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler, auth gin.HandlerFunc) {
	users := r.Group("/users")
	users.Use(auth)
	{
		users.POST("/", userHandler.Create)
		users.GET("/", userHandler.List)
		users.GET("/:id", userHandler.Get)
		users.PUT("/:id/kyc", userHandler.ReviewKYC)
		users.PUT("/:id/bank-account", userHandler.SetBankAccount)
		users.POST("/:id/admins/:admin_id", userHandler.AssignAdmin)
		users.DELETE("/:id/admins/:admin_id", userHandler.UnassignAdmin)
		users.POST("/:id/activate", userHandler.Activate)
		users.POST("/:id/restrict", userHandler.Restrict)

		users.GET("/:id/subscriptions", userHandler.GetSubscriptions)
		users.GET("/:id/transactions", userHandler.GetTransactions)
		users.GET("/:id/plans/:plan_id/balance", userHandler.GetPlanBalance)
	}
}
