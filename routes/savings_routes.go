package routes

import (
	"github.com/gin-gonic/gin"

	"coopsave/internal/handlers"
)

func SetupSavingsRoutes(r *gin.RouterGroup, savingsHandler *handlers.SavingsHandler, auth gin.HandlerFunc) {
	subscriptions := r.Group("/subscriptions")
	subscriptions.Use(auth)
	{
		subscriptions.POST("/", savingsHandler.Subscribe)
		subscriptions.PUT("/:id/resolve", savingsHandler.ResolveSubscription)
	}

	transactions := r.Group("/transactions")
	transactions.Use(auth)
	{
		transactions.POST("/", savingsHandler.PlaceTransaction)
		transactions.GET("/", savingsHandler.ListTransactions)
		transactions.PUT("/:id/resolve", savingsHandler.ResolveTransaction)
	}
}
