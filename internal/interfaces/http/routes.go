package http

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api/v1")
	{
		api.GET("/instruments", handler.ListInstruments)
		api.GET("/instruments/:symbol", handler.GetInstrument)

		api.GET("/account", handler.GetAccountSummary)
		api.GET("/accounts/:id", handler.GetAccount)
		api.POST("/account/deposit", handler.Deposit)
		api.POST("/account/withdraw", handler.Withdraw)
		api.GET("/trades", handler.ListTrades)

		api.POST("/orders/buy", handler.Buy)
		api.POST("/orders/sell", handler.Sell)
		api.POST("/orders/batch", handler.ExecuteOrders)

		api.POST("/market/tick", handler.Tick)
	}

	router.GET("/ws/prices", handler.StreamPrices)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
