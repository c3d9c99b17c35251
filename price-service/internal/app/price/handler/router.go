package handler

import (
	"net/http"

	"berrymarket/pkg/logger"
	"berrymarket/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает маршруты Price Service
func SetupRoutes(priceHandler *PriceHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("price-service"))
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "price-service",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	prices := router.Group("/prices")
	{
		prices.POST("", priceHandler.CreatePrice) // Отправляет PriceUpdated в Kafka
		prices.GET("/:productId", priceHandler.GetPriceHistory)
	}

	return router
}
