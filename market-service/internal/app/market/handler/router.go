package handler

import (
	"net/http"

	"berrymarket/pkg/logger"
	"berrymarket/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает все маршруты Market Service с использованием Gin.
// Применяет Auth middleware для защиты эндпоинтов
func SetupRoutes(catalogHandler *CatalogHandler, orderHandler *OrderHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.GinLoggerMiddleware())
	router.Use(metrics.GinPrometheusMiddleware("market-service"))
	router.Use(cors.Default())

	// Health check и метрики - публичные, без аутентификации
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "market-service",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Categories endpoints - все требуют аутентификации
	categories := router.Group("/categories")
	categories.Use(authMiddleware.Authenticate())
	{
		categories.GET("", catalogHandler.GetAllCategories) // Список категорий (кеш Redis)
		categories.GET("/:id", catalogHandler.GetCategory)

		// POST, PUT, DELETE только для manager и admin
		categories.POST("", authMiddleware.RequireRole("manager", "admin"), catalogHandler.CreateCategory)
		categories.PUT("/:id", authMiddleware.RequireRole("manager", "admin"), catalogHandler.UpdateCategory)
		categories.DELETE("/:id", authMiddleware.RequireRole("admin"), catalogHandler.DeleteCategory)
	}

	// Products endpoints - все требуют аутентификации
	products := router.Group("/products")
	products.Use(authMiddleware.Authenticate())
	{
		products.GET("", catalogHandler.GetAllProducts)
		products.GET("/:id", catalogHandler.GetProduct)

		products.POST("", authMiddleware.RequireRole("manager", "admin"), catalogHandler.CreateProduct)
		products.PUT("/:id", authMiddleware.RequireRole("manager", "admin"), catalogHandler.UpdateProduct)
		products.DELETE("/:id", authMiddleware.RequireRole("admin"), catalogHandler.DeleteProduct)
	}

	// Orders endpoints
	orders := router.Group("/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.GET("", orderHandler.GetAllOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("", orderHandler.CreateOrder)
		orders.POST("/:id/pay", orderHandler.PayOrder) // Отправляет OrderPaid в Kafka
		orders.DELETE("/:id", authMiddleware.RequireRole("admin"), orderHandler.DeleteOrder)
	}

	return router
}
