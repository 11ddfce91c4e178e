package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bahsow/fleetdesk/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(fleetHandler *handlers.FleetHandler, analyticsHandler *handlers.AnalyticsHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(requireOwner())
	{
		api.POST("/cars", fleetHandler.CreateCar)
		api.GET("/cars", fleetHandler.ListCars)
		api.GET("/cars/watch", fleetHandler.WatchCars)
		api.GET("/cars/:id", fleetHandler.GetCar)
		api.PUT("/cars/:id", fleetHandler.UpdateCar)
		api.DELETE("/cars/:id", fleetHandler.DeleteCar)
		api.POST("/cars/:id/photo", fleetHandler.UploadPhoto)

		api.POST("/entries", fleetHandler.CreateEntry)
		api.GET("/entries", fleetHandler.ListEntries)
		api.DELETE("/entries/:id", fleetHandler.DeleteEntry)

		api.POST("/expenses", fleetHandler.CreateExpense)
		api.GET("/expenses", fleetHandler.ListExpenses)
		api.DELETE("/expenses/:id", fleetHandler.DeleteExpense)

		api.GET("/analytics", analyticsHandler.GetAnalytics)
		api.POST("/reports/monthly", analyticsHandler.ExportReport)
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

// requireOwner scopes every API call to the owner named in the X-Owner-ID
// header. The mobile client sets it from the signed-in account.
func requireOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := c.GetHeader("X-Owner-ID")
		if owner == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-Owner-ID header is required"})
			return
		}
		c.Set("owner_id", owner)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
