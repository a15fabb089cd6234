package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"tagus-watch/api/handlers"
	"tagus-watch/api/middleware"
	"tagus-watch/db"
	"tagus-watch/repositories"
)

func New() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		// Try ping MongoDB
		if err := db.Database().RunCommand(context.Background(), bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// v1 routes
	api := r.Group("/api/v1")
	{
		complaints := repositories.NewComplaintRepository(db.Database())
		aiLogs := repositories.NewAILogRepository(db.Database())

		api.GET("/complaints", handlers.ListComplaintsHandler(complaints))
		api.GET("/complaints/:id", handlers.GetComplaintHandler(complaints))
		api.PATCH("/complaints/:id/status", handlers.UpdateStatusHandler(complaints))
		api.DELETE("/complaints/:id", handlers.DeleteComplaintHandler(complaints))
		api.GET("/complaints/:id/ai-logs", handlers.ComplaintAILogsHandler(complaints, aiLogs))
		api.GET("/stats", handlers.StatsHandler(complaints))
	}

	return r
}
