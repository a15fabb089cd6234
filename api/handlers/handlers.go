package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	"tagus-watch/models"
	"tagus-watch/repositories"
)

var allowedStatuses = map[string]bool{
	models.StatusPendingReview: true,
	models.StatusUnderReview:   true,
	models.StatusInProgress:    true,
	models.StatusResolved:      true,
	models.StatusRejected:      true,
}

// ListComplaintsHandler returns all complaints ordered by priority, together
// with per-status counts for the dashboard header.
func ListComplaintsHandler(repo *repositories.ComplaintRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		counts, err := repo.CountsByStatus(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"complaints":    items,
			"status_counts": counts,
			"total":         len(items),
		})
	}
}

func GetComplaintHandler(repo *repositories.ComplaintRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		complaint, err := repo.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, complaint)
	}
}

// UpdateStatusHandler moves a complaint through the review workflow.
func UpdateStatusHandler(repo *repositories.ComplaintRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		if !allowedStatuses[body.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
			return
		}

		err := repo.UpdateStatus(c.Request.Context(), c.Param("id"), body.Status)
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"status": body.Status})
		}
	}
}

func DeleteComplaintHandler(repo *repositories.ComplaintRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := repo.Delete(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusOK, gin.H{"deleted": true})
		}
	}
}

func StatsHandler(repo *repositories.ComplaintRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := repo.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// ComplaintAILogsHandler lists recent model calls made for one complaint.
func ComplaintAILogsHandler(repo *repositories.ComplaintRepository, logs *repositories.AILogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		complaint, err := repo.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		entries, err := logs.RecentForPost(c.Request.Context(), complaint.PostID, 20)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, entries)
	}
}
