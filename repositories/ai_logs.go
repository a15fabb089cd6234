package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tagus-watch/config"
	"tagus-watch/models"
)

// AILogRepository records one document per model call for audit and cost
// tracking. Logging is best effort and never fails the pipeline.
type AILogRepository struct {
	col *mongo.Collection
}

func NewAILogRepository(db *mongo.Database) *AILogRepository {
	return &AILogRepository{col: db.Collection("ai_logs")}
}

func (r *AILogRepository) Insert(ctx context.Context, log *models.AILog) {
	if _, err := r.col.InsertOne(ctx, log); err != nil {
		config.ErrorWithFields("failed to record ai log", config.Fields{
			"post_id": log.PostID,
			"kind":    log.Kind,
			"error":   err.Error(),
		})
	}
}

// RecentForPost returns up to limit most recent calls for a post.
func (r *AILogRepository) RecentForPost(ctx context.Context, postID string, limit int64) ([]models.AILog, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "requested_at", Value: -1}}).
		SetLimit(limit)
	cur, err := r.col.Find(ctx, bson.M{"post_id": postID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.AILog
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
