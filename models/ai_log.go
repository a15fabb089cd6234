package models

import "time"

// AILog records one AI completion request for offline review.
// Collection: ai_logs
type AILog struct {
	PostID          string    `bson:"post_id" json:"post_id"`
	Kind            string    `bson:"kind" json:"kind"`
	Model           string    `bson:"model" json:"model"`
	DurationMs      int64     `bson:"duration_ms" json:"duration_ms"`
	Success         bool      `bson:"success" json:"success"`
	ResponseExcerpt string    `bson:"response_excerpt" json:"response_excerpt"`
	RequestedAt     time.Time `bson:"requested_at" json:"requested_at"`
	CompletedAt     time.Time `bson:"completed_at" json:"completed_at"`
}
