package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ClassificationResult is the binary complaint decision plus a heuristic
// confidence (0-100). Confidence is a presentation hint, not a probability.
type ClassificationResult struct {
	IsComplaint bool `bson:"is_complaint" json:"is_complaint"`
	Confidence  int  `bson:"confidence" json:"confidence"`
}

// PatternMatch is one locative-preposition regex hit against the original
// message text, kept as corroborating evidence for the AI-derived location.
type PatternMatch struct {
	Pattern   string   `bson:"pattern" json:"pattern"`
	Matches   []string `bson:"matches" json:"matches"`
	Validated bool     `bson:"validated" json:"validated"`
}

// LocationAnalysis is the AI-extracted location enriched with regex
// cross-validation. ValidationScore is 20 per matching pattern, additive and
// uncapped; it never overrides PrimaryLocation.
type LocationAnalysis struct {
	PrimaryLocation   string         `bson:"primary_location" json:"primary_location"`
	ExtractionMethod  string         `bson:"extraction_method" json:"extraction_method"`
	Confidence        int            `bson:"confidence" json:"confidence"`
	LocationType      string         `bson:"location_type" json:"location_type"`
	Context           string         `bson:"context,omitempty" json:"context,omitempty"`
	PatternValidation []PatternMatch `bson:"pattern_validation" json:"pattern_validation"`
	ValidationScore   int            `bson:"validation_score" json:"validation_score"`
}

// AIAnalysis is the free-form analysis block of an enriched complaint.
type AIAnalysis struct {
	Sentiment        string   `bson:"sentiment" json:"sentiment"`
	UrgencyLevel     string   `bson:"urgency_level" json:"urgency_level"`
	Category         string   `bson:"category" json:"category"`
	Summary          string   `bson:"summary" json:"summary"`
	SuggestedActions []string `bson:"suggested_actions" json:"suggested_actions"`
}

// EnrichedComplaint is the structured extraction for one confirmed complaint.
// OriginalPriority preserves the AI-assigned value before the urgency-word
// boost, for auditability.
type EnrichedComplaint struct {
	PriorityScore      int               `bson:"priority_score" json:"priority_score"`
	OriginalPriority   int               `bson:"original_priority" json:"original_priority"`
	Department         string            `bson:"department" json:"department"`
	RecommendedOfficer string            `bson:"recommended_officer" json:"recommended_officer"`
	Location           *LocationAnalysis `bson:"location_analysis,omitempty" json:"location_analysis,omitempty"`
	Analysis           AIAnalysis        `bson:"ai_analysis" json:"ai_analysis"`
}

// LocationSummary is the flattened location block stored on the document for
// easy dashboard access.
type LocationSummary struct {
	Location        string `bson:"location" json:"location"`
	Confidence      int    `bson:"confidence" json:"confidence"`
	Type            string `bson:"type" json:"type"`
	Method          string `bson:"method" json:"method"`
	Context         string `bson:"context,omitempty" json:"context,omitempty"`
	ValidationScore int    `bson:"validation_score" json:"validation_score"`
}

// Allowed complaint review statuses.
const (
	StatusPendingReview = "pending_review"
	StatusUnderReview   = "under_review"
	StatusInProgress    = "in_progress"
	StatusResolved      = "resolved"
	StatusRejected      = "rejected"
)

// Complaint is the persisted document, keyed by the natural key PostID.
// Collection: complaints
type Complaint struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID             string             `bson:"post_id" json:"post_id"`
	Time               string             `bson:"time" json:"time"`
	Date               string             `bson:"date" json:"date"`
	ProfileName        string             `bson:"profile_name" json:"profile_name"`
	ImageLink          string             `bson:"image_link" json:"image_link"`
	VideoLink          string             `bson:"video_link" json:"video_link"`
	ComplaintQuery     string             `bson:"complaint_query" json:"complaint_query"`
	PriorityScore      int                `bson:"priority_score" json:"priority_score"`
	Department         string             `bson:"department" json:"department"`
	RecommendedOfficer string             `bson:"recommended_officer" json:"recommended_officer"`
	Analysis           AIAnalysis         `bson:"ai_analysis" json:"ai_analysis"`
	Status             string             `bson:"status" json:"status"`
	Permalink          string             `bson:"permalink" json:"permalink"`
	LocationData       *LocationSummary   `bson:"location_data,omitempty" json:"location_data,omitempty"`
	ConfidenceScore    int                `bson:"confidence_score" json:"confidence_score"`
	CreatedAt          time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updated_at"`
}
