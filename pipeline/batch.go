package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tagus-watch/config"
	"tagus-watch/models"
	"tagus-watch/repositories"
	"tagus-watch/retry"
)

// highConfidenceThreshold marks classifications worth surfacing first.
const highConfidenceThreshold = 80

// PostSource supplies the batch with candidate posts, newest window first.
type PostSource interface {
	Fetch(ctx context.Context) ([]models.RawPost, error)
}

// Summary is the counter block for one batch run.
type Summary struct {
	RunID             string    `json:"run_id"`
	StartedAt         time.Time `json:"started_at"`
	FinishedAt        time.Time `json:"finished_at"`
	Total             int       `json:"total"`
	Complaints        int       `json:"complaints"`
	NonComplaints     int       `json:"non_complaints"`
	Rejected          int       `json:"rejected"`
	Skipped           int       `json:"skipped"`
	Failed            int       `json:"failed"`
	LocationsDetected int       `json:"locations_detected"`
	HighConfidence    int       `json:"high_confidence"`
	Saved             int       `json:"saved"`
	Updated           int       `json:"updated"`
	Unchanged         int       `json:"unchanged"`
}

// BatchProcessor drives sequential runs of the post pipeline. A short-lived
// result cache absorbs overlapping trigger sources (scheduler plus manual)
// without refetching.
type BatchProcessor struct {
	source   PostSource
	pipeline *PostPipeline

	mu            sync.Mutex
	cached        *Summary
	cachedAt      time.Time
	cacheValidity time.Duration
}

func NewBatchProcessor(source PostSource, pipeline *PostPipeline, cacheValidity time.Duration) *BatchProcessor {
	return &BatchProcessor{
		source:        source,
		pipeline:      pipeline,
		cacheValidity: cacheValidity,
	}
}

// Run fetches the current window and processes every post in order. The
// previous summary is returned as-is while it is still fresh. Posts are
// isolated from each other; only a transient persistence error aborts the
// batch, since every later write would hit the same outage.
func (b *BatchProcessor) Run(ctx context.Context) (*Summary, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cached != nil && time.Since(b.cachedAt) < b.cacheValidity {
		config.InfoWithFields("returning cached batch summary", config.Fields{
			"run_id": b.cached.RunID,
			"age":    time.Since(b.cachedAt).String(),
		})
		return b.cached, nil
	}

	summary := &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}

	posts, err := b.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	summary.Total = len(posts)

	config.InfoWithFields("batch run started", config.Fields{
		"run_id": summary.RunID,
		"posts":  len(posts),
	})

	for _, post := range posts {
		result := b.pipeline.Process(ctx, post)
		b.tally(summary, result)

		if result.State == StateFailed && retry.IsTransient(result.Err) {
			config.ErrorWithFields("aborting batch on transient store failure", config.Fields{
				"run_id":  summary.RunID,
				"post_id": result.PostID,
				"error":   result.Err.Error(),
			})
			summary.FinishedAt = time.Now()
			return summary, result.Err
		}
	}

	summary.FinishedAt = time.Now()
	b.cached = summary
	b.cachedAt = time.Now()

	config.InfoWithFields("batch run finished", config.Fields{
		"run_id":     summary.RunID,
		"total":      summary.Total,
		"complaints": summary.Complaints,
		"saved":      summary.Saved,
		"updated":    summary.Updated,
		"unchanged":  summary.Unchanged,
	})
	return summary, nil
}

// Invalidate drops the cached summary so the next Run fetches fresh data.
func (b *BatchProcessor) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cached = nil
}

func (b *BatchProcessor) tally(s *Summary, r ProcessedPost) {
	switch r.State {
	case StateSkippedNoID:
		s.Skipped++
	case StateRejectedEmpty, StateRejectedPreFilter:
		s.Rejected++
	case StateNonComplaint:
		s.NonComplaints++
	case StateEnriched, StateEnrichmentFailed:
		s.Complaints++
		if r.Classification.Confidence >= highConfidenceThreshold {
			s.HighConfidence++
		}
		if r.Enriched != nil && r.Enriched.Location != nil && r.Enriched.Location.PrimaryLocation != "" {
			s.LocationsDetected++
		}
		if r.Persisted {
			switch r.Outcome {
			case repositories.UpsertSaved:
				s.Saved++
			case repositories.UpsertUpdated:
				s.Updated++
			case repositories.UpsertUnchanged:
				s.Unchanged++
			}
		}
	case StateFailed:
		s.Failed++
	}
}
