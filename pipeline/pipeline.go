package pipeline

import (
	"context"
	"fmt"
	"time"

	"tagus-watch/config"
	"tagus-watch/models"
	"tagus-watch/prefilter"
	"tagus-watch/repositories"
	"tagus-watch/sanitizer"
)

// State is the terminal disposition of one post run through the pipeline.
type State string

const (
	StateSkippedNoID       State = "skipped_no_id"
	StateRejectedEmpty     State = "rejected_empty"
	StateRejectedPreFilter State = "rejected_pre_filter"
	StateNonComplaint      State = "non_complaint"
	StateEnriched          State = "enriched"
	StateEnrichmentFailed  State = "enrichment_failed"
	StateFailed            State = "failed"
)

// TextClassifier makes the binary complaint decision. It must not fail; a
// degraded negative result stands in for any error.
type TextClassifier interface {
	Classify(ctx context.Context, text string) models.ClassificationResult
}

// TextEnricher runs the structured extraction for a confirmed complaint.
type TextEnricher interface {
	Enrich(ctx context.Context, cleanedText, originalText string) (*models.EnrichedComplaint, error)
}

// AuthorResolver scrapes the post permalink for the author name and media.
type AuthorResolver interface {
	Resolve(ctx context.Context, permalink string) models.ResolvedAuthor
}

// ComplaintStore persists enrichment results keyed by post id.
type ComplaintStore interface {
	Upsert(ctx context.Context, c *models.Complaint) (repositories.UpsertOutcome, error)
}

// CallLog records one document per model call. Optional.
type CallLog interface {
	Insert(ctx context.Context, log *models.AILog)
}

// ProcessedPost is the full account of one post's trip through the pipeline.
type ProcessedPost struct {
	PostID         string
	State          State
	Reason         string
	Classification models.ClassificationResult
	Enriched       *models.EnrichedComplaint
	Outcome        repositories.UpsertOutcome
	Persisted      bool
	Err            error
}

// PostPipeline runs one post through sanitization, pre-filtering,
// classification, enrichment, and persistence. A failure in one post never
// propagates to the next; Process converts panics and errors into a terminal
// state on the returned record.
type PostPipeline struct {
	classifier TextClassifier
	enricher   TextEnricher
	resolver   AuthorResolver
	store      ComplaintStore
	calls      CallLog
	filter     *prefilter.Filter
	model      string
	strictSan  bool
}

type Options struct {
	// StrictSanitizer applies boilerplate and punctuation stripping in
	// addition to watermark removal before the pre-filter runs.
	StrictSanitizer bool
	// Model is recorded on call log entries.
	Model string
}

func New(classifier TextClassifier, enricher TextEnricher, resolver AuthorResolver,
	store ComplaintStore, calls CallLog, filter *prefilter.Filter, opts Options) *PostPipeline {
	return &PostPipeline{
		classifier: classifier,
		enricher:   enricher,
		resolver:   resolver,
		store:      store,
		calls:      calls,
		filter:     filter,
		model:      opts.Model,
		strictSan:  opts.StrictSanitizer,
	}
}

// Process runs the full state machine for one post.
func (p *PostPipeline) Process(ctx context.Context, post models.RawPost) (result ProcessedPost) {
	result = ProcessedPost{PostID: post.ID}

	defer func() {
		if r := recover(); r != nil {
			result.State = StateFailed
			result.Err = fmt.Errorf("panic while processing post %s: %v", post.ID, r)
			config.ErrorWithFields("post processing panicked", config.Fields{
				"post_id": post.ID,
				"panic":   fmt.Sprint(r),
			})
		}
	}()

	if post.ID == "" {
		result.State = StateSkippedNoID
		result.Reason = "post has no id"
		config.WarnWithFields("skipping post without id", config.Fields{
			"created_time": post.CreatedTime,
			"permalink":    post.Permalink,
		})
		return result
	}

	cleaned := sanitizer.Sanitize(post.Message)
	if p.strictSan {
		cleaned = sanitizer.SanitizeStrict(post.Message)
	}
	if cleaned == "" {
		result.State = StateRejectedEmpty
		result.Reason = "empty after sanitization"
		return result
	}

	if ok, reason := p.filter.Passes(cleaned); !ok {
		result.State = StateRejectedPreFilter
		result.Reason = reason
		return result
	}

	result.Classification = p.classify(ctx, post.ID, cleaned)
	if !result.Classification.IsComplaint {
		result.State = StateNonComplaint
		return result
	}

	enriched, err := p.enrich(ctx, post.ID, cleaned, post.Message)
	if err != nil {
		result.State = StateEnrichmentFailed
		result.Err = err
		config.WarnWithFields("enrichment failed, persisting bare complaint", config.Fields{
			"post_id": post.ID,
			"error":   err.Error(),
		})
	} else {
		result.State = StateEnriched
		result.Enriched = enriched
	}

	doc := p.buildDocument(ctx, post, cleaned, result.Classification, result.Enriched)
	outcome, err := p.store.Upsert(ctx, doc)
	if err != nil {
		result.State = StateFailed
		result.Err = err
		return result
	}
	result.Outcome = outcome
	result.Persisted = true
	return result
}

func (p *PostPipeline) classify(ctx context.Context, postID, text string) models.ClassificationResult {
	started := time.Now()
	res := p.classifier.Classify(ctx, text)
	p.record(ctx, postID, "classify", started, true,
		fmt.Sprintf("is_complaint=%t confidence=%d", res.IsComplaint, res.Confidence))
	return res
}

func (p *PostPipeline) enrich(ctx context.Context, postID, cleaned, original string) (*models.EnrichedComplaint, error) {
	started := time.Now()
	enriched, err := p.enricher.Enrich(ctx, cleaned, original)
	if err != nil {
		p.record(ctx, postID, "enrich", started, false, err.Error())
		return nil, err
	}
	p.record(ctx, postID, "enrich", started, true,
		fmt.Sprintf("priority=%d department=%s", enriched.PriorityScore, enriched.Department))
	return enriched, nil
}

func (p *PostPipeline) record(ctx context.Context, postID, kind string, started time.Time, success bool, excerpt string) {
	if p.calls == nil {
		return
	}
	completed := time.Now()
	p.calls.Insert(ctx, &models.AILog{
		PostID:          postID,
		Kind:            kind,
		Model:           p.model,
		DurationMs:      completed.Sub(started).Milliseconds(),
		Success:         success,
		ResponseExcerpt: excerpt,
		RequestedAt:     started,
		CompletedAt:     completed,
	})
}

// buildDocument assembles the persisted complaint. Enrichment may be nil when
// the extraction failed; the document then carries conservative defaults so a
// reviewer still sees the complaint.
func (p *PostPipeline) buildDocument(ctx context.Context, post models.RawPost, cleaned string,
	classification models.ClassificationResult, enriched *models.EnrichedComplaint) *models.Complaint {

	doc := &models.Complaint{
		PostID:          post.ID,
		ComplaintQuery:  cleaned,
		Permalink:       post.Permalink,
		Status:          models.StatusPendingReview,
		ConfidenceScore: classification.Confidence,
		PriorityScore:   1,
		Department:      "Unknown",
	}

	if created := post.ParsedCreatedTime(); !created.IsZero() {
		doc.Time = created.Format("15:04:05")
		doc.Date = created.Format("2006-01-02")
	}

	doc.ProfileName = post.AuthorName
	media := post.MediaRefs
	if p.resolver != nil && post.Permalink != "" {
		author := p.resolver.Resolve(ctx, post.Permalink)
		if !author.NotFound && author.Username != "" {
			doc.ProfileName = author.Username
		}
		if len(author.Media) > 0 {
			media = append(media, author.Media...)
		}
	}
	for _, m := range media {
		switch m.Type {
		case "image":
			if doc.ImageLink == "" {
				doc.ImageLink = m.URL
			}
		case "video":
			if doc.VideoLink == "" {
				doc.VideoLink = m.URL
			}
		}
	}

	if enriched != nil {
		doc.PriorityScore = enriched.PriorityScore
		doc.Department = enriched.Department
		doc.RecommendedOfficer = enriched.RecommendedOfficer
		doc.Analysis = enriched.Analysis
		if enriched.Location != nil && enriched.Location.PrimaryLocation != "" {
			doc.LocationData = &models.LocationSummary{
				Location:        enriched.Location.PrimaryLocation,
				Confidence:      enriched.Location.Confidence,
				Type:            enriched.Location.LocationType,
				Method:          enriched.Location.ExtractionMethod,
				Context:         enriched.Location.Context,
				ValidationScore: enriched.Location.ValidationScore,
			}
		}
	}

	return doc
}
