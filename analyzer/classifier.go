package analyzer

import (
	"context"
	"fmt"
	"strings"

	"tagus-watch/config"
	"tagus-watch/models"
	"tagus-watch/ratelimit"
)

// Keywords feeding the confidence heuristic. The heuristic only prioritizes
// confirmed complaints downstream; it never changes the true/false decision.
var (
	confidenceKeywords = []string{"bad", "poor", "broken", "not working", "issue", "problem", "complain"}
	locativeKeywords   = []string{"in", "at", "near", "around"}
)

const (
	positiveBaseConfidence = 75
	keywordConfidenceStep  = 5
	locativeConfidenceStep = 3
	maxConfidence          = 95
	negativeConfidence     = 15
)

// Classifier makes the rate-limited binary complaint decision. Input text is
// expected to have passed the pre-filter already.
type Classifier struct {
	ai      CompletionClient
	limiter *ratelimit.Limiter
}

func NewClassifier(ai CompletionClient, limiter *ratelimit.Limiter) *Classifier {
	return &Classifier{ai: ai, limiter: limiter}
}

// Classify issues exactly one completion request and maps the response to a
// ClassificationResult. It never returns an error: request failures and
// malformed responses degrade to "not a complaint".
func (c *Classifier) Classify(ctx context.Context, text string) models.ClassificationResult {
	if err := c.limiter.Wait(ctx, ratelimit.ClassAI); err != nil {
		config.ErrorWithFields("classification aborted while waiting for rate limiter", config.Fields{
			"error": err.Error(),
		})
		return models.ClassificationResult{IsComplaint: false, Confidence: negativeConfidence}
	}

	response, err := c.ai.Complete(ctx, classifySystemInstruction,
		fmt.Sprintf(classifyPromptTemplate, text),
		CompletionOptions{Temperature: 0.1, TopP: 0.8, MaxOutputTokens: 5},
	)
	if err != nil {
		config.ErrorWithFields("classification request failed", config.Fields{
			"error": err.Error(),
		})
		return models.ClassificationResult{IsComplaint: false, Confidence: negativeConfidence}
	}

	// Only the literal token "true" counts; anything else is false.
	isComplaint := strings.ToLower(strings.TrimSpace(response)) == "true"

	return models.ClassificationResult{
		IsComplaint: isComplaint,
		Confidence:  scoreConfidence(text, isComplaint),
	}
}

func scoreConfidence(text string, isComplaint bool) int {
	if !isComplaint {
		return negativeConfidence
	}

	lower := strings.ToLower(text)
	confidence := positiveBaseConfidence
	for _, kw := range confidenceKeywords {
		if strings.Contains(lower, kw) {
			confidence += keywordConfidenceStep
		}
	}
	for _, kw := range locativeKeywords {
		if strings.Contains(lower, kw) {
			confidence += locativeConfidenceStep
		}
	}
	if confidence > maxConfidence {
		confidence = maxConfidence
	}
	return confidence
}
