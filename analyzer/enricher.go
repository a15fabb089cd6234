package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"tagus-watch/config"
	"tagus-watch/models"
	"tagus-watch/ratelimit"
)

// Locative prepositions used to corroborate the AI-extracted location against
// the original message text. Order is fixed so pattern_validation output is
// deterministic.
var locationPatternOrder = []string{"in", "at", "on", "near", "around", "from"}

var locationPatterns = map[string]*regexp.Regexp{
	"in":     regexp.MustCompile(`(?i)\bin\s+([A-Za-z][A-Za-z\s]{1,14})`),
	"at":     regexp.MustCompile(`(?i)\bat\s+([A-Za-z][A-Za-z\s]{1,14})`),
	"on":     regexp.MustCompile(`(?i)\bon\s+([A-Za-z][A-Za-z\s]{1,14})`),
	"near":   regexp.MustCompile(`(?i)\bnear\s+([A-Za-z][A-Za-z\s]{1,14})`),
	"around": regexp.MustCompile(`(?i)\baround\s+([A-Za-z][A-Za-z\s]{1,14})`),
	"from":   regexp.MustCompile(`(?i)\bfrom\s+([A-Za-z][A-Za-z\s]{1,14})`),
}

// validationScorePerPattern is the additive evidence weight per matching
// preposition pattern; purely a reviewer hint, uncapped.
const validationScorePerPattern = 20

var urgencyWords = []string{"urgent", "emergency", "immediate", "critical", "serious"}

var codeFence = regexp.MustCompile("(?s)^\\s*```(?:json)?\\s*(.*?)\\s*```\\s*$")

// Enricher runs the rate-limited structured extraction for confirmed
// complaints and cross-validates the returned location.
type Enricher struct {
	ai      CompletionClient
	limiter *ratelimit.Limiter
}

func NewEnricher(ai CompletionClient, limiter *ratelimit.Limiter) *Enricher {
	return &Enricher{ai: ai, limiter: limiter}
}

// Enrich issues one completion request for cleanedText and returns the
// structured complaint. originalText is the pre-sanitization message, used
// for location corroboration and urgency detection. A parse failure is
// returned to the caller; the post is still a complaint, just without
// structured analysis.
func (e *Enricher) Enrich(ctx context.Context, cleanedText, originalText string) (*models.EnrichedComplaint, error) {
	if err := e.limiter.Wait(ctx, ratelimit.ClassAI); err != nil {
		return nil, err
	}

	response, err := e.ai.Complete(ctx, enrichSystemInstruction,
		fmt.Sprintf(enrichPromptTemplate, cleanedText, DepartmentsOfficers),
		CompletionOptions{Temperature: 0.3, MaxOutputTokens: 800},
	)
	if err != nil {
		return nil, err
	}

	enriched, err := parseEnrichment(response)
	if err != nil {
		config.ErrorWithFields("unparseable enrichment response", config.Fields{
			"error":    err.Error(),
			"response": truncate(response, 500),
		})
		return nil, err
	}

	crossValidateLocation(enriched, originalText)
	boostPriority(enriched, originalText)

	return enriched, nil
}

// parseEnrichment is the two-stage parse: strict JSON after stripping any
// enclosing code fences, then a balanced-brace repair parse.
func parseEnrichment(response string) (*models.EnrichedComplaint, error) {
	body := response
	if m := codeFence.FindStringSubmatch(response); m != nil {
		body = m[1]
	}

	var enriched models.EnrichedComplaint
	if err := json.Unmarshal([]byte(body), &enriched); err == nil {
		return &enriched, nil
	}

	span, ok := firstBraceSpan(body)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in enrichment response")
	}
	if err := json.Unmarshal([]byte(span), &enriched); err != nil {
		return nil, fmt.Errorf("repair parse failed: %w", err)
	}
	return &enriched, nil
}

// firstBraceSpan returns the first balanced {...} span, honoring string
// literals and escapes.
func firstBraceSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// crossValidateLocation attaches regex corroboration for the AI-chosen
// location. Evidence is additive only; primary_location is never overwritten.
func crossValidateLocation(enriched *models.EnrichedComplaint, originalText string) {
	if enriched.Location == nil || enriched.Location.PrimaryLocation == "" {
		return
	}

	var validations []models.PatternMatch
	for _, name := range locationPatternOrder {
		groups := locationPatterns[name].FindAllStringSubmatch(originalText, -1)
		if len(groups) == 0 {
			continue
		}
		matches := make([]string, 0, len(groups))
		for _, g := range groups {
			matches = append(matches, strings.TrimSpace(g[1]))
		}
		validations = append(validations, models.PatternMatch{
			Pattern:   name,
			Matches:   matches,
			Validated: true,
		})
	}

	enriched.Location.PatternValidation = validations
	enriched.Location.ValidationScore = len(validations) * validationScorePerPattern
}

// boostPriority raises the priority by one (cap 5) when the text carries an
// urgency word, preserving the AI-assigned value for auditability.
func boostPriority(enriched *models.EnrichedComplaint, text string) {
	enriched.OriginalPriority = enriched.PriorityScore

	lower := strings.ToLower(text)
	for _, w := range urgencyWords {
		if strings.Contains(lower, w) {
			if enriched.PriorityScore < 5 {
				enriched.PriorityScore++
			}
			return
		}
	}
}

func truncate(s string, max int) string {
	rs := []rune(s)
	if len(rs) <= max {
		return s
	}
	return string(rs[:max])
}
