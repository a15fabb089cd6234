package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagus-watch/analyzer"
)

const enrichmentJSON = `{
  "priority_score": 3,
  "department": "Road and Bridges Department",
  "recommended_officer": "Mingma Sherpa",
  "location_analysis": {
    "primary_location": "MG Marg",
    "extraction_method": "in [place]",
    "confidence": 85,
    "location_type": "road"
  },
  "ai_analysis": {
    "sentiment": "frustrated",
    "urgency_level": "medium",
    "category": "infrastructure",
    "summary": "Damaged road surface",
    "suggested_actions": ["inspect", "repair"]
  }
}`

func TestEnrichParsesPlainJSON(t *testing.T) {
	ai := &fakeAI{response: enrichmentJSON}
	e := analyzer.NewEnricher(ai, testLimiter())

	got, err := e.Enrich(context.Background(), "road damaged in MG Marg", "road damaged in MG Marg")
	require.NoError(t, err)
	assert.Equal(t, 3, got.PriorityScore)
	assert.Equal(t, "Road and Bridges Department", got.Department)
	assert.Equal(t, "Mingma Sherpa", got.RecommendedOfficer)
	require.NotNil(t, got.Location)
	assert.Equal(t, "MG Marg", got.Location.PrimaryLocation)
}

func TestEnrichStripsCodeFences(t *testing.T) {
	e := analyzer.NewEnricher(&fakeAI{response: "```json\n" + enrichmentJSON + "\n```"}, testLimiter())
	fenced, err := e.Enrich(context.Background(), "road damaged in MG Marg", "road damaged in MG Marg")
	require.NoError(t, err)

	e = analyzer.NewEnricher(&fakeAI{response: enrichmentJSON}, testLimiter())
	plain, err := e.Enrich(context.Background(), "road damaged in MG Marg", "road damaged in MG Marg")
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
}

func TestEnrichRepairsChattyResponse(t *testing.T) {
	response := "Sure! Here is the analysis you asked for:\n" + enrichmentJSON + "\nLet me know if you need anything else."
	e := analyzer.NewEnricher(&fakeAI{response: response}, testLimiter())

	got, err := e.Enrich(context.Background(), "road damaged in MG Marg", "road damaged in MG Marg")
	require.NoError(t, err)
	assert.Equal(t, "Road and Bridges Department", got.Department)
}

func TestEnrichFailsOnGarbage(t *testing.T) {
	e := analyzer.NewEnricher(&fakeAI{response: "I cannot analyze this."}, testLimiter())
	_, err := e.Enrich(context.Background(), "road damaged", "road damaged")
	assert.Error(t, err)

	e = analyzer.NewEnricher(&fakeAI{err: errors.New("quota exceeded")}, testLimiter())
	_, err = e.Enrich(context.Background(), "road damaged", "road damaged")
	assert.Error(t, err)
}

func TestCrossValidationScoresPatterns(t *testing.T) {
	e := analyzer.NewEnricher(&fakeAI{response: enrichmentJSON}, testLimiter())

	// original text hits the "in" and "near" patterns
	got, err := e.Enrich(context.Background(),
		"road damaged in MG Marg near the school",
		"road damaged in MG Marg near the school")
	require.NoError(t, err)
	require.NotNil(t, got.Location)

	assert.Len(t, got.Location.PatternValidation, 2)
	assert.Equal(t, 40, got.Location.ValidationScore)
	assert.Equal(t, "in", got.Location.PatternValidation[0].Pattern)
	assert.Equal(t, "near", got.Location.PatternValidation[1].Pattern)
	assert.True(t, got.Location.PatternValidation[0].Validated)
}

func TestCrossValidationSkippedWithoutLocation(t *testing.T) {
	noLocation := `{"priority_score": 2, "department": "IT Department", "recommended_officer": "Kinley Bhutia",
	  "ai_analysis": {"sentiment": "neutral", "urgency_level": "low", "category": "other", "summary": "s", "suggested_actions": []}}`
	e := analyzer.NewEnricher(&fakeAI{response: noLocation}, testLimiter())

	got, err := e.Enrich(context.Background(), "service issue in Gangtok", "service issue in Gangtok")
	require.NoError(t, err)
	assert.Nil(t, got.Location)
}

func TestUrgencyBoostsPriority(t *testing.T) {
	e := analyzer.NewEnricher(&fakeAI{response: enrichmentJSON}, testLimiter())

	got, err := e.Enrich(context.Background(),
		"urgent road damage in MG Marg", "urgent road damage in MG Marg")
	require.NoError(t, err)
	assert.Equal(t, 4, got.PriorityScore)
	assert.Equal(t, 3, got.OriginalPriority)
}

func TestUrgencyBoostCapsAtFive(t *testing.T) {
	maxed := `{"priority_score": 5, "department": "Road and Bridges Department", "recommended_officer": "Tashi Lepcha",
	  "ai_analysis": {"sentiment": "urgent", "urgency_level": "high", "category": "infrastructure", "summary": "s", "suggested_actions": []}}`
	e := analyzer.NewEnricher(&fakeAI{response: maxed}, testLimiter())

	got, err := e.Enrich(context.Background(),
		"emergency bridge collapse", "emergency bridge collapse")
	require.NoError(t, err)
	assert.Equal(t, 5, got.PriorityScore)
	assert.Equal(t, 5, got.OriginalPriority)
}
