package analyzer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"tagus-watch/analyzer"
	"tagus-watch/ratelimit"
)

type fakeAI struct {
	response string
	err      error
	calls    int
	lastText string
}

func (f *fakeAI) Complete(_ context.Context, _, prompt string, _ analyzer.CompletionOptions) (string, error) {
	f.calls++
	f.lastText = prompt
	return f.response, f.err
}

func testLimiter() *ratelimit.Limiter {
	return ratelimit.New(1000, nil, 0)
}

func TestClassifyPositive(t *testing.T) {
	ai := &fakeAI{response: "true"}
	c := analyzer.NewClassifier(ai, testLimiter())

	res := c.Classify(context.Background(), "streetlight broken in Tadong")
	assert.True(t, res.IsComplaint)
	assert.Equal(t, 1, ai.calls)
}

func TestClassifyOnlyLiteralTrueCounts(t *testing.T) {
	for _, response := range []string{"false", "TRUE, because...", "yes", "maybe", ""} {
		ai := &fakeAI{response: response}
		c := analyzer.NewClassifier(ai, testLimiter())

		res := c.Classify(context.Background(), "water problem in Gangtok")
		assert.False(t, res.IsComplaint, "response: %q", response)
		assert.Equal(t, 15, res.Confidence)
	}

	// whitespace and casing are tolerated
	ai := &fakeAI{response: "  True\n"}
	c := analyzer.NewClassifier(ai, testLimiter())
	assert.True(t, c.Classify(context.Background(), "water problem in Gangtok").IsComplaint)
}

func TestClassifyNeverFails(t *testing.T) {
	ai := &fakeAI{err: errors.New("model unavailable")}
	c := analyzer.NewClassifier(ai, testLimiter())

	res := c.Classify(context.Background(), "road damaged near hospital")
	assert.False(t, res.IsComplaint)
	assert.Equal(t, 15, res.Confidence)
}

func TestConfidenceHeuristic(t *testing.T) {
	c := analyzer.NewClassifier(&fakeAI{response: "true"}, testLimiter())

	// no keywords at all: base confidence
	res := c.Classify(context.Background(), "streetlight gone")
	assert.Equal(t, 75, res.Confidence)

	// one complaint keyword plus one locative keyword
	res = c.Classify(context.Background(), "broken streetlight near school")
	assert.Equal(t, 75+5+3, res.Confidence)

	// keyword-dense text is capped
	res = c.Classify(context.Background(),
		"bad poor broken not working issue problem complain in at near around")
	assert.Equal(t, 95, res.Confidence)
}
