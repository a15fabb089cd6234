// Package prefilter is the cheap rule gate run strictly before any AI call.
// It cuts AI invocation volume and guarantees that obvious non-complaints are
// rejected even if the classifier would hallucinate a "true".
package prefilter

import (
	"regexp"
	"strings"
)

// Profile selects how aggressive the gate is.
type Profile string

const (
	Lenient Profile = "lenient"
	Strict  Profile = "strict"
)

const (
	lenientMinLength = 5
	strictMinLength  = 15
	minDetailWords   = 5
)

// Whole-text patterns that are never complaints, shared by both profiles.
var autoRejectPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(test|testing)\s*$`),
	regexp.MustCompile(`(?i)^\s*(hi|hello|hey)\s*$`),
	regexp.MustCompile(`(?i)^\s*videos?\s*\d*\s*$`),
	regexp.MustCompile(`(?i)^\s*images?\s*\d*\s*$`),
	regexp.MustCompile(`(?i)^\s*likes?\s*$`),
	regexp.MustCompile(`(?i)^\s*bro\s*$`),
	regexp.MustCompile(`(?i)^\s*see\s+this\s*$`),
	regexp.MustCompile(`(?i)where\s+is\s+my\s+post`),
	regexp.MustCompile(`^[^a-zA-Z]*$`),
}

// Strict mode requires at least one keyword from any of these groups before
// the text is worth an AI call.
var complaintKeywordGroups = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(problem|issue|broken|damaged|not\s+working|failed|failure)\b`),
	regexp.MustCompile(`(?i)\b(complaint|complain|report|fix|repair|solve)\b`),
	regexp.MustCompile(`(?i)\b(poor|bad|terrible|awful|delayed|slow|stopped)\b`),
	regexp.MustCompile(`(?i)\b(service|department|office|government|public)\b`),
	regexp.MustCompile(`(?i)\b(road|water|electricity|power|permit|license)\b`),
	regexp.MustCompile(`(?i)\b(help|assistance|action|urgent|emergency)\b`),
}

// Filter applies the ordered rule list of its profile; first match wins.
type Filter struct {
	profile Profile
	minLen  int
}

func New(profile Profile) *Filter {
	minLen := strictMinLength
	if profile == Lenient {
		minLen = lenientMinLength
	}
	return &Filter{profile: profile, minLen: minLen}
}

// FromName maps a config profile name to a Filter; unknown names get strict.
func FromName(name string) *Filter {
	if strings.EqualFold(name, string(Lenient)) {
		return New(Lenient)
	}
	return New(Strict)
}

func (f *Filter) Profile() Profile { return f.profile }

// Passes reports whether text survives the gate, with the rejection reason.
func (f *Filter) Passes(text string) (bool, string) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < f.minLen {
		return false, "text too short"
	}

	for _, p := range autoRejectPatterns {
		if p.MatchString(trimmed) {
			return false, "matched non-complaint pattern: " + p.String()
		}
	}

	if f.profile == Strict {
		if !hasComplaintKeywords(trimmed) {
			return false, "no complaint-related keywords found"
		}
		if countDetailWords(trimmed) < minDetailWords {
			return false, "insufficient detail"
		}
	}

	return true, "passed"
}

func hasComplaintKeywords(text string) bool {
	for _, p := range complaintKeywordGroups {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// countDetailWords counts words longer than two characters, a rough measure
// of descriptive detail beyond bare keywords.
func countDetailWords(text string) int {
	count := 0
	for _, w := range strings.Fields(text) {
		if len(w) > 2 {
			count++
		}
	}
	return count
}
