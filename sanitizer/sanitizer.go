// Package sanitizer cleans raw post text before complaint analysis. All
// functions are pure, deterministic and idempotent.
package sanitizer

import (
	"regexp"
	"strings"
)

// Watermark is the campaign tag users attach to posts; it confuses the AI
// classifier and is stripped in every variant before analysis.
const Watermark = "TagusComplaint"

var watermarkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[#@]tagus\s*complaint\b`),
	regexp.MustCompile(`(?i)\btagus\s*complaint\b`),
}

var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btesting\b`),
	regexp.MustCompile(`(?i)\btest\b`),
	regexp.MustCompile(`(?i)\bhey\b`),
	regexp.MustCompile(`(?i)\bhi\b`),
	regexp.MustCompile(`(?i)\bhello\b`),
	regexp.MustCompile(`(?i)\bbro\b`),
	regexp.MustCompile(`(?i)\bsee\s+this\b`),
	regexp.MustCompile(`(?i)\blikes?\b`),
	regexp.MustCompile(`(?i)\bvideos?\s*\d*\b`),
	regexp.MustCompile(`(?i)\bimages?\s*\d*\b`),
	regexp.MustCompile(`(?i)where\s+is\s+my\s+post`),
	// single tokens of one repeated letter, e.g. "aaaa"
	regexp.MustCompile(`(?i)\b(?:a+|b+|c+|d+|e+|f+|g+|h+|i+|j+|k+|l+|m+|n+|o+|p+|q+|r+|s+|t+|u+|v+|w+|x+|y+|z+)\b`),
}

var (
	punctuation = regexp.MustCompile(`[^\w\s]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// Sanitize removes every watermark variant and collapses whitespace.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}
	cleaned := text
	for _, p := range watermarkPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	return collapse(cleaned)
}

// SanitizeStrict additionally strips test/greeting boilerplate and replaces
// punctuation with whitespace. Used when the aggressive cleaning profile is
// enabled.
func SanitizeStrict(text string) string {
	if text == "" {
		return ""
	}
	cleaned := text
	for _, p := range watermarkPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	for _, p := range boilerplatePatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	cleaned = punctuation.ReplaceAllString(cleaned, " ")
	return collapse(cleaned)
}

func collapse(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}
