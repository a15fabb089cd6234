package models

import "time"

// MediaRef is a single media item attached to or scraped for a post.
type MediaRef struct {
	Type  string `bson:"type" json:"type"`
	URL   string `bson:"url" json:"url"`
	Title string `bson:"title,omitempty" json:"title,omitempty"`
}

// RawPost is one social-media post as returned by the fetch collaborator.
// Immutable once fetched; the same post may reappear across polling windows.
type RawPost struct {
	ID          string     `json:"id"`
	Message     string     `json:"message"`
	AuthorName  string     `json:"author_name"`
	CreatedTime string     `json:"created_time"`
	Permalink   string     `json:"permalink"`
	MediaRefs   []MediaRef `json:"media_refs"`
}

// ResolvedAuthor is the scraped username/media bundle for a permalink.
// NotFound marks the "could not resolve" sentinel; callers fall back to the
// API-provided author name.
type ResolvedAuthor struct {
	Username string
	Source   string
	Media    []MediaRef
	NotFound bool
}

// ParsedCreatedTime parses the Graph API created_time; zero time on failure.
func (p RawPost) ParsedCreatedTime() time.Time {
	if p.CreatedTime == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05-0700"} {
		if t, err := time.Parse(layout, p.CreatedTime); err == nil {
			return t
		}
	}
	return time.Time{}
}
