package model

import "time"

// ArticleSummary is the metadata record for one article, distinct from its full body.
// Summaries are owned by the content store and treated as read-only everywhere else.
type ArticleSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
	Excerpt     string    `json:"excerpt"`
	Tags        []string  `json:"tags"`
	Source      string    `json:"source,omitempty"` // File path or feed location the summary was loaded from
}

// HasTag reports whether the article carries tag exactly (case-sensitive).
func (a ArticleSummary) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagCount is the number of articles carrying a tag.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}
