// Package search narrows and orders article summaries: text ranking, tag
// filtering, sorting and the pipeline that composes them.
package search

import (
	"strings"

	"github.com/gcbaptista/go-article-discovery/model"
)

// Rank matches query against each article's title, excerpt and tags using
// case-insensitive substring containment.
//
// An empty (after trimming) query returns a copy of articles in input order.
// Otherwise articles whose title matches come first, followed by articles that
// match only through their excerpt or a tag. Both groups keep input order.
func Rank(articles []model.ArticleSummary, query string) []model.ArticleSummary {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		out := make([]model.ArticleSummary, len(articles))
		copy(out, articles)
		return out
	}

	titleMatches := make([]model.ArticleSummary, 0)
	otherMatches := make([]model.ArticleSummary, 0)
	for _, article := range articles {
		switch {
		case containsFold(article.Title, needle):
			titleMatches = append(titleMatches, article)
		case containsFold(article.Excerpt, needle) || anyTagContains(article.Tags, needle):
			otherMatches = append(otherMatches, article)
		}
	}

	return append(titleMatches, otherMatches...)
}

// containsFold expects needle to be lowercased already.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}

func anyTagContains(tags []string, needle string) bool {
	for _, tag := range tags {
		if containsFold(tag, needle) {
			return true
		}
	}
	return false
}
