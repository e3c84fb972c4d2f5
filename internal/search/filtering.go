package search

import (
	"strings"

	"github.com/gcbaptista/go-article-discovery/model"
)

// FilterByTag keeps the articles carrying tag, compared case-insensitively.
// Applying it once per selected tag, each time to the previous result, gives
// AND semantics: an article must carry every selected tag to survive.
func FilterByTag(articles []model.ArticleSummary, tag string) []model.ArticleSummary {
	filtered := make([]model.ArticleSummary, 0, len(articles))
	for _, article := range articles {
		if hasTagFold(article, tag) {
			filtered = append(filtered, article)
		}
	}
	return filtered
}

// FilterByTags applies FilterByTag for each tag in order. With no tags it
// returns a copy of articles.
func FilterByTags(articles []model.ArticleSummary, tags []string) []model.ArticleSummary {
	if len(tags) == 0 {
		out := make([]model.ArticleSummary, len(articles))
		copy(out, articles)
		return out
	}
	result := articles
	for _, tag := range tags {
		result = FilterByTag(result, tag)
	}
	return result
}

func hasTagFold(article model.ArticleSummary, tag string) bool {
	for _, t := range article.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
