package content

import (
	"strings"

	"github.com/gcbaptista/go-article-discovery/model"
)

// Normalize cleans a loaded article list: tags are trimmed, blank tags and
// repeats within an article are dropped, and articles without an ID or title
// or with an ID already seen are removed. Order is preserved. It returns the
// cleaned list and the number of articles removed.
func Normalize(articles []model.ArticleSummary) ([]model.ArticleSummary, int) {
	out := make([]model.ArticleSummary, 0, len(articles))
	seenIDs := make(map[string]struct{}, len(articles))
	dropped := 0

	for _, article := range articles {
		article.ID = strings.TrimSpace(article.ID)
		article.Title = strings.TrimSpace(article.Title)
		if article.ID == "" || article.Title == "" {
			dropped++
			continue
		}
		if _, dup := seenIDs[article.ID]; dup {
			dropped++
			continue
		}
		seenIDs[article.ID] = struct{}{}

		article.Tags = normalizeTags(article.Tags)
		out = append(out, article)
	}
	return out, dropped
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
