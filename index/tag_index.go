// Package index derives lookup structures from the article list.
package index

import (
	"sort"

	"github.com/gcbaptista/go-article-discovery/model"
)

// BuildTagIndex counts the distinct tags across articles.
// The result is sorted by count descending, ties broken by tag ascending using
// a plain byte-wise (case-sensitive) comparison. A tag repeated within one
// article is counted once for that article.
func BuildTagIndex(articles []model.ArticleSummary) []model.TagCount {
	counts := make(map[string]int)
	for _, article := range articles {
		seen := make(map[string]struct{}, len(article.Tags))
		for _, tag := range article.Tags {
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			counts[tag]++
		}
	}

	result := make([]model.TagCount, 0, len(counts))
	for tag, count := range counts {
		result = append(result, model.TagCount{Tag: tag, Count: count})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Tag < result[j].Tag
	})
	return result
}

// TagIndex is an immutable tag index built once per article list.
type TagIndex struct {
	counts []model.TagCount
	byTag  map[string]int
}

// NewTagIndex builds the index for articles.
func NewTagIndex(articles []model.ArticleSummary) *TagIndex {
	counts := BuildTagIndex(articles)
	byTag := make(map[string]int, len(counts))
	for _, tc := range counts {
		byTag[tc.Tag] = tc.Count
	}
	return &TagIndex{counts: counts, byTag: byTag}
}

// Counts returns a copy of the sorted tag counts.
func (ti *TagIndex) Counts() []model.TagCount {
	out := make([]model.TagCount, len(ti.counts))
	copy(out, ti.counts)
	return out
}

// Count returns the number of articles carrying tag, 0 if none do.
func (ti *TagIndex) Count(tag string) int {
	return ti.byTag[tag]
}

// Has reports whether any article carries tag.
func (ti *TagIndex) Has(tag string) bool {
	_, ok := ti.byTag[tag]
	return ok
}

// Len returns the number of distinct tags.
func (ti *TagIndex) Len() int {
	return len(ti.counts)
}
