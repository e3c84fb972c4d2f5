package search

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/gcbaptista/go-article-discovery/model"
)

// comparator returns <0, 0 or >0 like strings.Compare.
type comparator func(a, b model.ArticleSummary) int

// Sorter orders article summaries by one of the closed set of sort fields.
// Titles are compared with the collation rules of the configured language.
type Sorter struct {
	lang language.Tag
}

// NewSorter creates a Sorter collating titles for lang.
// language.Und selects the root collation order.
func NewSorter(lang language.Tag) *Sorter {
	return &Sorter{lang: lang}
}

// Sort returns a sorted copy of articles.
//
// The direction is applied by negating the comparator's result, never by
// swapping operands, and the sort is stable: articles with equal keys keep
// their input order in both directions.
func (s *Sorter) Sort(articles []model.ArticleSummary, by model.SortBy, order model.SortOrder) []model.ArticleSummary {
	sorted := make([]model.ArticleSummary, len(articles))
	copy(sorted, articles)

	compare := s.comparator(by)
	direction := 1
	if order != model.SortOrderAsc {
		direction = -1
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return direction*compare(sorted[i], sorted[j]) < 0
	})
	return sorted
}

func (s *Sorter) comparator(by model.SortBy) comparator {
	switch by {
	case model.SortByTitle:
		// A Collator keeps internal buffers, so each Sort call gets its own.
		c := collate.New(s.lang)
		return func(a, b model.ArticleSummary) int {
			return c.CompareString(a.Title, b.Title)
		}
	default:
		return compareDates
	}
}

func compareDates(a, b model.ArticleSummary) int {
	return a.PublishedAt.Compare(b.PublishedAt)
}
