package search

import (
	"github.com/gcbaptista/go-article-discovery/internal/codec"
	"github.com/gcbaptista/go-article-discovery/model"
)

// Pipeline computes the visible articles for a filter state.
//
// The stages always run in the same order: Rank by the search query, then
// FilterByTag once per selected tag in selection order, then Sort. Sorting
// last means the sort settings alone decide the final order.
type Pipeline struct {
	sorter *Sorter
}

// NewPipeline creates a pipeline using sorter for its last stage.
func NewPipeline(sorter *Sorter) *Pipeline {
	return &Pipeline{sorter: sorter}
}

// Evaluate returns the visible subset of full for state. full is never modified.
func (p *Pipeline) Evaluate(full []model.ArticleSummary, state model.FilterState) []model.ArticleSummary {
	ranked := Rank(full, state.SearchQuery)
	narrowed := FilterByTags(ranked, state.SelectedTags)
	return p.sorter.Sort(narrowed, state.SortBy, state.SortOrder)
}

// View evaluates state and wraps the result with the counts and URL that a
// renderer needs.
func (p *Pipeline) View(full []model.ArticleSummary, state model.FilterState, listPath string) model.View {
	visible := p.Evaluate(full, state)
	return model.View{
		Articles:         visible,
		TotalCount:       len(full),
		VisibleCount:     len(visible),
		HasActiveFilters: state.HasActiveFilters(),
		State:            state.Clone(),
		Query:            codec.Encode(state),
		URL:              codec.URL(listPath, state),
	}
}
