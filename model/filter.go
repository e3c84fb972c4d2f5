package model

import "strings"

// SortBy selects the field used to order the visible articles.
type SortBy string

const (
	SortByDate  SortBy = "date"
	SortByTitle SortBy = "title"
)

// SortOrder selects the direction of the ordering.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

const (
	DefaultSortBy    = SortByDate
	DefaultSortOrder = SortOrderDesc
)

// ParseSortBy parses a sort field case-insensitively. ok is false for unknown values.
func ParseSortBy(s string) (SortBy, bool) {
	switch SortBy(strings.ToLower(strings.TrimSpace(s))) {
	case SortByDate:
		return SortByDate, true
	case SortByTitle:
		return SortByTitle, true
	}
	return DefaultSortBy, false
}

// ParseSortOrder parses a sort direction case-insensitively. ok is false for unknown values.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortOrderAsc:
		return SortOrderAsc, true
	case SortOrderDesc:
		return SortOrderDesc, true
	}
	return DefaultSortOrder, false
}

// FilterState is the complete view state of the article list: what is searched,
// which tags are selected and how the result is ordered.
type FilterState struct {
	SearchQuery  string    `json:"search_query"`
	SelectedTags []string  `json:"selected_tags"`
	SortBy       SortBy    `json:"sort_by"`
	SortOrder    SortOrder `json:"sort_order"`
}

// DefaultFilterState returns the state of a freshly opened article list.
func DefaultFilterState() FilterState {
	return FilterState{
		SelectedTags: []string{},
		SortBy:       DefaultSortBy,
		SortOrder:    DefaultSortOrder,
	}
}

// Clone returns a deep copy of the state.
func (s FilterState) Clone() FilterState {
	c := s
	c.SelectedTags = make([]string, len(s.SelectedTags))
	copy(c.SelectedTags, s.SelectedTags)
	return c
}

// Equal compares two states. A nil and an empty tag list are equal.
func (s FilterState) Equal(o FilterState) bool {
	if s.SearchQuery != o.SearchQuery || s.SortBy != o.SortBy || s.SortOrder != o.SortOrder {
		return false
	}
	if len(s.SelectedTags) != len(o.SelectedTags) {
		return false
	}
	for i := range s.SelectedTags {
		if s.SelectedTags[i] != o.SelectedTags[i] {
			return false
		}
	}
	return true
}

// HasActiveFilters reports whether the state narrows the list.
// Sorting reorders but never narrows, so it does not count.
func (s FilterState) HasActiveFilters() bool {
	return strings.TrimSpace(s.SearchQuery) != "" || len(s.SelectedTags) > 0
}

// IsDefault reports whether the state equals DefaultFilterState.
func (s FilterState) IsDefault() bool {
	return s.Equal(DefaultFilterState())
}

// TagIndex returns the position of tag in the selection, or -1.
func (s FilterState) TagIndex(tag string) int {
	for i, t := range s.SelectedTags {
		if t == tag {
			return i
		}
	}
	return -1
}

// FilterKind identifies one removable piece of a FilterState.
type FilterKind string

const (
	FilterKindSearch FilterKind = "search"
	FilterKindTag    FilterKind = "tag"
	FilterKindSort   FilterKind = "sort"
)

// Filter names a single active filter, e.g. one selected tag.
type Filter struct {
	Kind  FilterKind `json:"kind"`
	Value string     `json:"value,omitempty"` // Tag name for FilterKindTag, ignored otherwise
}
