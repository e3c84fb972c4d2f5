package model

// View is what the rendering layer consumes: the visible articles in display order
// plus the counts needed for an empty state and a "showing N of M" indicator.
type View struct {
	Articles         []ArticleSummary `json:"articles"`
	TotalCount       int              `json:"total_count"`
	VisibleCount     int              `json:"visible_count"`
	HasActiveFilters bool             `json:"has_active_filters"`
	State            FilterState      `json:"state"`
	Query            string           `json:"query"` // Encoded query string, empty for the default state
	URL              string           `json:"url"`   // List path plus query string
}

// NavigateOptions are passed along with every URL change.
type NavigateOptions struct {
	PreserveScroll bool `json:"preserve_scroll"`
}
