package model

import "time"

// DiscoveryEvent records one evaluated view of the article list.
type DiscoveryEvent struct {
	Origin       string    `json:"origin"` // "http" or "session"
	SearchQuery  string    `json:"search_query"`
	SelectedTags []string  `json:"selected_tags"`
	SortBy       SortBy    `json:"sort_by"`
	SortOrder    SortOrder `json:"sort_order"`
	VisibleCount int       `json:"visible_count"`
	TotalCount   int       `json:"total_count"`
	Timestamp    time.Time `json:"timestamp"`
}

// PopularSearch represents aggregated data for a search term
type PopularSearch struct {
	Query       string `json:"query"`
	SearchCount int    `json:"search_count"`
}

// PopularTag represents how often a tag was part of a selection
type PopularTag struct {
	Tag            string `json:"tag"`
	SelectionCount int    `json:"selection_count"`
}

// SortUsage counts views per sort field and direction
type SortUsage struct {
	ByDate    int `json:"by_date"`
	ByTitle   int `json:"by_title"`
	Ascending int `json:"ascending"`
}

// AnalyticsDashboard represents the complete analytics dashboard data
type AnalyticsDashboard struct {
	TotalViews         int             `json:"total_views"`
	FilteredViews      int             `json:"filtered_views"`
	ZeroResultViews    int             `json:"zero_result_views"`
	ArticleCount       int             `json:"article_count"`
	TagCount           int             `json:"tag_count"`
	PopularSearches    []PopularSearch `json:"popular_searches"`
	ZeroResultSearches []PopularSearch `json:"zero_result_searches"`
	PopularTags        []PopularTag    `json:"popular_tags"`
	SortUsage          SortUsage       `json:"sort_usage"`
	Last24hViews       int             `json:"last_24h_views"`
	GeneratedAt        time.Time       `json:"generated_at"`
}
