package analytics

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/store"
)

func newCatalog() *store.ArticleStore {
	st := store.NewArticleStore()
	st.Replace([]model.ArticleSummary{
		{ID: "a", Title: "Go Concurrency", Tags: []string{"go", "concurrency"}},
		{ID: "b", Title: "Rust Ownership", Tags: []string{"rust"}},
	}, time.Now())
	return st
}

func view(search string, tags []string, sortBy model.SortBy, order model.SortOrder, visible int) model.View {
	return model.View{
		State: model.FilterState{
			SearchQuery:  search,
			SelectedTags: tags,
			SortBy:       sortBy,
			SortOrder:    order,
		},
		VisibleCount: visible,
		TotalCount:   2,
	}
}

func TestAnalyticsService_TrackView(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	service := NewService(newCatalog(), "", WithClock(mock))

	tags := []string{"go"}
	service.TrackView("http", view("go", tags, model.SortByDate, model.SortOrderDesc, 1))
	tags[0] = "mutated"

	require.Equal(t, 1, service.EventCount())
	event := service.events[0]
	assert.Equal(t, "http", event.Origin)
	assert.Equal(t, "go", event.SearchQuery)
	assert.Equal(t, []string{"go"}, event.SelectedTags)
	assert.Equal(t, 1, event.VisibleCount)
	assert.Equal(t, mock.Now(), event.Timestamp)
}

func TestAnalyticsService_GetDashboardData(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	service := NewService(newCatalog(), "", WithClock(mock))

	service.TrackView("http", view("", nil, model.SortByDate, model.SortOrderDesc, 2))
	mock.Add(48 * time.Hour)
	service.TrackView("session", view("Go", []string{"go"}, model.SortByTitle, model.SortOrderAsc, 1))
	service.TrackView("session", view("go ", nil, model.SortByDate, model.SortOrderDesc, 1))
	service.TrackView("session", view("python", nil, model.SortByDate, model.SortOrderDesc, 0))
	service.TrackView("session", view("", []string{"rust", "go"}, model.SortByDate, model.SortOrderAsc, 0))

	dashboard := service.GetDashboardData()

	assert.Equal(t, 5, dashboard.TotalViews)
	assert.Equal(t, 4, dashboard.FilteredViews)
	assert.Equal(t, 2, dashboard.ZeroResultViews)
	assert.Equal(t, 4, dashboard.Last24hViews)
	assert.Equal(t, 2, dashboard.ArticleCount)
	assert.Equal(t, 3, dashboard.TagCount)
	assert.Equal(t, []model.PopularSearch{
		{Query: "go", SearchCount: 2},
		{Query: "python", SearchCount: 1},
	}, dashboard.PopularSearches)
	assert.Equal(t, []model.PopularSearch{{Query: "python", SearchCount: 1}}, dashboard.ZeroResultSearches)
	assert.Equal(t, []model.PopularTag{
		{Tag: "go", SelectionCount: 2},
		{Tag: "rust", SelectionCount: 1},
	}, dashboard.PopularTags)
	assert.Equal(t, model.SortUsage{ByDate: 4, ByTitle: 1, Ascending: 2}, dashboard.SortUsage)
	assert.Equal(t, mock.Now(), dashboard.GeneratedAt)
}

func TestAnalyticsService_PopularSearchLimit(t *testing.T) {
	service := NewService(nil, "")
	for _, q := range []string{"a", "b", "c", "d", "e", "f", "f"} {
		service.TrackEvent(model.DiscoveryEvent{SearchQuery: q, TotalCount: 1, VisibleCount: 1})
	}

	dashboard := service.GetDashboardData()
	require.Len(t, dashboard.PopularSearches, popularSearchLimit)
	assert.Equal(t, "f", dashboard.PopularSearches[0].Query)
	assert.Equal(t, "a", dashboard.PopularSearches[1].Query)
	assert.Equal(t, 0, dashboard.ArticleCount)
	assert.Empty(t, dashboard.ZeroResultSearches)
}

func TestAnalyticsService_EventLimit(t *testing.T) {
	service := NewService(nil, "")
	for i := 0; i < maxEventsToKeep+10; i++ {
		service.TrackEvent(model.DiscoveryEvent{})
	}
	assert.Equal(t, maxEventsToKeep, service.EventCount())
}

func TestAnalyticsService_Persistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), DataFileName)

	first := NewService(nil, path)
	require.NoError(t, first.Flush(), "flushing with nothing recorded is a no-op")
	first.TrackEvent(model.DiscoveryEvent{SearchQuery: "go", SelectedTags: []string{"web"}})
	first.TrackEvent(model.DiscoveryEvent{SearchQuery: "rust"})
	require.NoError(t, first.Flush())

	second := NewService(nil, path)
	assert.Equal(t, 2, second.EventCount())
	assert.Equal(t, "go", second.events[0].SearchQuery)
	assert.Equal(t, []string{"web"}, second.events[0].SelectedTags)
}

func TestAnalyticsService_MemoryOnly(t *testing.T) {
	service := NewService(nil, "")
	service.TrackEvent(model.DiscoveryEvent{SearchQuery: "go"})
	assert.NoError(t, service.Flush())
}
