package analytics

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/internal/logging"
	"github.com/gcbaptista/go-article-discovery/internal/persistence"
	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/services"
)

const (
	// DataFileName is the analytics file inside the data directory.
	DataFileName = "analytics.gob"

	maxEventsToKeep    = 10000 // Keep last 10k events for performance
	popularSearchLimit = 5
	popularTagLimit    = 10
)

// Service records evaluated views and aggregates them into a dashboard.
type Service struct {
	mutex        sync.RWMutex
	events       []model.DiscoveryEvent
	catalog      services.Catalog
	dataFilePath string // Empty keeps events in memory only
	dirty        bool
	clock        clock.Clock
	logger       *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock, for tests.
func WithClock(c clock.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) { s.logger = logging.OrNop(logger) }
}

// NewService creates an analytics service. When dataFilePath is set, events
// saved by a previous run are loaded from it.
func NewService(catalog services.Catalog, dataFilePath string, opts ...Option) *Service {
	service := &Service{
		events:       make([]model.DiscoveryEvent, 0),
		catalog:      catalog,
		dataFilePath: dataFilePath,
		clock:        clock.New(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}

	if err := service.loadData(); err != nil {
		service.logger.Warn("failed to load analytics data", zap.String("path", dataFilePath), zap.Error(err))
	}

	return service
}

// TrackView records an evaluated view.
func (s *Service) TrackView(origin string, view model.View) {
	s.TrackEvent(model.DiscoveryEvent{
		Origin:       origin,
		SearchQuery:  view.State.SearchQuery,
		SelectedTags: append([]string(nil), view.State.SelectedTags...),
		SortBy:       view.State.SortBy,
		SortOrder:    view.State.SortOrder,
		VisibleCount: view.VisibleCount,
		TotalCount:   view.TotalCount,
	})
}

// TrackEvent records a new event, stamping it with the current time.
func (s *Service) TrackEvent(event model.DiscoveryEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	event.Timestamp = s.clock.Now()
	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
	s.dirty = true
}

// EventCount returns the number of retained events.
func (s *Service) EventCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.events)
}

// GetDashboardData returns complete analytics dashboard data
func (s *Service) GetDashboardData() model.AnalyticsDashboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.clock.Now()
	dashboard := model.AnalyticsDashboard{
		TotalViews:         len(s.events),
		PopularSearches:    s.getPopularSearches(false),
		ZeroResultSearches: s.getPopularSearches(true),
		PopularTags:        s.getPopularTags(),
		GeneratedAt:        now,
	}

	yesterday := now.Add(-24 * time.Hour)
	for _, event := range s.events {
		if event.SearchQuery != "" || len(event.SelectedTags) > 0 {
			dashboard.FilteredViews++
		}
		if isZeroResult(event) {
			dashboard.ZeroResultViews++
		}
		if event.Timestamp.After(yesterday) {
			dashboard.Last24hViews++
		}
		switch event.SortBy {
		case model.SortByTitle:
			dashboard.SortUsage.ByTitle++
		default:
			dashboard.SortUsage.ByDate++
		}
		if event.SortOrder == model.SortOrderAsc {
			dashboard.SortUsage.Ascending++
		}
	}

	if s.catalog != nil {
		dashboard.ArticleCount = s.catalog.Len()
		dashboard.TagCount = len(s.catalog.Tags())
	}
	return dashboard
}

func isZeroResult(event model.DiscoveryEvent) bool {
	return event.VisibleCount == 0 && event.TotalCount > 0
}

// getPopularSearches returns the most frequent search terms, compared
// case-insensitively. zeroOnly restricts it to searches that matched nothing.
func (s *Service) getPopularSearches(zeroOnly bool) []model.PopularSearch {
	queryCounts := make(map[string]int)
	for _, event := range s.events {
		query := strings.ToLower(strings.TrimSpace(event.SearchQuery))
		if query == "" || (zeroOnly && !isZeroResult(event)) {
			continue
		}
		queryCounts[query]++
	}

	popular := make([]model.PopularSearch, 0, len(queryCounts))
	for query, count := range queryCounts {
		popular = append(popular, model.PopularSearch{Query: query, SearchCount: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SearchCount != popular[j].SearchCount {
			return popular[i].SearchCount > popular[j].SearchCount
		}
		return popular[i].Query < popular[j].Query
	})

	if len(popular) > popularSearchLimit {
		popular = popular[:popularSearchLimit]
	}
	return popular
}

// getPopularTags returns the tags selected most often
func (s *Service) getPopularTags() []model.PopularTag {
	tagCounts := make(map[string]int)
	for _, event := range s.events {
		for _, tag := range event.SelectedTags {
			tagCounts[tag]++
		}
	}

	popular := make([]model.PopularTag, 0, len(tagCounts))
	for tag, count := range tagCounts {
		popular = append(popular, model.PopularTag{Tag: tag, SelectionCount: count})
	}
	sort.Slice(popular, func(i, j int) bool {
		if popular[i].SelectionCount != popular[j].SelectionCount {
			return popular[i].SelectionCount > popular[j].SelectionCount
		}
		return popular[i].Tag < popular[j].Tag
	})

	if len(popular) > popularTagLimit {
		popular = popular[:popularTagLimit]
	}
	return popular
}

// Flush writes the events to the data file if anything changed since the last write.
func (s *Service) Flush() error {
	if s.dataFilePath == "" {
		return nil
	}

	s.mutex.Lock()
	if !s.dirty {
		s.mutex.Unlock()
		return nil
	}
	events := make([]model.DiscoveryEvent, len(s.events))
	copy(events, s.events)
	s.dirty = false
	s.mutex.Unlock()

	if err := persistence.SaveGob(s.dataFilePath, events); err != nil {
		s.mutex.Lock()
		s.dirty = true
		s.mutex.Unlock()
		return fmt.Errorf("failed to save analytics data: %w", err)
	}
	return nil
}

// loadData loads analytics data from file
func (s *Service) loadData() error {
	if s.dataFilePath == "" {
		return nil
	}

	var events []model.DiscoveryEvent
	if err := persistence.LoadGob(s.dataFilePath, &events); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil // File doesn't exist yet, that's okay
		}
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.events = events
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
	return nil
}
