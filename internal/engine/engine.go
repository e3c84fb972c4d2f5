// Package engine wires the article catalog, the content sources, the filter
// pipeline and the background services into one object the API and the CLI
// share.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/config"
	"github.com/gcbaptista/go-article-discovery/internal/analytics"
	"github.com/gcbaptista/go-article-discovery/internal/codec"
	"github.com/gcbaptista/go-article-discovery/internal/content"
	"github.com/gcbaptista/go-article-discovery/internal/controller"
	"github.com/gcbaptista/go-article-discovery/internal/jobs"
	"github.com/gcbaptista/go-article-discovery/internal/logging"
	"github.com/gcbaptista/go-article-discovery/internal/search"
	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/services"
	"github.com/gcbaptista/go-article-discovery/store"
)

const (
	// Origins recorded with analytics events
	OriginHTTP    = "http"
	OriginSession = "session"

	// SnapshotFileName is the catalog snapshot written into the data directory
	SnapshotFileName = "catalog.gob"

	maxJobWorkers       = 2
	analyticsFlushEvery = time.Minute
)

// Engine owns the loaded catalog and everything built on top of it.
type Engine struct {
	settings  config.Settings
	store     *store.ArticleStore
	source    services.ContentSource
	pipeline  *search.Pipeline
	jobs      *jobs.Manager
	analytics *analytics.Service
	clock     clock.Clock
	logger    *zap.Logger

	mu      sync.Mutex
	watcher *content.Watcher
	started bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
	closed  bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithSource replaces the content source built from the settings.
func WithSource(source services.ContentSource) Option {
	return func(e *Engine) { e.source = source }
}

// WithClock replaces the wall clock used for debouncing, load times and analytics.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(logger) }
}

// New creates an engine from settings. Nothing is loaded until Load.
func New(settings config.Settings, opts ...Option) (*Engine, error) {
	e := &Engine{
		settings: settings,
		store:    store.NewArticleStore(),
		clock:    clock.New(),
		logger:   zap.NewNop(),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.source == nil {
		source, err := BuildSource(settings.Content, e.logger)
		if err != nil {
			return nil, err
		}
		e.source = source
	}

	e.pipeline = search.NewPipeline(search.NewSorter(settings.CollationTag()))
	e.jobs = jobs.NewManager(maxJobWorkers, e.logger.Named("jobs"))

	analyticsPath := ""
	if settings.DataDir != "" {
		analyticsPath = filepath.Join(settings.DataDir, analytics.DataFileName)
	}
	e.analytics = analytics.NewService(e.store, analyticsPath,
		analytics.WithClock(e.clock), analytics.WithLogger(e.logger.Named("analytics")))

	return e, nil
}

// BuildSource creates the content source the settings describe. Several
// configured sources are combined, markdown first.
func BuildSource(settings config.ContentSettings, logger *zap.Logger) (services.ContentSource, error) {
	var sources []services.ContentSource
	if settings.Dir != "" {
		sources = append(sources, content.NewMarkdownSource(settings.Dir, settings.Extensions, logger))
	}
	if settings.Feed != "" {
		sources = append(sources, content.NewFeedSource(settings.Feed, logger))
	}
	if settings.Snapshot != "" {
		sources = append(sources, &content.SnapshotSource{Path: settings.Snapshot})
	}

	switch len(sources) {
	case 0:
		return nil, fmt.Errorf("no content source configured")
	case 1:
		return sources[0], nil
	default:
		return content.NewMultiSource(logger, sources...), nil
	}
}

// Start launches the background services: the job manager, the periodic
// analytics flush and, when enabled, the content watcher.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return nil
	}
	e.started = true

	e.jobs.Start()
	e.wg.Add(1)
	go e.flushLoop()

	if e.settings.Content.Watch && e.settings.Content.Dir != "" {
		watcher, err := content.NewWatcher(e.settings.Content.Dir, e.settings.Content.Extensions, e.onContentChange,
			content.WithWatchLogger(e.logger.Named("watcher")))
		if err != nil {
			return fmt.Errorf("failed to create content watcher: %w", err)
		}
		if err := watcher.Start(ctx); err != nil {
			watcher.Stop()
			return fmt.Errorf("failed to watch %s: %w", e.settings.Content.Dir, err)
		}
		e.watcher = watcher
	}
	return nil
}

func (e *Engine) onContentChange() {
	if _, err := e.ReloadAsync("watcher"); err != nil {
		e.logger.Warn("failed to schedule reload", zap.Error(err))
	}
}

// Load reads every article from the content source and replaces the catalog.
// Sessions created earlier keep the list they started with.
func (e *Engine) Load(ctx context.Context) error {
	articles, err := e.source.ListArticles(ctx)
	if err != nil {
		return err
	}

	normalized, dropped := content.Normalize(articles)
	if dropped > 0 {
		e.logger.Warn("dropped invalid or duplicate articles", zap.Int("count", dropped))
	}
	e.store.Replace(normalized, e.clock.Now())
	e.logger.Info("catalog loaded",
		zap.String("source", e.source.Name()),
		zap.Int("articles", len(normalized)),
		zap.Int("tags", len(e.store.Tags())))
	return nil
}

// Evaluate computes the view for a URL query, as a page load would.
func (e *Engine) Evaluate(query url.Values) model.View {
	state := codec.DecodeValues(query)
	view := e.pipeline.View(e.store.List(), state, e.settings.Discovery.ListPath)
	e.analytics.TrackView(OriginHTTP, view)
	return view
}

// NewSession creates an interaction controller over the current catalog,
// seeded from initialQuery. observer, when set, receives every recomputed view.
func (e *Engine) NewSession(initialQuery string, navigator services.Navigator, observer controller.Observer) *controller.Controller {
	return controller.New(e.store.List(), initialQuery, navigator,
		controller.WithClock(e.clock),
		controller.WithDebounce(e.settings.DebounceDuration()),
		controller.WithListPath(e.settings.Discovery.ListPath),
		controller.WithEvaluator(e.pipeline),
		controller.WithLogger(e.logger.Named("session")),
		controller.WithObserver(func(view model.View) {
			e.analytics.TrackView(OriginSession, view)
			if observer != nil {
				observer(view)
			}
		}),
	)
}

// Catalog gives read access to the loaded articles.
func (e *Engine) Catalog() services.Catalog {
	return e.store
}

// Jobs returns the background job manager.
func (e *Engine) Jobs() *jobs.Manager {
	return e.jobs
}

// Analytics returns the analytics service.
func (e *Engine) Analytics() *analytics.Service {
	return e.analytics
}

// Settings returns the settings the engine was created with.
func (e *Engine) Settings() config.Settings {
	return e.settings
}

// LoadedAt returns when the catalog was last replaced.
func (e *Engine) LoadedAt() time.Time {
	return e.store.LoadedAt()
}

// Close stops the background services and writes pending analytics.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	watcher := e.watcher
	e.watcher = nil
	e.mu.Unlock()

	if watcher != nil {
		watcher.Stop()
	}
	close(e.stopCh)
	e.wg.Wait()
	e.jobs.Stop()

	if err := e.analytics.Flush(); err != nil {
		return err
	}
	return nil
}
