// Package controller owns the interactive filter state of one article list
// session. It debounces search input, pushes every committed state to the
// URL through a Navigator and recomputes the visible articles.
package controller

import (
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/gcbaptista/go-article-discovery/internal/codec"
	"github.com/gcbaptista/go-article-discovery/internal/search"
	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/services"
)

const (
	// DefaultDebounce is the quiet period before typed search input is committed.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultListPath is the URL of the bare article list.
	DefaultListPath = "/articles"
)

// Phase is the debounce state of a Controller.
type Phase int

const (
	// PhaseIdle means no search input is waiting to be committed.
	PhaseIdle Phase = iota
	// PhasePendingSearch means a debounce timer is armed.
	PhasePendingSearch
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePendingSearch:
		return "pending_search"
	default:
		return "unknown"
	}
}

// Observer receives every recomputed view.
type Observer func(view model.View)

// Option configures a Controller.
type Option func(*Controller)

// WithClock sets the clock driving the debounce timer.
func WithClock(clk clock.Clock) Option {
	return func(c *Controller) { c.clock = clk }
}

// WithDebounce sets the debounce delay for search input.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.delay = d
		}
	}
}

// WithListPath sets the path of the bare article list URL.
func WithListPath(path string) Option {
	return func(c *Controller) {
		if path != "" {
			c.listPath = path
		}
	}
}

// WithEvaluator replaces the default pipeline.
func WithEvaluator(e services.Evaluator) Option {
	return func(c *Controller) { c.evaluator = e }
}

// WithObserver registers the function notified after every recomputation.
func WithObserver(o Observer) Option {
	return func(c *Controller) { c.observer = o }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller is the state machine behind an interactive article list.
//
// Every operation runs under one lock, including the Navigator and Observer
// calls it triggers, so transitions are applied one at a time in the order
// they arrive. Navigator and Observer implementations must not call back
// into the Controller synchronously.
type Controller struct {
	mu sync.Mutex

	articles  []model.ArticleSummary
	evaluator services.Evaluator
	navigator services.Navigator
	observer  Observer
	clock     clock.Clock
	delay     time.Duration
	listPath  string
	logger    *zap.Logger

	state       model.FilterState
	searchInput string
	phase       Phase
	timer       *clock.Timer
	generation  uint64
	view        model.View
	closed      bool
}

// New creates a controller over articles, seeded from the query string the
// page was opened with. Missing or invalid parameters take their defaults.
// navigator may be nil when URL changes are not needed.
func New(articles []model.ArticleSummary, initialQuery string, navigator services.Navigator, opts ...Option) *Controller {
	c := &Controller{
		articles:  articles,
		navigator: navigator,
		clock:     clock.New(),
		delay:     DefaultDebounce,
		listPath:  DefaultListPath,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.evaluator == nil {
		c.evaluator = search.NewPipeline(search.NewSorter(language.English))
	}

	c.state = codec.Decode(initialQuery)
	c.searchInput = c.state.SearchQuery
	c.view = c.evaluator.View(c.articles, c.state, c.listPath)
	return c
}

// SetSearchQuery records raw search input. The input is visible immediately
// through SearchInput, but only reaches the filter state once no further
// input arrives for the debounce delay. Each call replaces the pending timer.
func (c *Controller) SetSearchQuery(raw string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.stopTimerLocked()
	c.searchInput = raw
	c.generation++
	generation := c.generation
	c.timer = c.clock.AfterFunc(c.delay, func() { c.commitSearch(generation) })
	c.phase = PhasePendingSearch
}

// commitSearch runs when a debounce timer fires. Timers replaced or cancelled
// after they were armed carry an old generation and do nothing.
func (c *Controller) commitSearch(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || generation != c.generation || c.phase != PhasePendingSearch {
		return
	}

	c.timer = nil
	c.phase = PhaseIdle
	c.state.SearchQuery = strings.TrimSpace(c.searchInput)
	c.logger.Debug("search committed", zap.String("search", c.state.SearchQuery))
	c.navigateLocked(codec.URL(c.listPath, c.state))
	c.recomputeLocked()
}

// ToggleTag selects tag, or deselects it when already selected. Tags are
// matched exactly; blank tags are ignored.
func (c *Controller) ToggleTag(tag string) {
	tag = codec.NormalizeTag(tag)
	if tag == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if i := c.state.TagIndex(tag); i >= 0 {
		c.state.SelectedTags = removeAt(c.state.SelectedTags, i)
	} else {
		c.state.SelectedTags = append(c.state.SelectedTags, tag)
	}
	c.applyLocked()
}

// SetSort changes the sort field and direction. Unknown values fall back to
// their defaults.
func (c *Controller) SetSort(by model.SortBy, order model.SortOrder) {
	parsedBy, _ := model.ParseSortBy(string(by))
	parsedOrder, _ := model.ParseSortOrder(string(order))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.state.SortBy = parsedBy
	c.state.SortOrder = parsedOrder
	c.applyLocked()
}

// RemoveFilter removes a single active filter: the search query (including
// any pending input), one selected tag, or the sort settings.
func (c *Controller) RemoveFilter(f model.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	switch f.Kind {
	case model.FilterKindSearch:
		c.cancelPendingLocked()
		c.searchInput = ""
		c.state.SearchQuery = ""
	case model.FilterKindTag:
		if i := c.state.TagIndex(codec.NormalizeTag(f.Value)); i >= 0 {
			c.state.SelectedTags = removeAt(c.state.SelectedTags, i)
		}
	case model.FilterKindSort:
		c.state.SortBy = model.DefaultSortBy
		c.state.SortOrder = model.DefaultSortOrder
	default:
		c.logger.Warn("ignoring unknown filter kind", zap.String("kind", string(f.Kind)))
		return
	}
	c.applyLocked()
}

// ClearAll resets every filter to its default and navigates to the bare list
// URL. Pending search input is discarded.
func (c *Controller) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.cancelPendingLocked()
	c.searchInput = ""
	c.state = model.DefaultFilterState()
	c.navigateLocked(c.listPath)
	c.recomputeLocked()
}

// URLChanged adopts the state encoded in rawQuery after a navigation the
// controller did not initiate (back/forward, external link). The URL is not
// pushed again. Pending search input is discarded in favour of the URL.
func (c *Controller) URLChanged(rawQuery string) {
	decoded := codec.Decode(rawQuery)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.cancelPendingLocked()
	c.state = decoded
	c.searchInput = decoded.SearchQuery
	c.recomputeLocked()
}

// State returns a copy of the committed filter state.
func (c *Controller) State() model.FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SearchInput returns the latest raw search input, committed or not.
func (c *Controller) SearchInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.searchInput
}

// Phase returns the current debounce phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// View returns the most recently computed view.
func (c *Controller) View() model.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Close cancels any pending search. Later operations are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPendingLocked()
	c.closed = true
}

// applyLocked pushes the encoded state and recomputes the view.
func (c *Controller) applyLocked() {
	c.navigateLocked(codec.URL(c.listPath, c.state))
	c.recomputeLocked()
}

func (c *Controller) navigateLocked(url string) {
	if c.navigator == nil {
		return
	}
	c.navigator.SetURL(url, model.NavigateOptions{PreserveScroll: true})
}

func (c *Controller) recomputeLocked() {
	c.view = c.evaluator.View(c.articles, c.state, c.listPath)
	if c.observer != nil {
		c.observer(c.view)
	}
}

func (c *Controller) cancelPendingLocked() {
	c.stopTimerLocked()
	c.generation++
	c.phase = PhaseIdle
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// removeAt returns tags without index i, leaving the input slice untouched.
func removeAt(tags []string, i int) []string {
	out := make([]string, 0, len(tags)-1)
	out = append(out, tags[:i]...)
	return append(out, tags[i+1:]...)
}
