package services

import (
	"context"

	"github.com/gcbaptista/go-article-discovery/model"
)

// ContentSource loads article summaries. Implementations read markdown files,
// feeds or snapshots; the returned list is treated as immutable by callers.
type ContentSource interface {
	Name() string
	ListArticles(ctx context.Context) ([]model.ArticleSummary, error)
}

// Navigator performs a URL change on behalf of the interaction controller.
// Calls are fire-and-forget: the controller never waits on the outcome.
type Navigator interface {
	SetURL(url string, opts model.NavigateOptions)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(url string, opts model.NavigateOptions)

// SetURL calls f(url, opts).
func (f NavigatorFunc) SetURL(url string, opts model.NavigateOptions) {
	f(url, opts)
}

// Catalog gives read access to the currently loaded articles.
type Catalog interface {
	List() []model.ArticleSummary
	Get(id string) (model.ArticleSummary, error)
	Tags() []model.TagCount
	Len() int
}

// Evaluator turns a filter state into the view the rendering layer consumes.
type Evaluator interface {
	Evaluate(full []model.ArticleSummary, state model.FilterState) []model.ArticleSummary
	View(full []model.ArticleSummary, state model.FilterState, listPath string) model.View
}

// JobManager defines operations for inspecting background jobs
type JobManager interface {
	GetJob(jobID string) (*model.Job, error)
	ListJobs(status *model.JobStatus) []*model.Job
}
