package content

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/gcbaptista/go-article-discovery/internal/logging"
	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/services"
)

// MultiSource concatenates several sources in order. A failing source is
// logged and skipped; the load fails only when every source fails.
type MultiSource struct {
	Sources []services.ContentSource
	Logger  *zap.Logger
}

// NewMultiSource combines sources.
func NewMultiSource(logger *zap.Logger, sources ...services.ContentSource) *MultiSource {
	return &MultiSource{Sources: sources, Logger: logging.OrNop(logger)}
}

func (m *MultiSource) Name() string {
	names := make([]string, len(m.Sources))
	for i, src := range m.Sources {
		names[i] = src.Name()
	}
	return strings.Join(names, ",")
}

func (m *MultiSource) ListArticles(ctx context.Context) ([]model.ArticleSummary, error) {
	logger := logging.OrNop(m.Logger)
	var (
		all  []model.ArticleSummary
		errs []error
	)
	for _, src := range m.Sources {
		articles, err := src.ListArticles(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("content source failed", zap.String("source", src.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		all = append(all, articles...)
	}
	if len(m.Sources) > 0 && len(errs) == len(m.Sources) {
		return nil, errors.Join(errs...)
	}
	return all, nil
}
