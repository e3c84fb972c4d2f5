package content

import (
	"context"

	derrors "github.com/gcbaptista/go-article-discovery/internal/errors"
	"github.com/gcbaptista/go-article-discovery/internal/persistence"
	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/store"
)

// SnapshotSource reads a gob snapshot of an article store.
type SnapshotSource struct {
	Path string
}

func (s *SnapshotSource) Name() string {
	return "snapshot:" + s.Path
}

func (s *SnapshotSource) ListArticles(ctx context.Context) ([]model.ArticleSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snapshot := store.NewArticleStore()
	if err := persistence.LoadGob(s.Path, snapshot); err != nil {
		return nil, derrors.NewContentLoadError(s.Name(), err)
	}
	return snapshot.List(), nil
}

// WriteSnapshot saves the articles of st to path.
func WriteSnapshot(path string, st *store.ArticleStore) error {
	return persistence.SaveGob(path, st)
}
