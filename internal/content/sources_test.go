package content

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/services"
	"github.com/gcbaptista/go-article-discovery/store"
)

type staticSource struct {
	name     string
	articles []model.ArticleSummary
	err      error
}

func (s staticSource) Name() string { return s.name }

func (s staticSource) ListArticles(context.Context) ([]model.ArticleSummary, error) {
	return s.articles, s.err
}

func TestSnapshotSourceRoundTrip(t *testing.T) {
	st := store.NewArticleStore()
	st.Replace([]model.ArticleSummary{
		{ID: "a", Title: "A", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"go"}},
		{ID: "b", Title: "B", Tags: []string{}},
	}, time.Now())

	path := filepath.Join(t.TempDir(), "snapshot.gob")
	require.NoError(t, WriteSnapshot(path, st))

	src := &SnapshotSource{Path: path}
	articles, err := src.ListArticles(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "a", articles[0].ID)
	assert.Equal(t, []string{"go"}, articles[0].Tags)

	_, err = (&SnapshotSource{Path: filepath.Join(t.TempDir(), "missing.gob")}).ListArticles(context.Background())
	assert.Error(t, err)
}

func TestMultiSource(t *testing.T) {
	a := staticSource{name: "a", articles: []model.ArticleSummary{{ID: "1", Title: "One"}}}
	b := staticSource{name: "b", articles: []model.ArticleSummary{{ID: "2", Title: "Two"}}}
	broken := staticSource{name: "broken", err: errors.New("boom")}

	multi := NewMultiSource(nil, a, broken, b)
	assert.Equal(t, "a,broken,b", multi.Name())

	articles, err := multi.ListArticles(context.Background())
	require.NoError(t, err)
	assert.Len(t, articles, 2)
	assert.Equal(t, "1", articles[0].ID)
	assert.Equal(t, "2", articles[1].ID)

	_, err = NewMultiSource(nil, broken, broken).ListArticles(context.Background())
	assert.Error(t, err)

	var _ services.ContentSource = multi
}

func TestNormalize(t *testing.T) {
	in := []model.ArticleSummary{
		{ID: "a", Title: "A", Tags: []string{" go ", "go", "", "web"}},
		{ID: "a", Title: "Duplicate"},
		{ID: " ", Title: "No ID"},
		{ID: "b", Title: "  "},
		{ID: "c", Title: "C"},
	}
	out, dropped := Normalize(in)

	assert.Equal(t, 3, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, []string{"go", "web"}, out[0].Tags)
	assert.Equal(t, "c", out[1].ID)
	assert.Equal(t, []string{}, out[1].Tags)
	assert.Equal(t, []string{" go ", "go", "", "web"}, in[0].Tags, "input must not be modified")
}
