package store

import (
	"bytes"
	"encoding/gob"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/gcbaptista/go-article-discovery/internal/errors"
	"github.com/gcbaptista/go-article-discovery/model"
)

func sampleArticles() []model.ArticleSummary {
	return []model.ArticleSummary{
		{ID: "a", Title: "Go Concurrency", PublishedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), Tags: []string{"go", "concurrency"}},
		{ID: "b", Title: "Rust Ownership", PublishedAt: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Tags: []string{"rust"}},
		{ID: "c", Title: "Go Generics", PublishedAt: time.Date(2023, 12, 5, 0, 0, 0, 0, time.UTC), Tags: []string{"go"}},
	}
}

func TestArticleStoreReplace(t *testing.T) {
	s := NewArticleStore()
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.LoadedAt().IsZero())
	assert.Empty(t, s.Tags())

	loadedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	input := sampleArticles()
	s.Replace(input, loadedAt)

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, loadedAt, s.LoadedAt())
	assert.Equal(t, []model.TagCount{{Tag: "go", Count: 2}, {Tag: "concurrency", Count: 1}, {Tag: "rust", Count: 1}}, s.Tags())

	input[0].Title = "mutated"
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "Go Concurrency", got.Title, "store must own its copy")

	s.Replace(sampleArticles()[:1], loadedAt.Add(time.Hour))
	assert.Equal(t, 1, s.Len())
	_, err = s.Get("b")
	assert.True(t, errors.Is(err, derrors.ErrArticleNotFound))
}

func TestArticleStoreGetFirstDuplicateWins(t *testing.T) {
	s := NewArticleStore()
	s.Replace([]model.ArticleSummary{
		{ID: "x", Title: "first"},
		{ID: "x", Title: "second"},
	}, time.Now())

	got, err := s.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Equal(t, 2, s.Len())
}

func TestArticleStoreGobRoundTrip(t *testing.T) {
	original := NewArticleStore()
	loadedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	articles := sampleArticles()
	articles = append(articles, model.ArticleSummary{ID: "d", Title: "Untagged", Tags: []string{}})
	original.Replace(articles, loadedAt)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(original))

	decoded := NewArticleStore()
	require.NoError(t, gob.NewDecoder(&buf).Decode(decoded))

	assert.Equal(t, original.Len(), decoded.Len())
	assert.True(t, loadedAt.Equal(decoded.LoadedAt()))
	assert.Equal(t, original.Tags(), decoded.Tags())
	for i, want := range original.List() {
		got := decoded.List()[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Tags, got.Tags)
		assert.True(t, want.PublishedAt.Equal(got.PublishedAt))
	}

	d, err := decoded.Get("d")
	require.NoError(t, err)
	assert.NotNil(t, d.Tags)
}

func TestArticleStoreConcurrentAccess(t *testing.T) {
	s := NewArticleStore()
	s.Replace(sampleArticles(), time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.List()
				_ = s.Tags()
				_, _ = s.Get("a")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				s.Replace(sampleArticles(), time.Now())
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, s.Len())
}
