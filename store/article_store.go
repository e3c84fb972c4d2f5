package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	derrors "github.com/gcbaptista/go-article-discovery/internal/errors"
	"github.com/gcbaptista/go-article-discovery/index"
	"github.com/gcbaptista/go-article-discovery/model"
)

// ArticleStore holds the currently loaded article list. The list is replaced
// wholesale on reload; readers always see either the old or the new list.
type ArticleStore struct {
	Mu       sync.RWMutex
	articles []model.ArticleSummary
	byID     map[string]int // Article ID to position in articles
	tags     *index.TagIndex
	loadedAt time.Time
}

// gobArticleStoreData is a helper struct for Gob encoding/decoding ArticleStore data.
// It excludes the mutex and the derived lookups.
type gobArticleStoreData struct {
	Articles []model.ArticleSummary
	LoadedAt time.Time
}

// NewArticleStore creates an empty store.
func NewArticleStore() *ArticleStore {
	return &ArticleStore{
		byID: make(map[string]int),
		tags: index.NewTagIndex(nil),
	}
}

// Replace swaps in a new article list. The store keeps its own copy.
// When IDs collide the first occurrence wins for Get.
func (s *ArticleStore) Replace(articles []model.ArticleSummary, loadedAt time.Time) {
	owned := make([]model.ArticleSummary, len(articles))
	copy(owned, articles)
	byID := buildIDLookup(owned)
	tags := index.NewTagIndex(owned)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.articles = owned
	s.byID = byID
	s.tags = tags
	s.loadedAt = loadedAt
}

// List returns the articles in load order. The returned slice must not be modified.
func (s *ArticleStore) List() []model.ArticleSummary {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.articles
}

// Get returns the article with the given ID.
func (s *ArticleStore) Get(id string) (model.ArticleSummary, error) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	pos, ok := s.byID[id]
	if !ok {
		return model.ArticleSummary{}, derrors.NewArticleNotFoundError(id)
	}
	return s.articles[pos], nil
}

// Tags returns the tag counts of the current list.
func (s *ArticleStore) Tags() []model.TagCount {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.tags.Counts()
}

// Len returns the number of loaded articles.
func (s *ArticleStore) Len() int {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return len(s.articles)
}

// LoadedAt returns when the current list was loaded; zero if never.
func (s *ArticleStore) LoadedAt() time.Time {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.loadedAt
}

// GobEncode implements the gob.GobEncoder interface for ArticleStore.
func (s *ArticleStore) GobEncode() ([]byte, error) {
	s.Mu.RLock()
	dataToEncode := gobArticleStoreData{
		Articles: s.articles,
		LoadedAt: s.loadedAt,
	}
	s.Mu.RUnlock()

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(dataToEncode); err != nil {
		return nil, fmt.Errorf("failed to gob encode article store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for ArticleStore.
func (s *ArticleStore) GobDecode(data []byte) error {
	decodedData := gobArticleStoreData{}

	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	if err := decoder.Decode(&decodedData); err != nil {
		return fmt.Errorf("failed to gob decode article store data: %w", err)
	}

	// gob drops empty slices; restore them so decoded articles compare equal.
	for i := range decodedData.Articles {
		if decodedData.Articles[i].Tags == nil {
			decodedData.Articles[i].Tags = []string{}
		}
	}

	byID := buildIDLookup(decodedData.Articles)
	tags := index.NewTagIndex(decodedData.Articles)

	s.Mu.Lock()
	defer s.Mu.Unlock()
	s.articles = decodedData.Articles
	s.byID = byID
	s.tags = tags
	s.loadedAt = decodedData.LoadedAt
	return nil
}

func buildIDLookup(articles []model.ArticleSummary) map[string]int {
	byID := make(map[string]int, len(articles))
	for i, article := range articles {
		if _, exists := byID[article.ID]; !exists {
			byID[article.ID] = i
		}
	}
	return byID
}
