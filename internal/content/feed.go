package content

import (
	"context"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	derrors "github.com/gcbaptista/go-article-discovery/internal/errors"
	"github.com/gcbaptista/go-article-discovery/internal/logging"
	"github.com/gcbaptista/go-article-discovery/internal/tokenizer"
	"github.com/gcbaptista/go-article-discovery/model"
)

// FeedSource reads articles from an RSS or Atom feed. Location is either an
// http(s) URL or a local file path.
type FeedSource struct {
	Location string
	Logger   *zap.Logger
	parser   *gofeed.Parser
}

// NewFeedSource creates a source for location.
func NewFeedSource(location string, logger *zap.Logger) *FeedSource {
	return &FeedSource{Location: location, Logger: logging.OrNop(logger), parser: gofeed.NewParser()}
}

func (s *FeedSource) Name() string {
	return "feed:" + s.Location
}

// ListArticles fetches and parses the feed. Items without a title or an
// identifier are skipped.
func (s *FeedSource) ListArticles(ctx context.Context) ([]model.ArticleSummary, error) {
	logger := logging.OrNop(s.Logger)
	parser := s.parser
	if parser == nil {
		parser = gofeed.NewParser()
	}

	var (
		feed *gofeed.Feed
		err  error
	)
	if isRemote(s.Location) {
		feed, err = parser.ParseURLWithContext(s.Location, ctx)
	} else {
		feed, err = s.parseFile(parser)
	}
	if err != nil {
		return nil, derrors.NewContentLoadError(s.Name(), err)
	}

	articles := make([]model.ArticleSummary, 0, len(feed.Items))
	for _, item := range feed.Items {
		article, ok := s.itemToArticle(item)
		if !ok {
			logger.Warn("skipping feed item without title or link", zap.String("feed", s.Location), zap.String("guid", item.GUID))
			continue
		}
		articles = append(articles, article)
	}
	logger.Debug("feed articles loaded", zap.String("feed", s.Location), zap.Int("count", len(articles)))
	return articles, nil
}

func (s *FeedSource) parseFile(parser *gofeed.Parser) (*gofeed.Feed, error) {
	file, err := os.Open(s.Location) // #nosec G304 -- location comes from the operator's configuration
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()
	return parser.Parse(file)
}

func (s *FeedSource) itemToArticle(item *gofeed.Item) (model.ArticleSummary, bool) {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return model.ArticleSummary{}, false
	}

	var id string
	switch {
	case item.Link != "":
		id = tokenizer.SlugFromLink(item.Link)
	case item.GUID != "":
		id = tokenizer.SlugFromLink(item.GUID)
	default:
		id = tokenizer.Slugify(title)
	}
	if id == "" {
		return model.ArticleSummary{}, false
	}

	article := model.ArticleSummary{
		ID:     id,
		Title:  title,
		Tags:   append([]string{}, item.Categories...),
		Source: item.Link,
	}
	if item.PublishedParsed != nil {
		article.PublishedAt = item.PublishedParsed.UTC()
	} else if item.UpdatedParsed != nil {
		article.PublishedAt = item.UpdatedParsed.UTC()
	}

	desc := item.Description
	if desc == "" {
		desc = item.Content
	}
	article.Excerpt = truncate(StripHTML(desc), excerptLength)
	return article, true
}

// StripHTML returns the text content of an HTML fragment with whitespace collapsed.
func StripHTML(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.Join(strings.Fields(fragment), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
