// Package content loads article summaries from markdown files, RSS/Atom feeds
// and gob snapshots, and watches the markdown directory for changes.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	derrors "github.com/gcbaptista/go-article-discovery/internal/errors"
	"github.com/gcbaptista/go-article-discovery/internal/logging"
	"github.com/gcbaptista/go-article-discovery/model"
)

// DefaultExtensions are the file extensions read when none are configured.
var DefaultExtensions = []string{".md", ".mdx"}

// excerptLength caps excerpts derived from the article body.
const excerptLength = 200

// dateLayouts are the accepted front matter date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
}

// MarkdownSource reads articles from a directory tree of markdown files with
// YAML front matter.
type MarkdownSource struct {
	Dir        string
	Extensions []string
	Logger     *zap.Logger
}

// NewMarkdownSource creates a source for dir. Empty extensions means DefaultExtensions.
func NewMarkdownSource(dir string, extensions []string, logger *zap.Logger) *MarkdownSource {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &MarkdownSource{Dir: dir, Extensions: extensions, Logger: logging.OrNop(logger)}
}

func (s *MarkdownSource) Name() string {
	return "markdown:" + s.Dir
}

// ListArticles walks Dir in lexical order. Drafts are left out; files with
// unusable front matter are skipped with a warning.
func (s *MarkdownSource) ListArticles(ctx context.Context) ([]model.ArticleSummary, error) {
	logger := logging.OrNop(s.Logger)
	info, err := os.Stat(s.Dir)
	if err != nil {
		return nil, derrors.NewContentLoadError(s.Name(), err)
	}
	if !info.IsDir() {
		return nil, derrors.NewContentLoadError(s.Name(), fmt.Errorf("%s is not a directory", s.Dir))
	}

	var articles []model.ArticleSummary
	err = filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if path != s.Dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !s.accepts(path) {
			return nil
		}

		data, err := os.ReadFile(path) // #nosec G304 -- path comes from walking the configured directory
		if err != nil {
			logger.Warn("skipping unreadable article", zap.String("path", path), zap.Error(err))
			return nil
		}
		article, ok, err := ParseMarkdown(path, data)
		if err != nil {
			logger.Warn("skipping invalid article", zap.String("path", path), zap.Error(err))
			return nil
		}
		if !ok {
			logger.Debug("skipping draft", zap.String("path", path))
			return nil
		}
		articles = append(articles, article)
		return nil
	})
	if err != nil {
		return nil, derrors.NewContentLoadError(s.Name(), err)
	}

	logger.Debug("markdown articles loaded", zap.String("dir", s.Dir), zap.Int("count", len(articles)))
	return articles, nil
}

func (s *MarkdownSource) accepts(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range s.Extensions {
		if ext == strings.ToLower(allowed) {
			return true
		}
	}
	return false
}

// frontMatter mirrors the YAML header of an article file.
type frontMatter struct {
	Title       string    `yaml:"title"`
	Date        fmDate    `yaml:"date"`
	PublishedAt fmDate    `yaml:"publishedAt"`
	Excerpt     string    `yaml:"excerpt"`
	Summary     string    `yaml:"summary"`
	Description string    `yaml:"description"`
	Tags        fmTagList `yaml:"tags"`
	Slug        string    `yaml:"slug"`
	Draft       bool      `yaml:"draft"`
}

// fmDate keeps the raw scalar so every supported layout can be tried.
type fmDate struct {
	raw string
}

func (d *fmDate) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: date must be a scalar", value.Line)
	}
	d.raw = strings.TrimSpace(value.Value)
	return nil
}

// fmTagList accepts either a YAML sequence or a comma-separated string.
type fmTagList []string

func (t *fmTagList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var tags []string
		for _, tag := range strings.Split(value.Value, ",") {
			tags = append(tags, strings.TrimSpace(tag))
		}
		*t = tags
		return nil
	case yaml.SequenceNode:
		var tags []string
		if err := value.Decode(&tags); err != nil {
			return err
		}
		*t = tags
		return nil
	default:
		return fmt.Errorf("line %d: tags must be a list or a comma-separated string", value.Line)
	}
}

// ParseMarkdown builds a summary from a markdown file's contents. ok is false
// for drafts. The ID is the front matter slug, or the file name without its
// extension.
func ParseMarkdown(path string, data []byte) (article model.ArticleSummary, ok bool, err error) {
	header, body, err := splitFrontMatter(data)
	if err != nil {
		return model.ArticleSummary{}, false, err
	}

	var fm frontMatter
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return model.ArticleSummary{}, false, fmt.Errorf("invalid front matter: %w", err)
	}
	if fm.Draft {
		return model.ArticleSummary{}, false, nil
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		return model.ArticleSummary{}, false, fmt.Errorf("missing title")
	}

	rawDate := fm.Date.raw
	if rawDate == "" {
		rawDate = fm.PublishedAt.raw
	}
	if rawDate == "" {
		return model.ArticleSummary{}, false, fmt.Errorf("missing date")
	}
	published, err := ParseDate(rawDate)
	if err != nil {
		return model.ArticleSummary{}, false, err
	}

	id := strings.TrimSpace(fm.Slug)
	if id == "" {
		base := filepath.Base(path)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}

	excerpt := firstNonEmpty(fm.Excerpt, fm.Summary, fm.Description)
	if excerpt == "" {
		excerpt = excerptFromBody(body)
	}

	tags := []string(fm.Tags)
	if tags == nil {
		tags = []string{}
	}

	return model.ArticleSummary{
		ID:          id,
		Title:       title,
		PublishedAt: published,
		Excerpt:     strings.TrimSpace(excerpt),
		Tags:        tags,
		Source:      path,
	}, true, nil
}

// ParseDate parses a front matter date in any of the accepted layouts.
// Dates without a zone are taken as UTC.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

// splitFrontMatter separates the YAML header delimited by "---" lines from the body.
func splitFrontMatter(data []byte) (header, body []byte, err error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	first, rest, _ := bytes.Cut(data, []byte("\n"))
	if !isDelimiter(first) {
		return nil, nil, fmt.Errorf("missing front matter")
	}

	pos := 0
	for pos <= len(rest) {
		line, _, found := bytes.Cut(rest[pos:], []byte("\n"))
		if isDelimiter(line) {
			bodyStart := pos + len(line) + 1
			if bodyStart > len(rest) {
				bodyStart = len(rest)
			}
			return rest[:pos], rest[bodyStart:], nil
		}
		if !found {
			break
		}
		pos += len(line) + 1
	}
	return nil, nil, fmt.Errorf("unterminated front matter")
}

func isDelimiter(line []byte) bool {
	return string(bytes.TrimRight(line, " \t\r")) == "---"
}

// excerptFromBody returns the first prose paragraph of the body, truncated.
func excerptFromBody(body []byte) string {
	var paragraph []string
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if len(paragraph) > 0 {
				break
			}
			continue
		}
		if len(paragraph) == 0 && (strings.HasPrefix(line, "#") || strings.HasPrefix(line, "```") ||
			strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "<")) {
			continue
		}
		paragraph = append(paragraph, line)
	}
	return truncate(strings.Join(paragraph, " "), excerptLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n <= 3 {
		return string(runes[:n])
	}
	return strings.TrimSpace(string(runes[:n-3])) + "..."
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
