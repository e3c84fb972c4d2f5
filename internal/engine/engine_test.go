package engine_test

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/gcbaptista/go-article-discovery/config"
	"github.com/gcbaptista/go-article-discovery/internal/content"
	"github.com/gcbaptista/go-article-discovery/internal/engine"
	derrors "github.com/gcbaptista/go-article-discovery/internal/errors"
	testutil "github.com/gcbaptista/go-article-discovery/internal/testing"
	"github.com/gcbaptista/go-article-discovery/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }

func (failingSource) ListArticles(context.Context) ([]model.ArticleSummary, error) {
	return nil, derrors.NewContentLoadError("failing", errors.New("unreachable"))
}

func TestEngine_LoadAndEvaluate(t *testing.T) {
	eng := testutil.CreateTestEngine(t, testutil.SampleArticles())

	assert.Equal(t, 3, eng.Catalog().Len())
	assert.False(t, eng.LoadedAt().IsZero())
	assert.Equal(t, []model.TagCount{
		{Tag: "debugging", Count: 2},
		{Tag: "Web", Count: 1},
		{Tag: "go", Count: 1},
	}, eng.Catalog().Tags())

	article, err := eng.Catalog().Get("go-concurrency")
	require.NoError(t, err)
	assert.Equal(t, "Go concurrency", article.Title)
	assert.Equal(t, []string{"go", "debugging"}, article.Tags)

	view := eng.Evaluate(url.Values{})
	assert.Equal(t, []string{"debugging-prod", "nextjs-patterns", "go-concurrency"}, testutil.IDs(view.Articles))
	assert.False(t, view.HasActiveFilters)
	assert.Equal(t, "/articles", view.URL)

	view = eng.Evaluate(url.Values{"search": {"debugging"}, "sort": {"title"}, "order": {"asc"}})
	assert.Equal(t, []string{"debugging-prod", "go-concurrency"}, testutil.IDs(view.Articles))
	assert.Equal(t, 3, view.TotalCount)
	assert.Equal(t, 2, view.VisibleCount)
	assert.Equal(t, "/articles?search=debugging&sort=title&order=asc", view.URL)

	view = eng.Evaluate(url.Values{"tag": {"debugging", "go"}})
	assert.Equal(t, []string{"go-concurrency"}, testutil.IDs(view.Articles))

	dashboard := eng.Analytics().GetDashboardData()
	assert.Equal(t, 3, dashboard.TotalViews)
	assert.Equal(t, 2, dashboard.FilteredViews)
	assert.Equal(t, 3, dashboard.ArticleCount)
}

func TestEngine_NewSession(t *testing.T) {
	mock := clock.NewMock()
	eng := testutil.CreateTestEngine(t, testutil.SampleArticles(), engine.WithClock(mock))

	nav := &testutil.RecordingNavigator{}
	var views []model.View
	session := eng.NewSession("tag=Web", nav, func(v model.View) { views = append(views, v) })
	defer session.Close()

	assert.Equal(t, []string{"nextjs-patterns"}, testutil.IDs(session.View().Articles))

	session.ToggleTag("Web")
	assert.Equal(t, []string{"/articles"}, nav.URLs())
	require.Len(t, views, 1)
	assert.Equal(t, 3, views[0].VisibleCount)

	session.SetSearchQuery("next")
	mock.Add(299 * time.Millisecond)
	assert.Len(t, nav.URLs(), 1)
	mock.Add(time.Millisecond)
	require.Eventually(t, func() bool { return len(nav.URLs()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "/articles?search=next", nav.URLs()[1])
	assert.Equal(t, []string{"nextjs-patterns"}, testutil.IDs(session.View().Articles))

	assert.Equal(t, 2, eng.Analytics().EventCount())
}

func TestEngine_SessionKeepsArticlesAcrossReload(t *testing.T) {
	eng := testutil.CreateTestEngine(t, testutil.SampleArticles())
	session := eng.NewSession("", nil, nil)
	defer session.Close()

	dir := eng.Settings().Content.Dir
	testutil.WriteMarkdownArticles(t, dir, []model.ArticleSummary{
		{ID: "added", Title: "Added later", PublishedAt: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
	})
	require.NoError(t, eng.Load(context.Background()))

	assert.Equal(t, 4, eng.Catalog().Len())
	assert.Equal(t, 3, session.View().TotalCount)
}

func TestEngine_ReloadAsync(t *testing.T) {
	eng := testutil.CreateTestEngine(t, testutil.SampleArticles()[:1])
	require.NoError(t, eng.Start(context.Background()))

	testutil.WriteMarkdownArticles(t, eng.Settings().Content.Dir, testutil.SampleArticles()[1:])
	jobID, err := eng.ReloadAsync("api")
	require.NoError(t, err)

	job := testutil.WaitForJobCompletion(t, eng.Jobs(), jobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeReloadContent, "api")
	require.NotNil(t, job.Progress)
	assert.Equal(t, "Loaded 3 articles", job.Progress.Message)
	assert.Equal(t, 3, eng.Catalog().Len())
}

func TestEngine_ReloadFailureKeepsCatalog(t *testing.T) {
	settings := config.Default()
	eng, err := engine.New(settings, engine.WithSource(failingSource{}))
	require.NoError(t, err)
	defer func() { assert.NoError(t, eng.Close()) }()

	err = eng.Load(context.Background())
	assert.True(t, errors.Is(err, derrors.ErrContentLoad))

	jobID, err := eng.ReloadAsync("api")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		job, err := eng.Jobs().GetJob(jobID)
		return err == nil && job.Status == model.JobStatusFailed
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, eng.Catalog().Len())
}

func TestEngine_Snapshot(t *testing.T) {
	eng := testutil.CreateTestEngine(t, testutil.SampleArticles())
	path := filepath.Join(t.TempDir(), "catalog.gob")

	jobID, err := eng.WriteSnapshotAsync(path, "cli")
	require.NoError(t, err)
	job := testutil.WaitForJobCompletion(t, eng.Jobs(), jobID, testutil.DefaultJobPollingOptions())
	testutil.AssertJobCompleted(t, job, model.JobTypeWriteSnapshot, "cli")

	settings := config.Default()
	settings.Content.Dir = ""
	settings.Content.Snapshot = path
	restored, err := engine.New(settings)
	require.NoError(t, err)
	defer func() { assert.NoError(t, restored.Close()) }()
	require.NoError(t, restored.Load(context.Background()))

	assert.Equal(t, testutil.IDs(eng.Catalog().List()), testutil.IDs(restored.Catalog().List()))
}

func TestEngine_AnalyticsPersistedOnClose(t *testing.T) {
	dataDir := t.TempDir()
	contentDir := filepath.Join(t.TempDir(), "articles")
	testutil.WriteMarkdownArticles(t, contentDir, testutil.SampleArticles())

	settings := testutil.TestSettings(contentDir)
	settings.DataDir = dataDir

	first, err := engine.New(settings)
	require.NoError(t, err)
	require.NoError(t, first.Load(context.Background()))
	first.Evaluate(url.Values{"search": {"go"}})
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "Close is idempotent")

	second, err := engine.New(settings)
	require.NoError(t, err)
	defer func() { assert.NoError(t, second.Close()) }()
	assert.Equal(t, 1, second.Analytics().EventCount())
}

func TestEngine_WatcherTriggersReload(t *testing.T) {
	contentDir := filepath.Join(t.TempDir(), "articles")
	testutil.WriteMarkdownArticles(t, contentDir, testutil.SampleArticles()[:1])

	settings := testutil.TestSettings(contentDir)
	settings.Content.Watch = true
	eng, err := engine.New(settings)
	require.NoError(t, err)
	defer func() { assert.NoError(t, eng.Close()) }()
	require.NoError(t, eng.Load(context.Background()))
	require.NoError(t, eng.Start(context.Background()))

	testutil.WriteMarkdownArticles(t, contentDir, testutil.SampleArticles()[1:2])
	require.Eventually(t, func() bool { return eng.Catalog().Len() == 2 }, 10*time.Second, 20*time.Millisecond)

	watcherJobs := 0
	for _, job := range eng.Jobs().ListJobs(nil) {
		if job.Trigger == "watcher" {
			watcherJobs++
		}
	}
	assert.GreaterOrEqual(t, watcherJobs, 1)
}

func TestBuildSource(t *testing.T) {
	_, err := engine.BuildSource(config.ContentSettings{}, nil)
	assert.Error(t, err)

	single, err := engine.BuildSource(config.ContentSettings{Dir: "content"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &content.MarkdownSource{}, single)

	multi, err := engine.BuildSource(config.ContentSettings{Dir: "content", Feed: "feed.xml", Snapshot: "s.gob"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &content.MultiSource{}, multi)
	assert.Equal(t, "markdown:content,feed:feed.xml,snapshot:s.gob", multi.Name())
}
