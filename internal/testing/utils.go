// Package testing provides fixtures and helpers shared by the engine and API tests.
package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/go-article-discovery/config"
	"github.com/gcbaptista/go-article-discovery/internal/engine"
	"github.com/gcbaptista/go-article-discovery/model"
	"github.com/gcbaptista/go-article-discovery/services"
)

// SampleArticles returns a small catalog covering titles, excerpts and shared tags.
func SampleArticles() []model.ArticleSummary {
	return []model.ArticleSummary{
		{
			ID:          "nextjs-patterns",
			Title:       "Next.js patterns",
			PublishedAt: time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			Excerpt:     "Routing and data fetching in practice",
			Tags:        []string{"Web"},
		},
		{
			ID:          "debugging-prod",
			Title:       "Debugging prod",
			PublishedAt: time.Date(2025, 1, 25, 0, 0, 0, 0, time.UTC),
			Excerpt:     "Finding bugs in live web services",
			Tags:        []string{"debugging"},
		},
		{
			ID:          "go-concurrency",
			Title:       "Go concurrency",
			PublishedAt: time.Date(2024, 11, 2, 0, 0, 0, 0, time.UTC),
			Excerpt:     "Goroutines, channels and debugging races",
			Tags:        []string{"go", "debugging"},
		},
	}
}

// WriteMarkdownArticles writes one markdown file with front matter per article into dir.
func WriteMarkdownArticles(t *testing.T, dir string, articles []model.ArticleSummary) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	for _, a := range articles {
		var b strings.Builder
		b.WriteString("---\n")
		fmt.Fprintf(&b, "title: %q\n", a.Title)
		fmt.Fprintf(&b, "date: %s\n", a.PublishedAt.UTC().Format(time.RFC3339))
		if a.Excerpt != "" {
			fmt.Fprintf(&b, "excerpt: %q\n", a.Excerpt)
		}
		if len(a.Tags) > 0 {
			quoted := make([]string, len(a.Tags))
			for i, tag := range a.Tags {
				quoted[i] = fmt.Sprintf("%q", tag)
			}
			fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(quoted, ", "))
		}
		b.WriteString("---\n\nBody of ")
		b.WriteString(a.Title)
		b.WriteString("\n")
		path := filepath.Join(dir, a.ID+".md")
		require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	}
}

// TestSettings returns the default settings reading markdown from
// contentDir, with analytics kept in memory.
func TestSettings(contentDir string) config.Settings {
	settings := config.Default()
	settings.Content.Dir = contentDir
	return settings
}

// CreateTestEngine creates an engine over articles written to a temporary
// directory, loads it, and closes it when the test ends.
func CreateTestEngine(t *testing.T, articles []model.ArticleSummary, opts ...engine.Option) *engine.Engine {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "articles")
	WriteMarkdownArticles(t, dir, articles)

	eng, err := engine.New(TestSettings(dir), opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, eng.Close())
	})
	require.NoError(t, eng.Load(context.Background()))
	return eng
}

// RecordingNavigator stores every URL change a controller requests.
type RecordingNavigator struct {
	mu   sync.Mutex
	urls []string
}

func (n *RecordingNavigator) SetURL(url string, _ model.NavigateOptions) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.urls = append(n.urls, url)
}

// URLs returns the URLs navigated to so far, oldest first.
func (n *RecordingNavigator) URLs() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.urls...)
}

// IDs returns the article IDs in order.
func IDs(articles []model.ArticleSummary) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

// JobPollingOptions configures job polling behavior
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
	LogProgress  bool
}

// DefaultJobPollingOptions returns sensible defaults for job polling
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      10 * time.Second,
		PollInterval: 10 * time.Millisecond,
		LogProgress:  false,
	}
}

// WaitForJobCompletion polls a job until it completes or times out
func WaitForJobCompletion(t *testing.T, jobManager services.JobManager, jobID string, opts JobPollingOptions) *model.Job {
	t.Helper()
	timeout := time.After(opts.Timeout)
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-timeout:
			t.Fatalf("Job %s did not complete within %v timeout", jobID, opts.Timeout)
			return nil
		case <-ticker.C:
			job, err := jobManager.GetJob(jobID)
			require.NoError(t, err, "Failed to get job status")

			switch job.Status {
			case model.JobStatusCompleted:
				if opts.LogProgress {
					t.Logf("Job %s completed successfully in %v", jobID, job.CompletedAt.Sub(job.CreatedAt))
				}
				return job
			case model.JobStatusFailed, model.JobStatusCancelled:
				t.Fatalf("Job %s ended as %s: %s", jobID, job.Status, job.Error)
				return nil
			case model.JobStatusRunning:
				if opts.LogProgress && job.Progress != nil {
					t.Logf("Job %s progress: %d/%d - %s",
						jobID,
						job.Progress.Current,
						job.Progress.Total,
						job.Progress.Message)
				}
			}
		}
	}
}

// AssertJobCompleted verifies that a job completed successfully
func AssertJobCompleted(t *testing.T, job *model.Job, expectedType model.JobType, expectedTrigger string) {
	t.Helper()
	assert.Equal(t, model.JobStatusCompleted, job.Status, "Job should be completed")
	assert.Equal(t, expectedType, job.Type, "Job type should match")
	assert.Equal(t, expectedTrigger, job.Trigger, "Job trigger should match")
	assert.NotNil(t, job.CompletedAt, "Job should have completion timestamp")
	assert.Empty(t, job.Error, "Job should not have error")
}
