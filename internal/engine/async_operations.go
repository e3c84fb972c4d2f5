package engine

import (
	"context"
	"fmt"

	"github.com/gcbaptista/go-article-discovery/model"
)

// ReloadAsync reloads the catalog in a background job and returns the job ID.
func (e *Engine) ReloadAsync(trigger string) (string, error) {
	jobID, err := e.jobs.Submit(model.JobTypeReloadContent, trigger, map[string]string{
		"operation": "reload_content",
		"source":    e.source.Name(),
	}, func(ctx context.Context, job *model.Job) error {
		return e.executeReloadJob(ctx, job.ID)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start reload job: %w", err)
	}
	return jobID, nil
}

func (e *Engine) executeReloadJob(ctx context.Context, jobID string) error {
	e.jobs.UpdateJobProgress(jobID, 0, 2, "Reading content")
	if err := e.Load(ctx); err != nil {
		return err
	}
	e.jobs.UpdateJobProgress(jobID, 2, 2, fmt.Sprintf("Loaded %d articles", e.store.Len()))
	return nil
}

// WriteSnapshotAsync writes a catalog snapshot in a background job.
func (e *Engine) WriteSnapshotAsync(path, trigger string) (string, error) {
	jobID, err := e.jobs.Submit(model.JobTypeWriteSnapshot, trigger, map[string]string{
		"operation": "write_snapshot",
		"path":      path,
	}, func(ctx context.Context, job *model.Job) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return e.WriteSnapshot(path)
	})
	if err != nil {
		return "", fmt.Errorf("failed to start snapshot job: %w", err)
	}
	return jobID, nil
}
