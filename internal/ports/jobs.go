package ports

import (
	"context"

	"pixery/internal/domain"
)

// JobService tracks generation jobs in the store.
type JobService interface {
	// CreateJob inserts a pending job and returns its id.
	CreateJob(ctx context.Context, model, prompt string, tags []string, source domain.JobSource, refCount int) (int64, error)
	MarkStarted(ctx context.Context, id int64) error
	MarkCompleted(ctx context.Context, id int64, recordID int64) error
	MarkFailed(ctx context.Context, id int64, errText string) error

	// ListActive returns pending and running jobs, newest first.
	ListActive(ctx context.Context) ([]domain.Job, error)

	// ListFailed returns the most recent failures, newest first.
	ListFailed(ctx context.Context, limit int64) ([]domain.Job, error)

	// CleanupStalled fails running jobs whose process is gone (e.g. after a
	// crash) and returns how many were failed.
	CleanupStalled(ctx context.Context) (int, error)

	// CleanupOld deletes finished jobs older than the given number of hours.
	CleanupOld(ctx context.Context, hours int) (int, error)
}
