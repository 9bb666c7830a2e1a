package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pixery/internal/domain"
)

// CreateJob inserts a pending job and returns its id.
func (s *Store) CreateJob(ctx context.Context, model, prompt string, tags []string, source domain.JobSource, refCount int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO generation_jobs (status, model, prompt, tags, source, ref_count, created_at)
		 VALUES ('pending', ?, ?, ?, ?, ?, ?)`,
		model, prompt, strings.Join(tags, ","), string(source), refCount, nowStamp())
	if err != nil {
		return 0, fmt.Errorf("failed to create job: %w", err)
	}
	return res.LastInsertId()
}

// MarkStarted transitions a job to running.
func (s *Store) MarkStarted(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE generation_jobs SET status = 'running', started_at = ? WHERE id = ?",
		nowStamp(), id)
	if err != nil {
		return fmt.Errorf("failed to mark job %d started: %w", id, err)
	}
	return nil
}

// MarkCompleted finishes a job and links the record it produced.
func (s *Store) MarkCompleted(ctx context.Context, id, recordID int64) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE generation_jobs SET status = 'completed', completed_at = ?, generation_id = ? WHERE id = ?",
		nowStamp(), recordID, id)
	if err != nil {
		return fmt.Errorf("failed to mark job %d completed: %w", id, err)
	}
	return nil
}

// MarkFailed finishes a job with an error message.
func (s *Store) MarkFailed(ctx context.Context, id int64, errText string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE generation_jobs SET status = 'failed', completed_at = ?, error = ? WHERE id = ?",
		nowStamp(), errText, id)
	if err != nil {
		return fmt.Errorf("failed to mark job %d failed: %w", id, err)
	}
	return nil
}

const jobColumns = `id, status, model, prompt, tags, source, ref_count,
	created_at, started_at, completed_at, generation_id, error`

func scanJob(scan func(...any) error) (domain.Job, error) {
	var (
		j         domain.Job
		status    string
		tags      sql.NullString
		source    string
		startedAt sql.NullString
		doneAt    sql.NullString
		recordID  sql.NullInt64
		errText   sql.NullString
	)
	err := scan(&j.ID, &status, &j.Model, &j.Prompt, &tags, &source, &j.RefCount,
		&j.CreatedAt, &startedAt, &doneAt, &recordID, &errText)
	if err != nil {
		return j, err
	}
	parsed, err := domain.ParseJobStatus(status)
	if err != nil {
		return j, err
	}
	j.Status = parsed
	if tags.String != "" {
		j.Tags = strings.Split(tags.String, ",")
	}
	j.Source = domain.JobSource(source)
	j.StartedAt = startedAt.String
	j.CompletedAt = doneAt.String
	j.RecordID = recordID.Int64
	j.Error = errText.String
	return j, nil
}

// ListActive returns pending and running jobs, newest first.
func (s *Store) ListActive(ctx context.Context) ([]domain.Job, error) {
	return s.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs
		 WHERE status IN ('pending', 'running')
		 ORDER BY created_at DESC`)
}

// ListFailed returns failures from the last two hours, newest first.
func (s *Store) ListFailed(ctx context.Context, limit int64) ([]domain.Job, error) {
	cutoff := time.Now().Add(-2 * time.Hour).Format("2006-01-02T15:04:05")
	return s.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM generation_jobs
		 WHERE status = 'failed' AND completed_at >= ?
		 ORDER BY completed_at DESC
		 LIMIT ?`, cutoff, limit)
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]domain.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CleanupStalled fails pending or running jobs older than 30 minutes, e.g.
// after a crashed generation process. Returns how many were failed.
func (s *Store) CleanupStalled(ctx context.Context) (int, error) {
	cutoff := time.Now().Add(-30 * time.Minute).Format("2006-01-02T15:04:05")
	res, err := s.db.ExecContext(ctx,
		`UPDATE generation_jobs
		 SET status = 'failed', error = 'Job timed out after 30 minutes', completed_at = ?
		 WHERE status IN ('pending', 'running') AND created_at < ?`,
		nowStamp(), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup stalled jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// CleanupOld deletes finished jobs older than the given number of hours.
func (s *Store) CleanupOld(ctx context.Context, hours int) (int, error) {
	cutoff := time.Now().Add(-time.Duration(hours) * time.Hour).Format("2006-01-02T15:04:05")
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM generation_jobs
		 WHERE status IN ('completed', 'failed') AND completed_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old jobs: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
