package primary

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"listforge/internal/models"
	"listforge/internal/store"
)

func (s *StoreImpl) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	query := `
		INSERT INTO background_jobs (job_id, task_type, payload, queue, status, folder_path, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), now(), now())`

	_, err := s.db.Exec(ctx, query,
		params.JobID, params.TaskType, params.Payload, params.Queue, params.Status, params.FolderPath)
	if err != nil {
		return fmt.Errorf("failed to record job enqueue: %w", err)
	}
	return nil
}

func (s *StoreImpl) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	query := `UPDATE background_jobs SET status = $2, updated_at = now() WHERE job_id = $1`
	tag, err := s.db.Exec(ctx, query, jobID, status)
	if err != nil {
		return fmt.Errorf("failed to update job %s status: %w", jobID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, job_id, task_type, payload, queue, status, folder_path, created_at, updated_at
		FROM background_jobs ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.BackgroundJob
	for rows.Next() {
		j := &models.BackgroundJob{}
		if err := rows.Scan(&j.ID, &j.JobID, &j.TaskType, &j.Payload, &j.Queue,
			&j.Status, &j.FolderPath, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
