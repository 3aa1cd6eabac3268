package primary

import (
	"context"
	"fmt"
	"time"

	"listforge/internal/models"
	"listforge/internal/store"
)

func (s *StoreImpl) CreateRun(ctx context.Context, run *models.PipelineRun) error {
	query := `
		INSERT INTO pipeline_runs (run_id, trigger, started_at)
		VALUES ($1, $2, $3)
		RETURNING id, started_at`

	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	err := s.db.QueryRow(ctx, query, run.RunID, run.Trigger, run.StartedAt).
		Scan(&run.ID, &run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert pipeline run: %w", err)
	}
	return nil
}

func (s *StoreImpl) FinishRun(ctx context.Context, run *models.PipelineRun) error {
	query := `
		UPDATE pipeline_runs
		SET folders_seen = $2, processed = $3, published = $4, queued = $5,
			rejected = $6, failed = $7, finished_at = now()
		WHERE run_id = $1`

	tag, err := s.db.Exec(ctx, query, run.RunID,
		run.FoldersSeen, run.Processed, run.Published, run.Queued, run.Rejected, run.Failed)
	if err != nil {
		return fmt.Errorf("failed to finish pipeline run %s: %w", run.RunID, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) ListRuns(ctx context.Context, limit int) ([]*models.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, run_id, trigger, folders_seen, processed, published, queued,
			rejected, failed, started_at, finished_at
		FROM pipeline_runs ORDER BY started_at DESC LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.PipelineRun
	for rows.Next() {
		r := &models.PipelineRun{}
		if err := rows.Scan(&r.ID, &r.RunID, &r.Trigger, &r.FoldersSeen, &r.Processed,
			&r.Published, &r.Queued, &r.Rejected, &r.Failed, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("failed to scan pipeline run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
