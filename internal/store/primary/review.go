package primary

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"listforge/internal/models"
	"listforge/internal/store"
)

func (s *StoreImpl) CreateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	query := `
		INSERT INTO review_queue (listing_id, reason, created_at)
		VALUES ($1, $2, now())
		RETURNING id, created_at`

	err := s.db.QueryRow(ctx, query, item.ListingID, item.Reason).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert review item for listing %d: %w", item.ListingID, err)
	}
	return nil
}

func (s *StoreImpl) ListPendingReviews(ctx context.Context, limit int) ([]*models.ReviewItem, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, listing_id, reason, resolved, resolution, created_at, resolved_at
		FROM review_queue
		WHERE resolved = false
		ORDER BY created_at ASC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	defer rows.Close()

	var items []*models.ReviewItem
	for rows.Next() {
		item := &models.ReviewItem{}
		if err := rows.Scan(&item.ID, &item.ListingID, &item.Reason, &item.Resolved,
			&item.Resolution, &item.CreatedAt, &item.ResolvedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *StoreImpl) GetReviewItem(ctx context.Context, id int64) (*models.ReviewItem, error) {
	query := `
		SELECT id, listing_id, reason, resolved, resolution, created_at, resolved_at
		FROM review_queue WHERE id = $1`

	item := &models.ReviewItem{}
	err := s.db.QueryRow(ctx, query, id).Scan(&item.ID, &item.ListingID, &item.Reason,
		&item.Resolved, &item.Resolution, &item.CreatedAt, &item.ResolvedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review item %d: %w", id, err)
	}
	return item, nil
}

func (s *StoreImpl) ResolveReviewItem(ctx context.Context, id int64, resolution string) error {
	query := `
		UPDATE review_queue
		SET resolved = true, resolution = $2, resolved_at = now()
		WHERE id = $1 AND resolved = false`

	tag, err := s.db.Exec(ctx, query, id, resolution)
	if err != nil {
		return fmt.Errorf("failed to resolve review item %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
