package primary

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"listforge/internal/models"
	"listforge/internal/store"
)

const listingColumns = `id, run_id, folder_path, title, description, description_html,
	meta_description, tags, product_type, collection_id, collection_name, match_confidence,
	match_reasoning, overall_score, status, quality_scores, issues, image_count, shopify_id,
	published_at, created_at, updated_at`

func scanListing(row pgx.Row, dest *models.Listing) error {
	return row.Scan(
		&dest.ID,
		&dest.RunID,
		&dest.FolderPath,
		&dest.Title,
		&dest.Description,
		&dest.DescriptionHTML,
		&dest.MetaDescription,
		&dest.Tags,
		&dest.ProductType,
		&dest.CollectionID,
		&dest.CollectionName,
		&dest.MatchConfidence,
		&dest.MatchReasoning,
		&dest.OverallScore,
		&dest.Status,
		&dest.QualityScores,
		&dest.Issues,
		&dest.ImageCount,
		&dest.ShopifyID,
		&dest.PublishedAt,
		&dest.CreatedAt,
		&dest.UpdatedAt,
	)
}

func (s *StoreImpl) CreateListing(ctx context.Context, listing *models.Listing) error {
	query := `
		INSERT INTO listings (run_id, folder_path, title, description, description_html,
			meta_description, tags, product_type, collection_id, collection_name,
			match_confidence, match_reasoning, overall_score, status, quality_scores,
			issues, image_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id, created_at, updated_at`

	now := time.Now()
	err := s.db.QueryRow(ctx, query,
		listing.RunID, listing.FolderPath, listing.Title, listing.Description,
		listing.DescriptionHTML, listing.MetaDescription, listing.Tags, listing.ProductType,
		listing.CollectionID, listing.CollectionName, listing.MatchConfidence,
		listing.MatchReasoning, listing.OverallScore, listing.Status,
		listing.QualityScores, listing.Issues, listing.ImageCount, now, now,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return fmt.Errorf("listing for folder '%s' already exists: %w", listing.FolderPath, store.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	return nil
}

func (s *StoreImpl) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingColumns)
	l := &models.Listing{}
	if err := scanListing(s.db.QueryRow(ctx, query, id), l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing %d: %w", id, err)
	}
	return l, nil
}

func (s *StoreImpl) GetListingByFolder(ctx context.Context, folderPath string) (*models.Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE folder_path = $1 ORDER BY created_at DESC LIMIT 1`, listingColumns)
	l := &models.Listing{}
	if err := scanListing(s.db.QueryRow(ctx, query, folderPath), l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get listing for folder '%s': %w", folderPath, err)
	}
	return l, nil
}

func (s *StoreImpl) UpdateListingStatus(ctx context.Context, id int64, status string, shopifyID *string) error {
	query := `
		UPDATE listings
		SET status = $2,
			shopify_id = COALESCE($3, shopify_id),
			published_at = CASE WHEN $2 = 'published' THEN now() ELSE published_at END,
			updated_at = now()
		WHERE id = $1`

	tag, err := s.db.Exec(ctx, query, id, status, shopifyID)
	if err != nil {
		return fmt.Errorf("failed to update listing %d status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *StoreImpl) ListListings(ctx context.Context, limit, offset int, status string) ([]*models.Listing, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`SELECT %s FROM listings`, listingColumns)
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list listings: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		l := &models.Listing{}
		if err := scanListing(rows, l); err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *StoreImpl) RecentPublishedDescriptions(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT description FROM listings
		WHERE status = 'published'
		ORDER BY published_at DESC
		LIMIT $1`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent descriptions: %w", err)
	}
	defer rows.Close()

	var descriptions []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan description: %w", err)
		}
		descriptions = append(descriptions, d)
	}
	return descriptions, rows.Err()
}
