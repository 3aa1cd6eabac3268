package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Listing statuses mirror the scorer dispositions plus the terminal
// publishing states.
const (
	ListingStatusAutoPublish = "auto_publish"
	ListingStatusReview      = "review"
	ListingStatusReject      = "reject"
	ListingStatusPublished   = "published"
	ListingStatusFailed      = "publish_failed"
)

// Listing is one generated product listing and its scoring outcome.
type Listing struct {
	ID              int64           `db:"id"`
	RunID           *uuid.UUID      `db:"run_id"`
	FolderPath      string          `db:"folder_path"`
	Title           string          `db:"title"`
	Description     string          `db:"description"`
	DescriptionHTML string          `db:"description_html"`
	MetaDescription string          `db:"meta_description"`
	Tags            []string        `db:"tags"`
	ProductType     string          `db:"product_type"`
	CollectionID    string          `db:"collection_id"`
	CollectionName  string          `db:"collection_name"`
	MatchConfidence int             `db:"match_confidence"`
	MatchReasoning  string          `db:"match_reasoning"`
	OverallScore    int             `db:"overall_score"`
	Status          string          `db:"status"`
	QualityScores   json.RawMessage `db:"quality_scores"`
	Issues          json.RawMessage `db:"issues"`
	ImageCount      int             `db:"image_count"`
	ShopifyID       *string         `db:"shopify_id"`
	PublishedAt     *time.Time      `db:"published_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// PipelineRun is one scan-and-process invocation.
type PipelineRun struct {
	ID          int64      `db:"id"`
	RunID       uuid.UUID  `db:"run_id"`
	Trigger     string     `db:"trigger"` // "manual", "schedule", "worker"
	FoldersSeen int        `db:"folders_seen"`
	Processed   int        `db:"processed"`
	Published   int        `db:"published"`
	Queued      int        `db:"queued"`
	Rejected    int        `db:"rejected"`
	Failed      int        `db:"failed"`
	StartedAt   time.Time  `db:"started_at"`
	FinishedAt  *time.Time `db:"finished_at"`
}

// ReviewItem is a listing parked for a human decision.
type ReviewItem struct {
	ID         int64      `db:"id"`
	ListingID  int64      `db:"listing_id"`
	Reason     string     `db:"reason"`
	Resolved   bool       `db:"resolved"`
	Resolution *string    `db:"resolution"` // "approved" or "discarded"
	CreatedAt  time.Time  `db:"created_at"`
	ResolvedAt *time.Time `db:"resolved_at"`
}

// BackgroundJob mirrors the background_jobs table.
type BackgroundJob struct {
	ID         int64           `db:"id"`
	JobID      uuid.UUID       `db:"job_id"` // Asynq task ID
	TaskType   string          `db:"task_type"`
	Payload    json.RawMessage `db:"payload"`
	Queue      string          `db:"queue"`
	Status     string          `db:"status"`
	FolderPath *string         `db:"folder_path"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}
