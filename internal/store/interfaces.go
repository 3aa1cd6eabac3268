package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"listforge/internal/models"
)

// --- Job Client ---

type JobClient interface {
	Enqueue(ctx context.Context, task *asynq.Task, folderPath string, opts ...asynq.Option) (*asynq.TaskInfo, error)
	EnqueueProductJob(ctx context.Context, folderPath string) error
	EnqueueScanJob(ctx context.Context, trigger string) error
	Close() error
}

// --- Listing Store ---

type ListingStore interface {
	CreateListing(ctx context.Context, listing *models.Listing) error
	GetListing(ctx context.Context, id int64) (*models.Listing, error)
	GetListingByFolder(ctx context.Context, folderPath string) (*models.Listing, error)
	UpdateListingStatus(ctx context.Context, id int64, status string, shopifyID *string) error
	ListListings(ctx context.Context, limit, offset int, status string) ([]*models.Listing, error)
	// RecentPublishedDescriptions feeds the uniqueness check: plain-text
	// bodies of the most recently published listings, newest first.
	RecentPublishedDescriptions(ctx context.Context, limit int) ([]string, error)

	Ping(ctx context.Context) error
}

// --- Run Store ---

type RunStore interface {
	CreateRun(ctx context.Context, run *models.PipelineRun) error
	FinishRun(ctx context.Context, run *models.PipelineRun) error
	ListRuns(ctx context.Context, limit int) ([]*models.PipelineRun, error)
}

// --- Review Store ---

type ReviewStore interface {
	CreateReviewItem(ctx context.Context, item *models.ReviewItem) error
	ListPendingReviews(ctx context.Context, limit int) ([]*models.ReviewItem, error)
	GetReviewItem(ctx context.Context, id int64) (*models.ReviewItem, error)
	ResolveReviewItem(ctx context.Context, id int64, resolution string) error
}

// --- Job Store ---

// JobRecordParams holds parameters for recording a job event.
type JobRecordParams struct {
	JobID      uuid.UUID
	TaskType   string
	Payload    []byte
	Queue      string
	Status     string
	FolderPath string
}

type JobStore interface {
	RecordJobEnqueue(ctx context.Context, params JobRecordParams) error
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error
	ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error)
}
