package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listforge/internal/drive"
	"listforge/internal/models"
	"listforge/internal/shopify"
	"listforge/internal/store"
	"listforge/pkg/matcher"
	"listforge/pkg/scorer"
)

// --- Fakes ---

type fakeFolders struct {
	folders   []drive.ProductFolder
	processed []string
}

func (f *fakeFolders) ListProductFolders(ctx context.Context) ([]drive.ProductFolder, error) {
	return f.folders, nil
}

func (f *fakeFolders) DownloadImage(ctx context.Context, object string) ([]byte, error) {
	return []byte("image-bytes:" + object), nil
}

func (f *fakeFolders) MarkProcessed(ctx context.Context, folder string) error {
	f.processed = append(f.processed, folder)
	return nil
}

type fakeVision struct {
	result VisionResult
	calls  int
}

func (f *fakeVision) AnalyzeImages(ctx context.Context, images [][]byte, folderPath string) (VisionResult, error) {
	f.calls++
	return f.result, nil
}

type fakeGenerator struct {
	copy ListingCopy
}

func (f *fakeGenerator) GenerateListing(ctx context.Context, req GenerationRequest) (ListingCopy, error) {
	return f.copy, nil
}

type fakePublisher struct {
	created []shopify.ProductInput
	fail    error
	recents []string
}

func (f *fakePublisher) CreateProduct(ctx context.Context, input shopify.ProductInput) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.created = append(f.created, input)
	return "gid://shopify/Product/1", nil
}

func (f *fakePublisher) RecentProductDescriptions(ctx context.Context, first int) ([]string, error) {
	return f.recents, nil
}

type fakeListings struct {
	listings []*models.Listing
	statuses map[int64]string
	recents  []string
}

func (f *fakeListings) CreateListing(ctx context.Context, l *models.Listing) error {
	l.ID = int64(len(f.listings) + 1)
	f.listings = append(f.listings, l)
	return nil
}

func (f *fakeListings) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeListings) GetListingByFolder(ctx context.Context, folderPath string) (*models.Listing, error) {
	for i := len(f.listings) - 1; i >= 0; i-- {
		if f.listings[i].FolderPath == folderPath {
			return f.listings[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeListings) UpdateListingStatus(ctx context.Context, id int64, status string, shopifyID *string) error {
	if f.statuses == nil {
		f.statuses = make(map[int64]string)
	}
	f.statuses[id] = status
	return nil
}

func (f *fakeListings) ListListings(ctx context.Context, limit, offset int, status string) ([]*models.Listing, error) {
	return f.listings, nil
}

func (f *fakeListings) RecentPublishedDescriptions(ctx context.Context, limit int) ([]string, error) {
	return f.recents, nil
}

func (f *fakeListings) Ping(ctx context.Context) error { return nil }

type fakeRuns struct {
	finished *models.PipelineRun
}

func (f *fakeRuns) CreateRun(ctx context.Context, run *models.PipelineRun) error { return nil }
func (f *fakeRuns) FinishRun(ctx context.Context, run *models.PipelineRun) error {
	f.finished = run
	return nil
}
func (f *fakeRuns) ListRuns(ctx context.Context, limit int) ([]*models.PipelineRun, error) {
	return nil, nil
}

type fakeReviews struct {
	items []*models.ReviewItem
}

func (f *fakeReviews) CreateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	item.ID = int64(len(f.items) + 1)
	f.items = append(f.items, item)
	return nil
}

func (f *fakeReviews) ListPendingReviews(ctx context.Context, limit int) ([]*models.ReviewItem, error) {
	return f.items, nil
}

func (f *fakeReviews) GetReviewItem(ctx context.Context, id int64) (*models.ReviewItem, error) {
	return nil, store.ErrNotFound
}

func (f *fakeReviews) ResolveReviewItem(ctx context.Context, id int64, resolution string) error {
	return nil
}

// --- Helpers ---

func testDeps() (PipelineDeps, *fakeFolders, *fakePublisher, *fakeListings, *fakeReviews, *fakeRuns) {
	folders := &fakeFolders{folders: []drive.ProductFolder{
		{Path: "DTF Designs/Baseball-Team", Objects: []string{"incoming/DTF Designs/Baseball-Team/front.png"}},
	}}
	publisher := &fakePublisher{}
	listings := &fakeListings{}
	reviews := &fakeReviews{}
	runs := &fakeRuns{}

	deps := PipelineDeps{
		Folders: folders,
		Vision: &fakeVision{result: VisionResult{
			Labels:      []string{"baseball", "jersey"},
			ProductType: "DTF",
		}},
		Trends: NewNoopTrendService(),
		Generator: &fakeGenerator{copy: ListingCopy{
			Title:           "Home Run Hero Jersey Print",
			DescriptionHTML: "<p>" + strings.Repeat("x", 150) + "</p>",
			MetaDescription: strings.Repeat("y", 140),
			Tags:            []string{"baseball", "jersey", "sports", "print"},
			VariantCount:    3,
		}},
		Publisher: publisher,
		Listings:  listings,
		Runs:      runs,
		Reviews:   reviews,
		Catalog: []matcher.Collection{{
			ID:           "dtf-baseball",
			Name:         "Baseball DTF Transfers",
			TagsRequired: []string{"channel:dtf"},
			Keywords:     []string{"baseball", "dtf"},
		}},
		Thresholds:   scorer.DefaultThresholds,
		RecentWindow: 10,
	}
	return deps, folders, publisher, listings, reviews, runs
}

// --- Tests ---

func TestNewPipelineServiceEmptyCatalog(t *testing.T) {
	deps, _, _, _, _, _ := testDeps()
	deps.Catalog = nil
	_, err := NewPipelineService(deps)
	require.ErrorIs(t, err, matcher.ErrEmptyCatalog)
}

func TestRunOnceAutoPublish(t *testing.T) {
	deps, folders, publisher, listings, reviews, _ := testDeps()
	p, err := NewPipelineService(deps)
	require.NoError(t, err)

	run, err := p.RunOnce(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 1, run.FoldersSeen)
	assert.Equal(t, 1, run.Processed)
	assert.Equal(t, 1, run.Published)
	assert.Equal(t, 0, run.Failed)

	require.Len(t, publisher.created, 1)
	assert.Equal(t, "Home Run Hero Jersey Print", publisher.created[0].Title)
	// Required collection tags are merged into the published tag set.
	assert.Contains(t, publisher.created[0].Tags, "channel:dtf")

	require.Len(t, listings.listings, 1)
	// The raw HTML survives on the row so review approvals can republish it.
	assert.Equal(t, deps.Generator.(*fakeGenerator).copy.DescriptionHTML, listings.listings[0].DescriptionHTML)
	assert.Equal(t, models.ListingStatusPublished, listings.statuses[1])
	assert.Equal(t, []string{"DTF Designs/Baseball-Team"}, folders.processed)
	assert.Empty(t, reviews.items)
}

func TestRunOnceSkipsFolderWithExistingListing(t *testing.T) {
	deps, folders, publisher, listings, _, _ := testDeps()
	listings.listings = []*models.Listing{{
		ID:         7,
		FolderPath: "DTF Designs/Baseball-Team",
		Status:     models.ListingStatusPublished,
	}}
	vision := deps.Vision.(*fakeVision)
	p, err := NewPipelineService(deps)
	require.NoError(t, err)

	run, err := p.RunOnce(context.Background(), "manual")
	require.NoError(t, err)

	// The stale folder is re-marked instead of producing a second listing.
	assert.Equal(t, 0, vision.calls)
	assert.Empty(t, publisher.created)
	assert.Len(t, listings.listings, 1)
	assert.Equal(t, []string{"DTF Designs/Baseball-Team"}, folders.processed)
	assert.Equal(t, 1, run.Processed)
}

func TestRunOnceQueuesReview(t *testing.T) {
	deps, folders, publisher, _, reviews, _ := testDeps()
	// A tightened deployment threshold plus a thin tag set sends an
	// otherwise decent listing to review.
	deps.Thresholds = scorer.Thresholds{AutoPublish: 99, Quarantine: 75, Reject: 60}
	deps.Generator.(*fakeGenerator).copy.Tags = nil
	p, err := NewPipelineService(deps)
	require.NoError(t, err)

	run, err := p.RunOnce(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 1, run.Queued)
	assert.Equal(t, 0, run.Published)
	assert.Empty(t, publisher.created)
	require.Len(t, reviews.items, 1)
	assert.Equal(t, int64(1), reviews.items[0].ListingID)
	// Reviewed folders are still marked so they are not re-scanned.
	assert.Len(t, folders.processed, 1)
}

func TestRunOnceRejects(t *testing.T) {
	deps, folders, publisher, listings, reviews, _ := testDeps()
	// No usable signals: a folder name with no keyword overlap and empty
	// vision output force the fallback match at confidence 30, and the
	// thin copy drags the rest down.
	folders.folders = []drive.ProductFolder{
		{Path: "Misc/Unsorted-2024", Objects: []string{"incoming/Misc/Unsorted-2024/front.png"}},
	}
	deps.Vision = &fakeVision{result: VisionResult{}}
	deps.Generator = &fakeGenerator{copy: ListingCopy{Title: "Bad", VariantCount: 0}}
	p, err := NewPipelineService(deps)
	require.NoError(t, err)

	run, err := p.RunOnce(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 1, run.Rejected)
	assert.Empty(t, publisher.created)
	assert.Empty(t, reviews.items)
	require.Len(t, listings.listings, 1)
	assert.Equal(t, models.ListingStatusReject, listings.listings[0].Status)
	assert.Equal(t, matcher.FallbackConfidence, listings.listings[0].MatchConfidence)
}

func TestRunOncePublishFailure(t *testing.T) {
	deps, _, publisher, listings, _, _ := testDeps()
	publisher.fail = assert.AnError
	p, err := NewPipelineService(deps)
	require.NoError(t, err)

	run, err := p.RunOnce(context.Background(), "manual")
	require.NoError(t, err)

	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 0, run.Published)
	assert.Equal(t, models.ListingStatusFailed, listings.statuses[1])
}

func TestUniquenessPenaltyFromRecentListings(t *testing.T) {
	deps, _, publisher, listings, reviews, _ := testDeps()
	deps.Thresholds = scorer.Thresholds{AutoPublish: 96, Quarantine: 75, Reject: 60}
	gen := deps.Generator.(*fakeGenerator)
	gen.copy.DescriptionHTML = "<p>wonderful handcrafted ceramic drinking vessel shaped carefully artisan makers " + strings.Repeat("x", 80) + "</p>"
	listings.recents = []string{"wonderful handcrafted ceramic drinking vessel shaped carefully artisan makers " + strings.Repeat("x", 80)}
	p, err := NewPipelineService(deps)
	require.NoError(t, err)

	run, err := p.RunOnce(context.Background(), "manual")
	require.NoError(t, err)

	// uniqueness 70 drags the listing below the auto-publish gate.
	assert.Equal(t, 0, run.Published)
	assert.Equal(t, 1, run.Queued)
	assert.Empty(t, publisher.created)
	require.Len(t, reviews.items, 1)
}
