package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listforge/internal/app"
	"listforge/internal/models"
	"listforge/internal/shopify"
	"listforge/internal/store"
)

// --- Fakes ---

type fakeListingStore struct {
	listings    []*models.Listing
	statuses    map[int64]string
	shopifyIDs  map[int64]string
	lastListArg string
}

func (f *fakeListingStore) CreateListing(ctx context.Context, l *models.Listing) error { return nil }

func (f *fakeListingStore) GetListing(ctx context.Context, id int64) (*models.Listing, error) {
	for _, l := range f.listings {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeListingStore) GetListingByFolder(ctx context.Context, folderPath string) (*models.Listing, error) {
	return nil, store.ErrNotFound
}

func (f *fakeListingStore) UpdateListingStatus(ctx context.Context, id int64, status string, shopifyID *string) error {
	if f.statuses == nil {
		f.statuses = make(map[int64]string)
		f.shopifyIDs = make(map[int64]string)
	}
	f.statuses[id] = status
	if shopifyID != nil {
		f.shopifyIDs[id] = *shopifyID
	}
	return nil
}

func (f *fakeListingStore) ListListings(ctx context.Context, limit, offset int, status string) ([]*models.Listing, error) {
	f.lastListArg = status
	return f.listings, nil
}

func (f *fakeListingStore) RecentPublishedDescriptions(ctx context.Context, limit int) ([]string, error) {
	return nil, nil
}

func (f *fakeListingStore) Ping(ctx context.Context) error { return nil }

type fakeReviewStore struct {
	items       []*models.ReviewItem
	resolutions map[int64]string
}

func (f *fakeReviewStore) CreateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	return nil
}

func (f *fakeReviewStore) ListPendingReviews(ctx context.Context, limit int) ([]*models.ReviewItem, error) {
	return f.items, nil
}

func (f *fakeReviewStore) GetReviewItem(ctx context.Context, id int64) (*models.ReviewItem, error) {
	for _, item := range f.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeReviewStore) ResolveReviewItem(ctx context.Context, id int64, resolution string) error {
	if f.resolutions == nil {
		f.resolutions = make(map[int64]string)
	}
	f.resolutions[id] = resolution
	return nil
}

type fakeJobStore struct {
	jobs []*models.BackgroundJob
}

func (f *fakeJobStore) RecordJobEnqueue(ctx context.Context, params store.JobRecordParams) error {
	return nil
}

func (f *fakeJobStore) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	return nil
}

func (f *fakeJobStore) ListJobs(ctx context.Context, limit, offset int) ([]*models.BackgroundJob, error) {
	return f.jobs, nil
}

// --- Helpers ---

// testShopify runs a TLS test server and returns a client pointed at it.
func testShopify(t *testing.T, handler http.HandlerFunc) *shopify.Client {
	t.Helper()
	srv := httptest.NewTLSServer(handler)
	t.Cleanup(srv.Close)
	return shopify.NewClient(strings.TrimPrefix(srv.URL, "https://"), "token-123", "", srv.Client())
}

func testContext(appInstance *app.App) context.Context {
	return context.WithValue(context.Background(), appKey, appInstance)
}

// --- Tests ---

func TestReviewApprovePublishesHTML(t *testing.T) {
	var published map[string]interface{}
	client := testShopify(t, func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Variables map[string]interface{} `json:"variables"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		published = req.Variables["input"].(map[string]interface{})

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"productCreate":{"product":{"id":"gid://shopify/Product/9","handle":"h"},"userErrors":[]}}}`))
	})

	listings := &fakeListingStore{listings: []*models.Listing{{
		ID:              4,
		Title:           "Home Run Hero Jersey Print",
		Description:     "A bold print for game day.",
		DescriptionHTML: "<p>A <strong>bold</strong> print for game day.</p>",
		MetaDescription: "meta",
		ProductType:     "DTF",
		Tags:            []string{"baseball", "channel:dtf"},
	}}}
	reviews := &fakeReviewStore{items: []*models.ReviewItem{{ID: 2, ListingID: 4}}}
	appInstance := &app.App{ListingStore: listings, ReviewStore: reviews, Shopify: client}

	reviewApproveCmd.SetContext(testContext(appInstance))
	err := reviewApproveCmd.RunE(reviewApproveCmd, []string{"2"})
	require.NoError(t, err)

	// The approved publish carries the stored HTML, not the stripped text.
	assert.Equal(t, "<p>A <strong>bold</strong> print for game day.</p>", published["descriptionHtml"])
	assert.Equal(t, models.ListingStatusPublished, listings.statuses[4])
	assert.Equal(t, "gid://shopify/Product/9", listings.shopifyIDs[4])
	assert.Equal(t, "approved", reviews.resolutions[2])
}

func TestReviewDiscard(t *testing.T) {
	listings := &fakeListingStore{listings: []*models.Listing{{ID: 4, Title: "T"}}}
	reviews := &fakeReviewStore{items: []*models.ReviewItem{{ID: 2, ListingID: 4}}}
	appInstance := &app.App{ListingStore: listings, ReviewStore: reviews}

	reviewDiscardCmd.SetContext(testContext(appInstance))
	err := reviewDiscardCmd.RunE(reviewDiscardCmd, []string{"2"})
	require.NoError(t, err)

	assert.Equal(t, models.ListingStatusReject, listings.statuses[4])
	assert.Equal(t, "discarded", reviews.resolutions[2])
}
