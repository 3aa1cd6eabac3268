package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listforge/internal/app"
	"listforge/internal/models"
)

func TestListingsCommand(t *testing.T) {
	listings := &fakeListingStore{listings: []*models.Listing{{
		ID:             4,
		FolderPath:     "DTF Designs/Baseball-Team",
		Title:          "Home Run Hero Jersey Print",
		CollectionName: "Baseball DTF Transfers",
		OverallScore:   83,
		Status:         models.ListingStatusPublished,
	}}}
	appInstance := &app.App{ListingStore: listings}

	var out bytes.Buffer
	listingsCmd.SetOut(&out)
	listingsCmd.SetContext(testContext(appInstance))
	require.NoError(t, listingsCmd.Flags().Set("status", "published"))

	err := listingsCmd.RunE(listingsCmd, nil)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Home Run Hero Jersey Print")
	assert.Contains(t, out.String(), "Baseball DTF Transfers")
	// The status filter is passed through to the store.
	assert.Equal(t, "published", listings.lastListArg)
}

func TestJobsCommand(t *testing.T) {
	folder := "DTF Designs/Baseball-Team"
	jobs := &fakeJobStore{jobs: []*models.BackgroundJob{{
		JobID:      uuid.New(),
		TaskType:   "product:process",
		Queue:      "products",
		Status:     "completed",
		FolderPath: &folder,
		CreatedAt:  time.Now(),
	}}}
	appInstance := &app.App{JobStore: jobs}

	var out bytes.Buffer
	jobsCmd.SetOut(&out)
	jobsCmd.SetContext(testContext(appInstance))

	err := jobsCmd.RunE(jobsCmd, nil)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "product:process")
	assert.Contains(t, out.String(), "completed")
}
