package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"listforge/internal/drive"
	"listforge/internal/models"
	"listforge/internal/shopify"
	"listforge/internal/store"
	"listforge/internal/util"
	"listforge/pkg/matcher"
	"listforge/pkg/scorer"
)

// PipelineDeps bundles everything the pipeline orchestrator needs.
type PipelineDeps struct {
	Folders   FolderSource
	Vision    VisionAnalyzer
	Trends    TrendResearcher
	Generator CopyGenerator
	Publisher Publisher

	Listings store.ListingStore
	Runs     store.RunStore
	Reviews  store.ReviewStore

	Catalog      []matcher.Collection
	Thresholds   scorer.Thresholds
	RecentWindow int
}

// PipelineService runs the scan → analyze → match → generate → score →
// publish flow for product folders.
type PipelineService struct {
	deps PipelineDeps
}

func NewPipelineService(deps PipelineDeps) (*PipelineService, error) {
	if len(deps.Catalog) == 0 {
		return nil, matcher.ErrEmptyCatalog
	}
	if deps.RecentWindow <= 0 {
		deps.RecentWindow = 20
	}
	return &PipelineService{deps: deps}, nil
}

// RunOnce scans the storage prefix and processes every unprocessed folder
// inline. Folder-level failures are counted, logged, and do not abort the
// run.
func (p *PipelineService) RunOnce(ctx context.Context, trigger string) (*models.PipelineRun, error) {
	run := &models.PipelineRun{RunID: uuid.New(), Trigger: trigger}
	if err := p.deps.Runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create pipeline run: %w", err)
	}

	folders, err := p.deps.Folders.ListProductFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list product folders: %w", err)
	}
	run.FoldersSeen = len(folders)
	log.Infof("Pipeline run %s: %d unprocessed folders", run.RunID, len(folders))

	for _, folder := range folders {
		outcome, err := p.ProcessFolder(ctx, folder, &run.RunID)
		if err != nil {
			log.Errorf("Folder %q failed: %v", folder.Path, err)
			run.Failed++
			continue
		}
		run.Processed++
		switch outcome {
		case models.ListingStatusPublished:
			run.Published++
		case models.ListingStatusReview:
			run.Queued++
		case models.ListingStatusReject:
			run.Rejected++
		}
	}

	if err := p.deps.Runs.FinishRun(ctx, run); err != nil {
		log.Errorf("Failed to finalize run %s: %v", run.RunID, err)
	}
	return run, nil
}

// EnqueueScan lists unprocessed folders and hands each to the job queue.
func (p *PipelineService) EnqueueScan(ctx context.Context, jobs store.JobClient) (int, error) {
	folders, err := p.deps.Folders.ListProductFolders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list product folders: %w", err)
	}
	enqueued := 0
	for _, folder := range folders {
		if err := jobs.EnqueueProductJob(ctx, folder.Path); err != nil {
			log.Errorf("Failed to enqueue folder %q: %v", folder.Path, err)
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// ProcessFolderByPath rebuilds the folder's object list and processes it.
// Used by the worker, which only receives the folder path in its payload.
func (p *PipelineService) ProcessFolderByPath(ctx context.Context, folderPath string) (string, error) {
	folders, err := p.deps.Folders.ListProductFolders(ctx)
	if err != nil {
		return "", fmt.Errorf("list product folders: %w", err)
	}
	for _, folder := range folders {
		if folder.Path == folderPath {
			return p.ProcessFolder(ctx, folder, nil)
		}
	}
	// Already processed (marker written) or removed since the scan.
	log.Infof("Folder %q no longer pending, skipping", folderPath)
	return "", nil
}

// ProcessFolder runs the full pipeline for one folder and returns the
// listing's final status.
func (p *PipelineService) ProcessFolder(ctx context.Context, folder drive.ProductFolder, runID *uuid.UUID) (string, error) {
	if len(folder.Objects) == 0 {
		return "", fmt.Errorf("folder %q has no images", folder.Path)
	}

	// Guard against a folder whose listing exists but whose processed
	// marker was never written (crash between the two).
	if existing, err := p.deps.Listings.GetListingByFolder(ctx, folder.Path); err == nil {
		log.Warnf("Folder %q already has listing %d (%s), skipping", folder.Path, existing.ID, existing.Status)
		if err := p.deps.Folders.MarkProcessed(ctx, folder.Path); err != nil {
			log.Errorf("Failed to mark folder %q processed: %v", folder.Path, err)
		}
		return existing.Status, nil
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("check existing listing for %q: %w", folder.Path, err)
	}

	images, err := p.downloadImages(ctx, folder)
	if err != nil {
		return "", err
	}

	vision, err := p.deps.Vision.AnalyzeImages(ctx, images, folder.Path)
	if err != nil {
		return "", fmt.Errorf("vision analysis for %q: %w", folder.Path, err)
	}

	match, err := matcher.BestMatch(p.deps.Catalog, matcher.Signals{
		FolderPath:   folder.Path,
		Labels:       vision.Labels,
		DetectedText: vision.DetectedText,
		ProductType:  vision.ProductType,
	})
	if err != nil {
		return "", fmt.Errorf("collection match for %q: %w", folder.Path, err)
	}
	log.Infof("Folder %q matched collection %q at confidence %d (%s)",
		folder.Path, match.CollectionName, match.Confidence, match.Reasoning)

	trendKeywords, err := p.deps.Trends.ResearchKeywords(ctx, vision.ProductType, match.CollectionName, vision.Labels)
	if err != nil {
		// Trend research is garnish; generation works without it.
		log.Warnf("Trend research for %q failed: %v", folder.Path, err)
	}

	copy, err := p.deps.Generator.GenerateListing(ctx, GenerationRequest{
		FolderPath:     folder.Path,
		ProductType:    vision.ProductType,
		CollectionName: match.CollectionName,
		Labels:         vision.Labels,
		DetectedText:   vision.DetectedText,
		TrendKeywords:  trendKeywords,
	})
	if err != nil {
		return "", fmt.Errorf("listing generation for %q: %w", folder.Path, err)
	}

	tags := mergeTags(copy.Tags, match.TagsRequired)
	plainDescription := util.StripHTML(copy.DescriptionHTML)

	result := scorer.Evaluate(scorer.Input{
		Title:                     copy.Title,
		Description:               plainDescription,
		MetaDescription:           copy.MetaDescription,
		Tags:                      tags,
		CollectionMatchConfidence: match.Confidence,
		HasImages:                 len(images) > 0,
		VariantCount:              copy.VariantCount,
		RecentDescriptions:        p.recentDescriptions(ctx),
	}, p.deps.Thresholds)
	log.Infof("Folder %q scored %d → %s (%d issues)",
		folder.Path, result.OverallConfidence, result.Status, len(result.Issues))

	listing := p.buildListing(folder, runID, vision, match, copy, plainDescription, tags, result)
	if err := p.deps.Listings.CreateListing(ctx, listing); err != nil {
		return "", fmt.Errorf("persist listing for %q: %w", folder.Path, err)
	}

	status, err := p.dispatch(ctx, listing, copy, tags, result)
	if err != nil {
		return status, err
	}

	if err := p.deps.Folders.MarkProcessed(ctx, folder.Path); err != nil {
		log.Errorf("Failed to mark folder %q processed: %v", folder.Path, err)
	}
	return status, nil
}

func (p *PipelineService) downloadImages(ctx context.Context, folder drive.ProductFolder) ([][]byte, error) {
	var images [][]byte
	for _, object := range folder.Objects {
		data, err := p.deps.Folders.DownloadImage(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("download %q: %w", object, err)
		}
		images = append(images, data)
	}
	return images, nil
}

// recentDescriptions prefers local publish history and falls back to the
// storefront for a cold store.
func (p *PipelineService) recentDescriptions(ctx context.Context) []string {
	recents, err := p.deps.Listings.RecentPublishedDescriptions(ctx, p.deps.RecentWindow)
	if err != nil {
		log.Warnf("Failed to load recent descriptions: %v", err)
		return nil
	}
	if len(recents) > 0 {
		return recents
	}

	recents, err = p.deps.Publisher.RecentProductDescriptions(ctx, p.deps.RecentWindow)
	if err != nil {
		log.Warnf("Failed to fetch storefront descriptions: %v", err)
		return nil
	}
	return recents
}

func (p *PipelineService) buildListing(folder drive.ProductFolder, runID *uuid.UUID, vision VisionResult,
	match matcher.Match, copy ListingCopy, plainDescription string, tags []string, result scorer.Result) *models.Listing {

	scoresJSON, _ := json.Marshal(result.Scores)
	issuesJSON, _ := json.Marshal(result.Issues)
	return &models.Listing{
		RunID:           runID,
		FolderPath:      folder.Path,
		Title:           copy.Title,
		Description:     plainDescription,
		DescriptionHTML: copy.DescriptionHTML,
		MetaDescription: copy.MetaDescription,
		Tags:            tags,
		ProductType:     vision.ProductType,
		CollectionID:    match.CollectionID,
		CollectionName:  match.CollectionName,
		MatchConfidence: match.Confidence,
		MatchReasoning:  match.Reasoning,
		OverallScore:    result.OverallConfidence,
		Status:          string(result.Status),
		QualityScores:   scoresJSON,
		Issues:          issuesJSON,
		ImageCount:      len(folder.Objects),
	}
}

// dispatch acts on the disposition: publish, queue for review, or leave the
// rejection on record.
func (p *PipelineService) dispatch(ctx context.Context, listing *models.Listing, copy ListingCopy,
	tags []string, result scorer.Result) (string, error) {

	switch result.Status {
	case scorer.StatusAutoPublish:
		shopifyID, err := p.deps.Publisher.CreateProduct(ctx, shopify.ProductInput{
			Title:           copy.Title,
			DescriptionHTML: copy.DescriptionHTML,
			ProductType:     listing.ProductType,
			Tags:            tags,
			SEODescription:  copy.MetaDescription,
		})
		if err != nil {
			if updErr := p.deps.Listings.UpdateListingStatus(ctx, listing.ID, models.ListingStatusFailed, nil); updErr != nil {
				log.Errorf("Failed to record publish failure for listing %d: %v", listing.ID, updErr)
			}
			return models.ListingStatusFailed, fmt.Errorf("publish listing %d: %w", listing.ID, err)
		}
		if err := p.deps.Listings.UpdateListingStatus(ctx, listing.ID, models.ListingStatusPublished, &shopifyID); err != nil {
			return models.ListingStatusPublished, fmt.Errorf("record publish of listing %d: %w", listing.ID, err)
		}
		return models.ListingStatusPublished, nil

	case scorer.StatusReview:
		item := &models.ReviewItem{
			ListingID: listing.ID,
			Reason:    reviewReason(result),
		}
		if err := p.deps.Reviews.CreateReviewItem(ctx, item); err != nil {
			return models.ListingStatusReview, fmt.Errorf("queue listing %d for review: %w", listing.ID, err)
		}
		return models.ListingStatusReview, nil

	default:
		return models.ListingStatusReject, nil
	}
}

func reviewReason(result scorer.Result) string {
	for _, issue := range result.Issues {
		if issue.Severity == scorer.SeverityCritical || issue.Severity == scorer.SeverityWarning {
			return issue.Message
		}
	}
	return fmt.Sprintf("confidence %d below auto-publish threshold", result.OverallConfidence)
}

func mergeTags(generated, required []string) []string {
	return cleanTags(append(append([]string{}, generated...), required...))
}
