package services

import (
	"context"

	"listforge/internal/drive"
	"listforge/internal/shopify"
)

// VisionResult is what the vision collaborator extracted from product photos.
type VisionResult struct {
	Labels       []string `json:"labels"`
	DetectedText []string `json:"detected_text"`
	ProductType  string   `json:"product_type"`
}

// VisionAnalyzer turns image bytes into visual/text signals.
type VisionAnalyzer interface {
	AnalyzeImages(ctx context.Context, images [][]byte, folderPath string) (VisionResult, error)
}

// TrendResearcher suggests current search/trend keywords for a product.
type TrendResearcher interface {
	ResearchKeywords(ctx context.Context, productType, collectionName string, labels []string) ([]string, error)
}

// ListingCopy is the generated storefront text for one product.
type ListingCopy struct {
	Title           string   `json:"title"`
	DescriptionHTML string   `json:"description_html"`
	MetaDescription string   `json:"meta_description"`
	Tags            []string `json:"tags"`
	VariantCount    int      `json:"variant_count"`
}

// CopyGenerator produces listing copy from gathered signals.
type CopyGenerator interface {
	GenerateListing(ctx context.Context, req GenerationRequest) (ListingCopy, error)
}

// GenerationRequest carries everything the generator may use.
type GenerationRequest struct {
	FolderPath     string
	ProductType    string
	CollectionName string
	Labels         []string
	DetectedText   []string
	TrendKeywords  []string
}

// TextCompleter is the minimal completion contract both the OpenAI and the
// Gemini providers satisfy.
type TextCompleter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// FolderSource lists and reads product photo folders.
type FolderSource interface {
	ListProductFolders(ctx context.Context) ([]drive.ProductFolder, error)
	DownloadImage(ctx context.Context, object string) ([]byte, error)
	MarkProcessed(ctx context.Context, folder string) error
}

// Publisher pushes listings to the storefront.
type Publisher interface {
	CreateProduct(ctx context.Context, input shopify.ProductInput) (string, error)
	RecentProductDescriptions(ctx context.Context, first int) ([]string, error)
}
