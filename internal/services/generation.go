package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
	log "github.com/sirupsen/logrus"
)

const generationPrompt = `Write e-commerce listing copy for a product.
Folder: %s
Product type: %s
Collection: %s
Visual labels: %s
Text printed on the product: %s
Trend keywords to work in naturally: %s

Respond with JSON only:
{"title": "...", "description_html": "<p>...</p>", "meta_description": "...", "tags": ["..."], "variant_count": 1}
- title: 10-70 characters, no quotes
- description_html: 100-500 characters of valid HTML
- meta_description: 120-160 characters of plain text
- tags: 3-10 lowercase tags
- variant_count: how many size/color variants the copy implies (at least 1)`

// metaDescriptionLimit is the SEO ceiling the scorer penalizes above.
const metaDescriptionLimit = 160

// GenerationService produces listing copy through a TextCompleter and
// normalizes the result (sentence-aware meta description trimming,
// tag cleanup).
type GenerationService struct {
	completer TextCompleter
	tokenizer *sentences.DefaultSentenceTokenizer
}

var _ CopyGenerator = (*GenerationService)(nil)

func NewGenerationService(completer TextCompleter) (*GenerationService, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("init sentence tokenizer: %w", err)
	}
	return &GenerationService{completer: completer, tokenizer: tokenizer}, nil
}

func (s *GenerationService) GenerateListing(ctx context.Context, req GenerationRequest) (ListingCopy, error) {
	prompt := fmt.Sprintf(generationPrompt,
		req.FolderPath,
		req.ProductType,
		req.CollectionName,
		strings.Join(req.Labels, ", "),
		strings.Join(req.DetectedText, ", "),
		strings.Join(req.TrendKeywords, ", "),
	)

	content, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return ListingCopy{}, fmt.Errorf("listing generation failed: %w", err)
	}

	var copy ListingCopy
	if err := json.Unmarshal([]byte(extractJSON(content)), &copy); err != nil {
		return ListingCopy{}, fmt.Errorf("failed to parse generation response as JSON: %w (content: %s)", err, content)
	}

	copy.Title = strings.TrimSpace(copy.Title)
	copy.MetaDescription = s.trimMeta(strings.TrimSpace(copy.MetaDescription))
	copy.Tags = cleanTags(copy.Tags)
	if copy.VariantCount < 0 {
		copy.VariantCount = 0
	}
	return copy, nil
}

// trimMeta cuts an overlong meta description back at a sentence boundary,
// falling back to a word boundary when even the first sentence is too long.
func (s *GenerationService) trimMeta(meta string) string {
	if len(meta) <= metaDescriptionLimit {
		return meta
	}

	var b strings.Builder
	for _, sent := range s.tokenizer.Tokenize(meta) {
		text := strings.TrimSpace(sent.Text)
		if b.Len()+len(text)+1 > metaDescriptionLimit {
			break
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(text)
	}
	if b.Len() > 0 {
		return b.String()
	}

	// First sentence alone exceeds the limit; cut at the last word that fits.
	log.Debug("Meta description had no sentence boundary under the limit, cutting at word boundary")
	cut := meta[:metaDescriptionLimit]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut)
}

func cleanTags(tags []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
