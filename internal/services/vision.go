package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"
)

const visionPrompt = `You are labeling product photos for an e-commerce pipeline.
Look at the attached photos from the folder %q and respond with JSON only:
{"labels": ["..."], "detected_text": ["..."], "product_type": "..."}
- labels: short visual subject labels (objects, themes, styles)
- detected_text: any readable text printed on the product
- product_type: a one-or-two word product category guess`

// maxVisionImages caps how many photos of a folder are sent per request.
const maxVisionImages = 4

// OpenAIVisionService extracts labels, printed text, and a product-type
// guess from product photos via multimodal chat completion.
type OpenAIVisionService struct {
	client *openai.Client
	model  string
}

var _ VisionAnalyzer = (*OpenAIVisionService)(nil)

func NewOpenAIVisionService(apiKey, model string) (*OpenAIVisionService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for vision analysis")
	}
	return &OpenAIVisionService{client: openai.NewClient(apiKey), model: model}, nil
}

func (s *OpenAIVisionService) AnalyzeImages(ctx context.Context, images [][]byte, folderPath string) (VisionResult, error) {
	if len(images) == 0 {
		return VisionResult{}, fmt.Errorf("no images to analyze for folder %q", folderPath)
	}
	if len(images) > maxVisionImages {
		images = images[:maxVisionImages]
	}

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: fmt.Sprintf(visionPrompt, folderPath)},
	}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL:    dataURL(img),
				Detail: openai.ImageURLDetailLow,
			},
		})
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return VisionResult{}, fmt.Errorf("vision completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return VisionResult{}, fmt.Errorf("no choices returned from vision model")
	}

	var result VisionResult
	content := extractJSON(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return VisionResult{}, fmt.Errorf("failed to parse vision response as JSON: %w (content: %s)", err, content)
	}
	if result.ProductType == "" {
		log.Warnf("Vision model returned no product type for folder %q", folderPath)
	}
	return result, nil
}

func dataURL(img []byte) string {
	mime := http.DetectContentType(img)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img))
}

// extractJSON trims markdown code fences models like to wrap JSON in.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}
