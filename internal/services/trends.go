package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

const trendPrompt = `List current search keywords shoppers use for this product.
Product type: %s
Collection: %s
Visual labels: %s
Respond with JSON only: {"keywords": ["..."]} (at most 8 keywords).`

// TrendService asks a completion model for current search keywords. It is
// best-effort: the pipeline tolerates an empty result.
type TrendService struct {
	completer TextCompleter
}

var _ TrendResearcher = (*TrendService)(nil)

func NewTrendService(completer TextCompleter) *TrendService {
	return &TrendService{completer: completer}
}

func (s *TrendService) ResearchKeywords(ctx context.Context, productType, collectionName string, labels []string) ([]string, error) {
	prompt := fmt.Sprintf(trendPrompt, productType, collectionName, strings.Join(labels, ", "))
	content, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("trend research failed: %w", err)
	}

	var parsed struct {
		Keywords []string `json:"keywords"`
	}
	if err := json.Unmarshal([]byte(extractJSON(content)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse trend response as JSON: %w", err)
	}
	return parsed.Keywords, nil
}

// NoopTrendService is used when trend research is disabled in config.
type NoopTrendService struct{}

func NewNoopTrendService() *NoopTrendService { return &NoopTrendService{} }

func (s *NoopTrendService) ResearchKeywords(ctx context.Context, productType, collectionName string, labels []string) ([]string, error) {
	return nil, nil
}
