package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCompleter struct {
	response string
	err      error
	prompt   string
}

func (s *staticCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.response, s.err
}

func TestGenerateListing(t *testing.T) {
	completer := &staticCompleter{response: "```json\n" + `{
		"title": "  Home Run Hero Jersey Print ",
		"description_html": "<p>A bold print.</p>",
		"meta_description": "Short meta.",
		"tags": ["Baseball", "baseball", " DTF ", ""],
		"variant_count": 3
	}` + "\n```"}

	svc, err := NewGenerationService(completer)
	require.NoError(t, err)

	copy, err := svc.GenerateListing(context.Background(), GenerationRequest{
		FolderPath:     "DTF Designs/Baseball-Team",
		ProductType:    "DTF",
		CollectionName: "Baseball DTF Transfers",
		Labels:         []string{"baseball"},
		TrendKeywords:  []string{"game day shirts"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Home Run Hero Jersey Print", copy.Title)
	assert.Equal(t, []string{"baseball", "dtf"}, copy.Tags)
	assert.Equal(t, 3, copy.VariantCount)
	// The prompt carries the gathered signals.
	assert.Contains(t, completer.prompt, "Baseball DTF Transfers")
	assert.Contains(t, completer.prompt, "game day shirts")
}

func TestGenerateListingBadJSON(t *testing.T) {
	svc, err := NewGenerationService(&staticCompleter{response: "sorry, I cannot do that"})
	require.NoError(t, err)

	_, err = svc.GenerateListing(context.Background(), GenerationRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse generation response")
}

func TestTrimMetaSentenceBoundary(t *testing.T) {
	svc, err := NewGenerationService(&staticCompleter{})
	require.NoError(t, err)

	sentence := "This is a meta description sentence about a product that sells." // 64 chars
	meta := sentence + " " + sentence + " " + sentence                        // 194 chars

	trimmed := svc.trimMeta(meta)
	assert.LessOrEqual(t, len(trimmed), 160)
	assert.True(t, strings.HasSuffix(trimmed, "."))
	assert.Contains(t, trimmed, "sentence about a product")
}

func TestTrimMetaWordBoundaryFallback(t *testing.T) {
	svc, err := NewGenerationService(&staticCompleter{})
	require.NoError(t, err)

	meta := strings.TrimSpace(strings.Repeat("wordy ", 40)) // 239 chars, no sentence break

	trimmed := svc.trimMeta(meta)
	assert.LessOrEqual(t, len(trimmed), 160)
	assert.False(t, strings.HasSuffix(trimmed, " "))
}

func TestTrimMetaShortUntouched(t *testing.T) {
	svc, err := NewGenerationService(&staticCompleter{})
	require.NoError(t, err)

	meta := strings.Repeat("y", 140)
	assert.Equal(t, meta, svc.trimMeta(meta))
}

func TestTrendServiceParsesKeywords(t *testing.T) {
	svc := NewTrendService(&staticCompleter{response: `{"keywords": ["game day", "team spirit"]}`})

	keywords, err := svc.ResearchKeywords(context.Background(), "DTF", "Baseball DTF Transfers", []string{"baseball"})
	require.NoError(t, err)
	assert.Equal(t, []string{"game day", "team spirit"}, keywords)
}
