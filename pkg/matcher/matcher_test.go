package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() []Collection {
	return []Collection{
		{
			ID:           "dtf-baseball",
			Name:         "Baseball DTF Transfers",
			TagsRequired: []string{"channel:dtf", "sport:baseball"},
			Keywords:     []string{"baseball", "dtf"},
		},
		{
			ID:           "dtf-football",
			Name:         "Football DTF Transfers",
			TagsRequired: []string{"channel:dtf", "sport:football"},
			Keywords:     []string{"football", "touchdown", "gridiron"},
		},
		{
			ID:           "mugs",
			Name:         "Ceramic Mugs",
			TagsRequired: []string{"channel:pod"},
			Keywords:     []string{"mug", "coffee", "ceramic"},
		},
	}
}

func TestBestMatchEmptyCatalog(t *testing.T) {
	_, err := BestMatch(nil, Signals{ProductType: "DTF"})
	require.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestBestMatchKeywordAndChannel(t *testing.T) {
	m, err := BestMatch(testCatalog(), Signals{
		FolderPath:  "DTF Designs/Baseball-Team",
		Labels:      []string{"baseball", "jersey"},
		ProductType: "DTF",
	})
	require.NoError(t, err)

	assert.Equal(t, "dtf-baseball", m.CollectionID)
	assert.Equal(t, 100, m.Confidence)
	assert.Contains(t, m.MatchedKeywords, "baseball")
	assert.Contains(t, m.MatchedKeywords, "dtf")
	assert.Contains(t, m.MatchedKeywords, "channel match")
}

func TestBestMatchFallback(t *testing.T) {
	tests := []struct {
		name       string
		sig        Signals
		expectedID string
	}{
		{
			name:       "falls back to collection whose tags mention the product type",
			sig:        Signals{FolderPath: "Misc/Unsorted", Labels: []string{"zzzzz"}, ProductType: "pod"},
			expectedID: "mugs",
		},
		{
			name:       "falls back to first collection when nothing mentions the type",
			sig:        Signals{Labels: []string{"qqqqq"}, ProductType: "sticker"},
			expectedID: "dtf-baseball",
		},
		{
			name:       "empty signals still land somewhere",
			sig:        Signals{},
			expectedID: "dtf-baseball",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := BestMatch(testCatalog(), tt.sig)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedID, m.CollectionID)
			assert.Equal(t, FallbackConfidence, m.Confidence)
			assert.Empty(t, m.MatchedKeywords)
		})
	}
}

func TestBestMatchDeterministic(t *testing.T) {
	sig := Signals{
		FolderPath:   "DTF Designs/Coffee-Lovers",
		Labels:       []string{"mug", "coffee cup"},
		DetectedText: []string{"World's Best Dad"},
		ProductType:  "POD",
	}

	first, err := BestMatch(testCatalog(), sig)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := BestMatch(testCatalog(), sig)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBestMatchConfidenceRange(t *testing.T) {
	sigs := []Signals{
		{},
		{Labels: []string{"baseball"}},
		{Labels: []string{"baseball", "dtf", "mug", "coffee", "football"}, FolderPath: "DTF/all-the-things", ProductType: "DTF"},
		{DetectedText: []string{"gridiron legends"}},
	}
	for _, sig := range sigs {
		m, err := BestMatch(testCatalog(), sig)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, m.Confidence, 0)
		assert.LessOrEqual(t, m.Confidence, 100)
	}
}

func TestBestMatchBoost(t *testing.T) {
	catalog := []Collection{
		{ID: "plain", Name: "Plain", Keywords: []string{"shirt", "tee"}},
		{ID: "boosted", Name: "Boosted", Keywords: []string{"shirt", "apparel"}, Boost: 2.0},
	}
	m, err := BestMatch(catalog, Signals{Labels: []string{"shirt"}})
	require.NoError(t, err)
	assert.Equal(t, "boosted", m.CollectionID)
}

func TestBestMatchPartialContainment(t *testing.T) {
	// OCR noise: "baseballs" should still hit the "baseball" keyword.
	m, err := BestMatch(testCatalog(), Signals{DetectedText: []string{"baseballs"}})
	require.NoError(t, err)
	assert.Equal(t, "dtf-baseball", m.CollectionID)
	assert.Contains(t, m.MatchedKeywords, "baseball")
}

func TestFolderHints(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected []string
	}{
		{
			name:     "splits on slash, hyphen, underscore and space",
			path:     "DTF Designs/Baseball-Team_2024",
			expected: []string{"dtf", "designs", "baseball", "team", "2024"},
		},
		{
			name:     "drops tokens of two characters or fewer",
			path:     "ab/c d-efg",
			expected: []string{"efg"},
		},
		{
			name:     "empty path",
			path:     "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FolderHints(tt.path))
		})
	}
}
