package matcher

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Collection is a static catalog entry a product can be routed into.
// Catalogs are reference data: the matcher never mutates them.
type Collection struct {
	ID           string   `mapstructure:"id" json:"id"`
	Name         string   `mapstructure:"name" json:"name"`
	TagsRequired []string `mapstructure:"tags_required" json:"tags_required"`
	Keywords     []string `mapstructure:"keywords" json:"keywords"`
	// Boost is added to the score per matched keyword. Zero means the
	// default of 1.0.
	Boost float64 `mapstructure:"boost" json:"boost,omitempty"`
}

// Signals holds the evidence the pipeline has gathered about one product.
type Signals struct {
	FolderPath   string
	Labels       []string
	DetectedText []string
	ProductType  string
}

// Match is the routing decision for one product.
type Match struct {
	CollectionID    string
	CollectionName  string
	TagsRequired    []string
	Confidence      int // 0-100
	Reasoning       string
	MatchedKeywords []string
}

// FallbackConfidence is returned when no keyword in the catalog matched.
// It sits below any sane auto-publish threshold so unmatched products
// always route to review.
const FallbackConfidence = 30

const channelTagPrefix = "channel:"

// ErrEmptyCatalog is returned when the catalog has no collections at all.
// An empty catalog is a configuration error, not a matching outcome.
var ErrEmptyCatalog = errors.New("collection catalog is empty")

// BestMatch scores every collection in the catalog against the product's
// signals and returns the best fit. It never returns "no match": when
// nothing scores above zero it falls back to the first collection whose
// required tags mention the product type (or the first collection outright)
// at FallbackConfidence.
func BestMatch(catalog []Collection, sig Signals) (Match, error) {
	if len(catalog) == 0 {
		return Match{}, ErrEmptyCatalog
	}

	terms := searchableTerms(sig)
	folderLower := strings.ToLower(sig.FolderPath)
	typeLower := strings.ToLower(strings.TrimSpace(sig.ProductType))

	type scored struct {
		coll    *Collection
		score   float64
		matched []string
	}

	var candidates []scored
	for i := range catalog {
		coll := &catalog[i]
		boost := coll.Boost
		if boost == 0 {
			boost = 1.0
		}

		var score float64
		var matched []string
		for _, kw := range coll.Keywords {
			kwLower := strings.ToLower(kw)
			for _, term := range terms {
				// Bidirectional containment tolerates partial OCR and
				// label noise ("baseballs" vs "baseball").
				if strings.Contains(kwLower, term) || strings.Contains(term, kwLower) {
					score += boost
					matched = append(matched, kw)
					break
				}
			}
		}

		// Channel bonus: folder names the product type and the collection
		// carries a channel tag for it.
		if typeLower != "" && strings.Contains(folderLower, typeLower) {
			for _, tag := range coll.TagsRequired {
				tagLower := strings.ToLower(tag)
				if strings.HasPrefix(tagLower, channelTagPrefix) &&
					strings.Contains(strings.TrimPrefix(tagLower, channelTagPrefix), typeLower) {
					score += 2
					matched = append(matched, "channel match")
					break
				}
			}
		}

		if score > 0 {
			candidates = append(candidates, scored{coll: coll, score: score, matched: matched})
		}
	}

	if len(candidates) == 0 {
		fb := fallbackCollection(catalog, typeLower)
		return Match{
			CollectionID:   fb.ID,
			CollectionName: fb.Name,
			TagsRequired:   fb.TagsRequired,
			Confidence:     FallbackConfidence,
			Reasoning:      fmt.Sprintf("no keyword matches; defaulted to %q", fb.Name),
		}, nil
	}

	// Stable sort keeps catalog order as the tie-break so identical inputs
	// always produce identical results.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	top := candidates[0]
	keywordCount := len(top.coll.Keywords)
	confidence := 100
	if keywordCount > 0 {
		confidence = int(math.Round(top.score / float64(keywordCount) * 100))
	}
	if confidence > 100 {
		confidence = 100
	}

	return Match{
		CollectionID:    top.coll.ID,
		CollectionName:  top.coll.Name,
		TagsRequired:    top.coll.TagsRequired,
		Confidence:      confidence,
		Reasoning:       reasoning(top.matched, top.score, keywordCount),
		MatchedKeywords: top.matched,
	}, nil
}

// searchableTerms builds the lowercased evidence set: labels, folder path
// fragments, detected text, and the product type.
func searchableTerms(sig Signals) []string {
	var terms []string
	seen := make(map[string]struct{})
	add := func(t string) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}

	for _, l := range sig.Labels {
		add(l)
	}
	for _, hint := range FolderHints(sig.FolderPath) {
		add(hint)
	}
	for _, txt := range sig.DetectedText {
		add(txt)
	}
	add(sig.ProductType)
	return terms
}

// FolderHints tokenizes a storage folder path into matchable terms: each
// path segment is split on whitespace, hyphens, and underscores, and only
// tokens longer than 2 characters survive.
func FolderHints(folderPath string) []string {
	var hints []string
	for _, segment := range strings.Split(folderPath, "/") {
		tokens := strings.FieldsFunc(segment, func(r rune) bool {
			return r == ' ' || r == '\t' || r == '-' || r == '_'
		})
		for _, tok := range tokens {
			if len(tok) > 2 {
				hints = append(hints, strings.ToLower(tok))
			}
		}
	}
	return hints
}

func fallbackCollection(catalog []Collection, typeLower string) *Collection {
	if typeLower != "" {
		for i := range catalog {
			for _, tag := range catalog[i].TagsRequired {
				if strings.Contains(strings.ToLower(tag), typeLower) {
					return &catalog[i]
				}
			}
		}
	}
	return &catalog[0]
}

func reasoning(matched []string, score float64, keywordCount int) string {
	shown := matched
	if len(shown) > 3 {
		shown = shown[:3]
	}
	return fmt.Sprintf("matched %s (score %.1f/%d keywords)",
		strings.Join(shown, ", "), score, keywordCount)
}
