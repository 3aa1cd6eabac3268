package scorer

import (
	"fmt"
	"math"
	"strings"
)

// Severity grades a quality issue.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// Issue is one diagnostic finding from a scoring pass.
type Issue struct {
	Severity Severity `json:"severity"`
	Category string   `json:"category"`
	Message  string   `json:"message"`
}

// Scores holds the four independent sub-scores. Each starts at 100 and is
// decremented by fixed penalties, floored at 0.
type Scores struct {
	ContentQuality int `json:"content_quality"`
	Completeness   int `json:"completeness"`
	Uniqueness     int `json:"uniqueness"`
	SEOReadiness   int `json:"seo_readiness"`
}

// Status is the terminal disposition for a generated listing.
type Status string

const (
	StatusAutoPublish Status = "auto_publish"
	StatusReview      Status = "review"
	StatusReject      Status = "reject"
)

// Thresholds maps overall confidence to a disposition. Expected ordering:
// AutoPublish >= Quarantine >= Reject.
type Thresholds struct {
	AutoPublish int `mapstructure:"auto_publish"`
	Quarantine  int `mapstructure:"quarantine"`
	Reject      int `mapstructure:"reject"`
}

// DefaultThresholds are the stock publish gates; deployments usually
// tighten AutoPublish in config.
var DefaultThresholds = Thresholds{AutoPublish: 75, Quarantine: 60, Reject: 60}

// Input is everything known about one generated listing at scoring time.
type Input struct {
	Title                     string
	Description               string
	MetaDescription           string
	Tags                      []string
	CollectionMatchConfidence int
	HasImages                 bool
	VariantCount              int
	// RecentDescriptions are plain-text bodies of recently published
	// listings, used for the anti-repetition check.
	RecentDescriptions []string
}

// Result is the outcome of one scoring pass.
type Result struct {
	OverallConfidence int     `json:"overall_confidence"`
	Status            Status  `json:"status"`
	Issues            []Issue `json:"issues"`
	Scores            Scores  `json:"quality_scores"`
}

// Boilerplate phrases that make generated copy read like filler. More than
// two of these in one description is a content-quality hit.
var genericPhrases = []string{
	"perfect for",
	"high quality",
	"great gift",
	"must-have",
	"premium quality",
	"look no further",
	"one of a kind",
}

const (
	minTitleLen       = 10
	minDescriptionLen = 100
	maxDescriptionLen = 500
	metaDescMin       = 120
	metaDescMax       = 160
	minTagCount       = 3
	lowMatchCutoff    = 70

	highSimilarity     = 0.6
	moderateSimilarity = 0.4
	similarityWordLen  = 5
)

// Evaluate runs every check against the listing and maps the combined score
// to a disposition. It is pure and total: bad input lowers scores, it never
// errors.
func Evaluate(in Input, th Thresholds) Result {
	var issues []Issue
	content, completeness, uniqueness, seo := 100, 100, 100, 100

	addIssue := func(sev Severity, category, msg string) {
		issues = append(issues, Issue{Severity: sev, Category: category, Message: msg})
	}

	// Completeness.
	if len(in.Title) < minTitleLen {
		completeness -= 30
		addIssue(SeverityCritical, "completeness", fmt.Sprintf("title missing or shorter than %d characters", minTitleLen))
	}
	if len(in.Description) < minDescriptionLen {
		completeness -= 30
		addIssue(SeverityCritical, "completeness", fmt.Sprintf("description missing or shorter than %d characters", minDescriptionLen))
	}
	if !in.HasImages {
		completeness -= 40
		addIssue(SeverityCritical, "completeness", "listing has no images")
	}
	if in.VariantCount == 0 {
		completeness -= 20
		addIssue(SeverityWarning, "completeness", "listing has no variants")
	}

	// SEO readiness.
	if len(in.MetaDescription) > metaDescMax {
		seo -= 15
		addIssue(SeverityWarning, "seo", fmt.Sprintf("meta description longer than %d characters", metaDescMax))
	} else if len(in.MetaDescription) < metaDescMin {
		seo -= 5
		addIssue(SeverityInfo, "seo", fmt.Sprintf("meta description shorter than %d characters", metaDescMin))
	}
	if len(in.Tags) < minTagCount {
		seo -= 15
		addIssue(SeverityWarning, "seo", fmt.Sprintf("fewer than %d tags", minTagCount))
	}

	// Content quality.
	if n := countGenericPhrases(in.Description); n > 2 {
		content -= 20
		addIssue(SeverityWarning, "content_quality", fmt.Sprintf("description uses %d boilerplate phrases", n))
	}
	if len(in.Description) > maxDescriptionLen {
		content -= 5
		addIssue(SeverityInfo, "content_quality", fmt.Sprintf("description longer than %d characters", maxDescriptionLen))
	}
	if in.CollectionMatchConfidence < lowMatchCutoff {
		content -= 15
		addIssue(SeverityWarning, "content_quality", fmt.Sprintf("collection match confidence %d below %d", in.CollectionMatchConfidence, lowMatchCutoff))
	}

	// Uniqueness: word-overlap similarity against recently published copy.
	// A high-similarity hit ends the scan; a moderate hit is noted once and
	// the scan continues only to look for a high-similarity hit.
	moderateSeen := false
	for _, recent := range in.RecentDescriptions {
		sim := wordOverlap(in.Description, recent)
		if sim > highSimilarity {
			uniqueness -= 30
			addIssue(SeverityWarning, "uniqueness", fmt.Sprintf("description %.0f%% similar to a recent listing", sim*100))
			break
		}
		if sim > moderateSimilarity && !moderateSeen {
			moderateSeen = true
			uniqueness -= 10
			addIssue(SeverityInfo, "uniqueness", fmt.Sprintf("description %.0f%% similar to a recent listing", sim*100))
		}
	}

	scores := Scores{
		ContentQuality: clampScore(content),
		Completeness:   clampScore(completeness),
		Uniqueness:     clampScore(uniqueness),
		SEOReadiness:   clampScore(seo),
	}

	avg := float64(scores.ContentQuality+scores.Completeness+scores.Uniqueness+scores.SEOReadiness) / 4
	overall := int(math.Round(avg*0.7 + float64(in.CollectionMatchConfidence)*0.3))
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}

	return Result{
		OverallConfidence: overall,
		Status:            disposition(overall, th),
		Issues:            issues,
		Scores:            scores,
	}
}

// disposition maps confidence to a status; boundaries are inclusive.
func disposition(confidence int, th Thresholds) Status {
	switch {
	case confidence >= th.AutoPublish:
		return StatusAutoPublish
	case confidence >= th.Quarantine:
		return StatusReview
	default:
		return StatusReject
	}
}

func clampScore(s int) int {
	if s < 0 {
		return 0
	}
	return s
}

func countGenericPhrases(description string) int {
	lower := strings.ToLower(description)
	n := 0
	for _, phrase := range genericPhrases {
		if strings.Contains(lower, phrase) {
			n++
		}
	}
	return n
}

// wordOverlap computes case-insensitive word-set similarity between two
// texts: shared words longer than similarityWordLen, divided by the size of
// the smaller word set.
func wordOverlap(a, b string) float64 {
	wordsA := wordSet(a)
	wordsB := wordSet(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	shared := 0
	for w := range wordsA {
		if len(w) <= similarityWordLen {
			continue
		}
		if _, ok := wordsB[w]; ok {
			shared++
		}
	}

	denom := len(wordsA)
	if len(wordsB) < denom {
		denom = len(wordsB)
	}
	return float64(shared) / float64(denom)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}
