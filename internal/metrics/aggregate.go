// Package metrics rolls per-answer analysis results up into
// organization-level metrics. Aggregation is a pure function of its input:
// recomputable, cacheable, and safe to call from any number of goroutines.
package metrics

import (
	"log"
	"sort"
	"time"

	"github.com/seismohq/seismo/internal/analysis"
	"github.com/seismohq/seismo/internal/forces"
)

// topThemeCount caps the theme frequency list.
const topThemeCount = 20

// ThemeCount is one theme with its occurrence count.
type ThemeCount struct {
	Theme string `json:"theme"`
	Count int    `json:"count"`
}

// DateRange spans the analyzed-at timestamps of the aggregated results.
type DateRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// OrganizationalMetrics is the derived roll-up dashboards consume.
type OrganizationalMetrics struct {
	AverageConfidence     float64                  `json:"average_confidence"`
	AverageForceStrength  float64                  `json:"average_force_strength"`
	AverageSentiment      float64                  `json:"average_sentiment"`
	ForceDistribution     map[forces.ForceType]int `json:"force_distribution"`
	SentimentDistribution map[string]int           `json:"sentiment_distribution"`
	ThemeFrequency        []ThemeCount             `json:"theme_frequency"`
	QualityScore          float64                  `json:"quality_score"`
	TotalResponses        int                      `json:"total_responses"`
	DateRange             DateRange                `json:"date_range"`
}

// Aggregate computes organizational metrics from a set of scored results.
// Empty input yields zero counts and empty maps. Results with out-of-range
// fields are excluded with a warning rather than aborting the computation.
func Aggregate(results []analysis.ScoredResult) OrganizationalMetrics {
	m := OrganizationalMetrics{
		ForceDistribution:     make(map[forces.ForceType]int),
		SentimentDistribution: make(map[string]int),
		ThemeFrequency:        []ThemeCount{},
	}

	themeCounts := make(map[string]int)
	themeFirstSeen := make(map[string]int)

	var (
		confidenceSum int
		strengthSum   int
		sentimentSum  float64
		qualitySum    int
		themeOrder    int
	)

	for i := range results {
		r := &results[i]
		if err := r.Validate(); err != nil {
			log.Printf("metrics: excluding result %s from aggregation: %v", r.ItemID, err)
			continue
		}

		m.TotalResponses++
		confidenceSum += r.Confidence
		strengthSum += r.ForceStrength
		sentimentSum += r.Sentiment.Score
		qualitySum += analysis.QualityWeight(r.Quality)

		m.ForceDistribution[r.PrimaryForce]++
		m.SentimentDistribution[r.Sentiment.Label]++

		for _, theme := range r.Themes {
			if _, seen := themeCounts[theme]; !seen {
				themeFirstSeen[theme] = themeOrder
				themeOrder++
			}
			themeCounts[theme]++
		}

		if m.DateRange.From.IsZero() || r.AnalyzedAt.Before(m.DateRange.From) {
			m.DateRange.From = r.AnalyzedAt
		}
		if r.AnalyzedAt.After(m.DateRange.To) {
			m.DateRange.To = r.AnalyzedAt
		}
	}

	if m.TotalResponses == 0 {
		return m
	}

	n := float64(m.TotalResponses)
	m.AverageConfidence = float64(confidenceSum) / n
	m.AverageForceStrength = float64(strengthSum) / n
	m.AverageSentiment = sentimentSum / n
	m.QualityScore = float64(qualitySum) / n
	m.ThemeFrequency = rankThemes(themeCounts, themeFirstSeen)

	return m
}

// rankThemes orders themes by count descending, breaking ties by
// first-seen order so the ranking is deterministic, truncated to the top
// twenty.
func rankThemes(counts map[string]int, firstSeen map[string]int) []ThemeCount {
	ranked := make([]ThemeCount, 0, len(counts))
	for theme, count := range counts {
		ranked = append(ranked, ThemeCount{Theme: theme, Count: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Theme] < firstSeen[ranked[j].Theme]
	})

	if len(ranked) > topThemeCount {
		ranked = ranked[:topThemeCount]
	}
	return ranked
}
