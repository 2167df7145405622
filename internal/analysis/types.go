// Package analysis runs classified survey answers through an LLM provider
// and collects per-item scores. Item failures are values, not panics: a
// batch always produces a summary plus disjoint result and failure sets.
package analysis

import (
	"fmt"
	"time"

	"github.com/seismohq/seismo/internal/forces"
	"github.com/seismohq/seismo/internal/llm"
)

// QualityLabel is a coarse rating of how useful an answer was for analysis.
type QualityLabel string

const (
	QualityPoor      QualityLabel = "poor"
	QualityFair      QualityLabel = "fair"
	QualityGood      QualityLabel = "good"
	QualityExcellent QualityLabel = "excellent"
)

// QualityWeight maps a quality label to its numeric weight (poor=1 through
// excellent=4). Unknown labels weigh 0.
func QualityWeight(q QualityLabel) int {
	switch q {
	case QualityPoor:
		return 1
	case QualityFair:
		return 2
	case QualityGood:
		return 3
	case QualityExcellent:
		return 4
	}
	return 0
}

// Sentiment holds a score in [-1, 1] and its coarse label.
type Sentiment struct {
	Score float64 `json:"score"`
	Label string  `json:"label"`
}

// SentimentLabel derives the coarse label from a score.
func SentimentLabel(score float64) string {
	switch {
	case score > 0.2:
		return "positive"
	case score < -0.2:
		return "negative"
	default:
		return "neutral"
	}
}

// ScoredResult is the analysis of one answer. Produced exactly once per
// successfully analyzed request; immutable.
type ScoredResult struct {
	ItemID          string             `json:"item_id"`
	PrimaryForce    forces.ForceType   `json:"primary_force"`
	SecondaryForces []forces.ForceType `json:"secondary_forces,omitempty"`
	ForceStrength   int                `json:"force_strength"` // 1-5
	Confidence      int                `json:"confidence"`     // 1-5
	Sentiment       Sentiment          `json:"sentiment"`
	Themes          []string           `json:"themes,omitempty"`
	Quality         QualityLabel       `json:"quality"`
	Reasoning       string             `json:"reasoning,omitempty"`
	AnalyzedAt      time.Time          `json:"analyzed_at"`
}

// Validate checks the result's fields against the model's ranges.
func (r *ScoredResult) Validate() error {
	if r.ItemID == "" {
		return fmt.Errorf("missing item id")
	}
	if !forces.Valid(r.PrimaryForce) {
		return fmt.Errorf("invalid primary force %q", r.PrimaryForce)
	}
	if r.ForceStrength < 1 || r.ForceStrength > 5 {
		return fmt.Errorf("force strength %d out of range 1-5", r.ForceStrength)
	}
	if r.Confidence < 1 || r.Confidence > 5 {
		return fmt.Errorf("confidence %d out of range 1-5", r.Confidence)
	}
	if r.Sentiment.Score < -1 || r.Sentiment.Score > 1 {
		return fmt.Errorf("sentiment score %v out of range [-1,1]", r.Sentiment.Score)
	}
	if QualityWeight(r.Quality) == 0 {
		return fmt.Errorf("invalid quality label %q", r.Quality)
	}
	return nil
}

// Failure records an item that produced no ScoredResult after the retry
// budget was spent.
type Failure struct {
	ItemID  string        `json:"item_id"`
	Kind    llm.ErrorKind `json:"kind"`
	Message string        `json:"message"`
}

// BatchSummary is derived from a batch run, never independently mutated.
// Cost and tokens sum over every attempt including retries.
type BatchSummary struct {
	TotalRequested int     `json:"total_requested"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	TotalCostCents float64 `json:"total_cost_cents"`
	TotalTokens    int     `json:"total_tokens"`
	WallClockMs    int64   `json:"wall_clock_ms"`
}

// Attempt carries the usage accounting of one provider call, whether it
// succeeded or not.
type Attempt struct {
	Model        string
	InputTokens  int
	OutputTokens int
	CostCents    float64
	LatencyMs    int64
}

// Tokens returns the attempt's total token count.
func (a Attempt) Tokens() int {
	return a.InputTokens + a.OutputTokens
}
