package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/seismohq/seismo/internal/forces"
	"github.com/seismohq/seismo/internal/llm"
)

// Adapter scores one request against the upstream provider. The batch
// runner depends only on this interface; Scorer is the production
// implementation.
type Adapter interface {
	Score(ctx context.Context, req forces.Request) (*ScoredResult, Attempt, error)
	Name() string
}

// Scorer sends classified answers to an LLM and parses the structured score.
type Scorer struct {
	provider llm.Provider
	model    string
}

// NewScorer creates a Scorer on top of the given provider.
func NewScorer(provider llm.Provider, model string) *Scorer {
	return &Scorer{provider: provider, model: model}
}

func (s *Scorer) Name() string {
	return s.provider.Name()
}

// Score performs one provider call. The returned Attempt always carries
// whatever usage the call consumed, even when the call failed, so every
// attempt can be recorded in the ledger.
func (s *Scorer) Score(ctx context.Context, req forces.Request) (*ScoredResult, Attempt, error) {
	start := time.Now()

	resp, err := s.provider.Complete(ctx, llm.Request{
		Model:       s.model,
		System:      systemPrompt,
		Prompt:      buildScorePrompt(req),
		MaxTokens:   1024,
		Temperature: 0.1,
		JSON:        true,
	})

	attempt := Attempt{
		Model:     s.model,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		return nil, attempt, err
	}

	attempt.Model = resp.Model
	attempt.InputTokens = resp.InputTokens
	attempt.OutputTokens = resp.OutputTokens
	attempt.CostCents = llm.CostCents(resp.Model, resp.InputTokens, resp.OutputTokens)

	result, err := parseScore(resp.Text)
	if err != nil {
		return nil, attempt, &llm.ProviderError{
			Provider:  s.provider.Name(),
			Kind:      llm.ErrMalformed,
			Retryable: false,
			Err:       err,
		}
	}

	result.ItemID = req.ItemID
	result.AnalyzedAt = time.Now().UTC()
	normalizeScore(result, req.ExpectedForce)
	return result, attempt, nil
}

// parseScore parses an LLM JSON response into a ScoredResult.
func parseScore(raw string) (*ScoredResult, error) {
	raw = strings.TrimSpace(raw)

	// Strip markdown code fences if present.
	if strings.HasPrefix(raw, "```") {
		lines := strings.Split(raw, "\n")
		if len(lines) >= 2 {
			start := 1
			end := len(lines)
			if strings.TrimSpace(lines[end-1]) == "```" {
				end--
			}
			raw = strings.Join(lines[start:end], "\n")
		}
	}

	var result ScoredResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("json parse: %w", err)
	}
	return &result, nil
}

// normalizeScore clamps out-of-range fields and fills derivable gaps so a
// sloppy model response still yields a valid result. A missing primary
// force falls back to the classifier's expectation.
func normalizeScore(r *ScoredResult, expected forces.ForceType) {
	if !forces.Valid(r.PrimaryForce) {
		r.PrimaryForce = expected
	}

	secondary := r.SecondaryForces[:0]
	for _, f := range r.SecondaryForces {
		if forces.Valid(f) && f != r.PrimaryForce {
			secondary = append(secondary, f)
		}
	}
	r.SecondaryForces = secondary

	r.ForceStrength = clampInt(r.ForceStrength, 1, 5)
	r.Confidence = clampInt(r.Confidence, 1, 5)

	if r.Sentiment.Score > 1 {
		r.Sentiment.Score = 1
	} else if r.Sentiment.Score < -1 {
		r.Sentiment.Score = -1
	}
	if r.Sentiment.Label == "" {
		r.Sentiment.Label = SentimentLabel(r.Sentiment.Score)
	}

	if QualityWeight(r.Quality) == 0 {
		r.Quality = QualityFair
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
