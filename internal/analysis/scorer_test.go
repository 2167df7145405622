package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/seismohq/seismo/internal/forces"
	"github.com/seismohq/seismo/internal/llm"
)

// stubProvider returns a fixed completion.
type stubProvider struct {
	text string
	err  error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{
		Text:         s.text,
		InputTokens:  100,
		OutputTokens: 50,
		Model:        "gpt-4o-mini",
		StopReason:   "stop",
	}, nil
}

const goodScoreJSON = `{
	"primary_force": "pain_of_old",
	"secondary_forces": ["anxiety_of_new"],
	"force_strength": 4,
	"confidence": 5,
	"sentiment": {"score": -0.6, "label": "negative"},
	"themes": ["manual work", "reporting"],
	"quality": "good",
	"reasoning": "The answer describes frustration with current processes."
}`

func testRequest() forces.Request {
	return forces.Request{
		ItemID:        "q1:r1",
		QuestionText:  "What slows you down today?",
		ExpectedForce: forces.PainOfOld,
		AnswerText:    "Everything is manual.",
	}
}

func TestScorerParsesResult(t *testing.T) {
	scorer := NewScorer(&stubProvider{text: goodScoreJSON}, "gpt-4o-mini")

	result, attempt, err := scorer.Score(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.ItemID != "q1:r1" {
		t.Errorf("item id not stamped: %q", result.ItemID)
	}
	if result.PrimaryForce != forces.PainOfOld {
		t.Errorf("unexpected primary force %q", result.PrimaryForce)
	}
	if len(result.SecondaryForces) != 1 || result.SecondaryForces[0] != forces.AnxietyOfNew {
		t.Errorf("unexpected secondary forces %v", result.SecondaryForces)
	}
	if result.ForceStrength != 4 || result.Confidence != 5 {
		t.Errorf("unexpected scores %d/%d", result.ForceStrength, result.Confidence)
	}
	if result.Quality != QualityGood {
		t.Errorf("unexpected quality %q", result.Quality)
	}
	if result.AnalyzedAt.IsZero() {
		t.Error("analyzed_at not set")
	}
	if err := result.Validate(); err != nil {
		t.Errorf("result failed validation: %v", err)
	}

	if attempt.InputTokens != 100 || attempt.OutputTokens != 50 {
		t.Errorf("attempt usage not carried: %+v", attempt)
	}
	if attempt.CostCents <= 0 {
		t.Errorf("expected positive cost, got %v", attempt.CostCents)
	}
}

func TestScorerStripsCodeFences(t *testing.T) {
	fenced := "```json\n" + goodScoreJSON + "\n```"
	scorer := NewScorer(&stubProvider{text: fenced}, "gpt-4o-mini")

	result, _, err := scorer.Score(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PrimaryForce != forces.PainOfOld {
		t.Errorf("unexpected primary force %q", result.PrimaryForce)
	}
}

func TestScorerMalformedResponseIsNotRetryable(t *testing.T) {
	scorer := NewScorer(&stubProvider{text: "this is not json"}, "gpt-4o-mini")

	_, attempt, err := scorer.Score(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for malformed response")
	}
	if llm.KindOf(err) != llm.ErrMalformed {
		t.Errorf("expected malformed kind, got %q", llm.KindOf(err))
	}
	if llm.Retryable(err) {
		t.Error("malformed responses must not be retryable")
	}
	// The attempt still consumed tokens and must be accounted.
	if attempt.InputTokens != 100 {
		t.Errorf("attempt usage lost on parse failure: %+v", attempt)
	}
}

func TestScorerPropagatesProviderError(t *testing.T) {
	pe := &llm.ProviderError{Provider: "stub", Kind: llm.ErrRateLimited, Retryable: true, Err: errors.New("429")}
	scorer := NewScorer(&stubProvider{err: pe}, "gpt-4o-mini")

	_, attempt, err := scorer.Score(context.Background(), testRequest())
	if !llm.Retryable(err) {
		t.Error("expected retryable error to propagate")
	}
	if attempt.Tokens() != 0 {
		t.Errorf("failed call should carry no tokens, got %d", attempt.Tokens())
	}
}

func TestNormalizeScoreClampsAndFills(t *testing.T) {
	r := &ScoredResult{
		PrimaryForce:    "something_else",
		SecondaryForces: []forces.ForceType{"bogus", forces.PullOfNew, forces.PainOfOld},
		ForceStrength:   9,
		Confidence:      0,
		Sentiment:       Sentiment{Score: 1.8},
		Quality:         "superb",
	}

	normalizeScore(r, forces.PainOfOld)

	if r.PrimaryForce != forces.PainOfOld {
		t.Errorf("expected fallback to expected force, got %q", r.PrimaryForce)
	}
	// Invalid entries and the primary force are dropped from secondaries.
	if len(r.SecondaryForces) != 1 || r.SecondaryForces[0] != forces.PullOfNew {
		t.Errorf("unexpected secondaries %v", r.SecondaryForces)
	}
	if r.ForceStrength != 5 || r.Confidence != 1 {
		t.Errorf("clamping failed: %d/%d", r.ForceStrength, r.Confidence)
	}
	if r.Sentiment.Score != 1 {
		t.Errorf("sentiment not clamped: %v", r.Sentiment.Score)
	}
	if r.Sentiment.Label != "positive" {
		t.Errorf("sentiment label not derived: %q", r.Sentiment.Label)
	}
	if r.Quality != QualityFair {
		t.Errorf("unknown quality not defaulted: %q", r.Quality)
	}
}

func TestSentimentLabel(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.5, "positive"},
		{0.2, "neutral"},
		{0, "neutral"},
		{-0.2, "neutral"},
		{-0.5, "negative"},
	}
	for _, tt := range tests {
		if got := SentimentLabel(tt.score); got != tt.want {
			t.Errorf("SentimentLabel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
