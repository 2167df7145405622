package metrics

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/seismohq/seismo/internal/analysis"
	"github.com/seismohq/seismo/internal/db"
	"github.com/seismohq/seismo/internal/forces"
)

func result(force forces.ForceType, quality analysis.QualityLabel, sentiment float64, themes ...string) analysis.ScoredResult {
	return analysis.ScoredResult{
		ItemID:        "item",
		PrimaryForce:  force,
		ForceStrength: 3,
		Confidence:    4,
		Sentiment:     analysis.Sentiment{Score: sentiment, Label: analysis.SentimentLabel(sentiment)},
		Themes:        themes,
		Quality:       quality,
		AnalyzedAt:    time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestAggregateEmpty(t *testing.T) {
	m := Aggregate(nil)

	if m.TotalResponses != 0 {
		t.Errorf("expected 0 responses, got %d", m.TotalResponses)
	}
	if m.QualityScore != 0 || m.AverageConfidence != 0 {
		t.Errorf("expected zero scores, got %+v", m)
	}
	if m.ForceDistribution == nil || len(m.ForceDistribution) != 0 {
		t.Errorf("expected empty force distribution, got %v", m.ForceDistribution)
	}
	if m.SentimentDistribution == nil || len(m.SentimentDistribution) != 0 {
		t.Errorf("expected empty sentiment distribution, got %v", m.SentimentDistribution)
	}
	if m.ThemeFrequency == nil || len(m.ThemeFrequency) != 0 {
		t.Errorf("expected empty theme frequency, got %v", m.ThemeFrequency)
	}
}

func TestAggregateIsIdempotent(t *testing.T) {
	results := []analysis.ScoredResult{
		result(forces.PainOfOld, analysis.QualityGood, -0.5, "speed", "tooling"),
		result(forces.PullOfNew, analysis.QualityExcellent, 0.7, "speed"),
	}

	first := Aggregate(results)
	second := Aggregate(results)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("aggregate not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestAggregateDistributions(t *testing.T) {
	results := []analysis.ScoredResult{
		result(forces.PainOfOld, analysis.QualityGood, -0.5),
		result(forces.PainOfOld, analysis.QualityGood, -0.3),
		result(forces.PullOfNew, analysis.QualityGood, 0.6),
	}

	m := Aggregate(results)

	if m.TotalResponses != 3 {
		t.Fatalf("expected 3 responses, got %d", m.TotalResponses)
	}
	if m.ForceDistribution[forces.PainOfOld] != 2 || m.ForceDistribution[forces.PullOfNew] != 1 {
		t.Errorf("unexpected force distribution %v", m.ForceDistribution)
	}
	if m.SentimentDistribution["negative"] != 2 || m.SentimentDistribution["positive"] != 1 {
		t.Errorf("unexpected sentiment distribution %v", m.SentimentDistribution)
	}
}

func TestThemeRankingDeterminism(t *testing.T) {
	results := []analysis.ScoredResult{
		result(forces.PainOfOld, analysis.QualityGood, 0, "A", "A", "B"),
		result(forces.PainOfOld, analysis.QualityGood, 0, "A", "C"),
	}

	m := Aggregate(results)

	want := []ThemeCount{{"A", 3}, {"B", 1}, {"C", 1}}
	if !reflect.DeepEqual(m.ThemeFrequency, want) {
		t.Errorf("theme frequency = %v, want %v", m.ThemeFrequency, want)
	}
}

func TestThemeFrequencyTruncatesToTwenty(t *testing.T) {
	themes := make([]string, 25)
	for i := range themes {
		themes[i] = string(rune('a' + i))
	}
	m := Aggregate([]analysis.ScoredResult{
		result(forces.PainOfOld, analysis.QualityGood, 0, themes...),
	})

	if len(m.ThemeFrequency) != 20 {
		t.Errorf("expected 20 themes, got %d", len(m.ThemeFrequency))
	}
	// Equal counts keep first-seen order.
	if m.ThemeFrequency[0].Theme != "a" || m.ThemeFrequency[19].Theme != "t" {
		t.Errorf("unexpected truncation order: first %q last %q",
			m.ThemeFrequency[0].Theme, m.ThemeFrequency[19].Theme)
	}
}

func TestQualityScoreArithmetic(t *testing.T) {
	results := []analysis.ScoredResult{
		result(forces.PainOfOld, analysis.QualityGood, 0),
		result(forces.PainOfOld, analysis.QualityExcellent, 0),
		result(forces.PainOfOld, analysis.QualityPoor, 0),
		result(forces.PainOfOld, analysis.QualityFair, 0),
	}

	m := Aggregate(results)
	if m.QualityScore != 2.5 {
		t.Errorf("expected quality score 2.5, got %v", m.QualityScore)
	}
}

func TestAggregateExcludesInvalidResults(t *testing.T) {
	bad := result(forces.PainOfOld, analysis.QualityGood, 0)
	bad.Confidence = 11 // out of range

	m := Aggregate([]analysis.ScoredResult{
		result(forces.PullOfNew, analysis.QualityGood, 0.5),
		bad,
	})

	if m.TotalResponses != 1 {
		t.Errorf("expected invalid result to be excluded, got %d responses", m.TotalResponses)
	}
}

func TestAggregateDateRange(t *testing.T) {
	early := result(forces.PainOfOld, analysis.QualityGood, 0)
	early.AnalyzedAt = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	late := result(forces.PainOfOld, analysis.QualityGood, 0)
	late.AnalyzedAt = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	m := Aggregate([]analysis.ScoredResult{late, early})

	if !m.DateRange.From.Equal(early.AnalyzedAt) || !m.DateRange.To.Equal(late.AnalyzedAt) {
		t.Errorf("unexpected date range %+v", m.DateRange)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening memory db: %v", err)
	}
	defer database.Close()

	store := NewStore(database)
	ctx := context.Background()

	m := Aggregate([]analysis.ScoredResult{
		result(forces.PainOfOld, analysis.QualityGood, -0.5, "tooling"),
	})

	id, err := store.SaveSnapshot(ctx, "org1", "s1", m)
	if err != nil {
		t.Fatalf("saving snapshot: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	snap, err := store.LatestSnapshot(ctx, "org1")
	if err != nil {
		t.Fatalf("loading snapshot: %v", err)
	}
	if snap.Metrics.TotalResponses != 1 {
		t.Errorf("unexpected metrics %+v", snap.Metrics)
	}
	if snap.SurveyID != "s1" {
		t.Errorf("unexpected survey id %q", snap.SurveyID)
	}

	if _, err := store.LatestSnapshot(ctx, "nope"); err != ErrNoSnapshot {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}
