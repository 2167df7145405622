package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seismohq/seismo/internal/db"
)

// StoredSummary is a persisted batch summary with its provenance.
type StoredSummary struct {
	ID             string       `json:"id"`
	OrganizationID string       `json:"organization_id"`
	SurveyID       string       `json:"survey_id"`
	Summary        BatchSummary `json:"summary"`
	CreatedAt      time.Time    `json:"created_at"`
}

// Store persists batch summaries.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// SaveSummary inserts a batch summary and returns its generated id.
func (s *Store) SaveSummary(ctx context.Context, meta BatchMeta, summary BatchSummary) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO batch_summaries (
			id, organization_id, survey_id, total_requested, succeeded,
			failed, total_cost_cents, total_tokens, wall_clock_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		meta.OrganizationID,
		meta.SurveyID,
		summary.TotalRequested,
		summary.Succeeded,
		summary.Failed,
		summary.TotalCostCents,
		summary.TotalTokens,
		summary.WallClockMs,
		time.Now().UTC().Format(db.TimeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("inserting batch summary: %w", err)
	}
	return id, nil
}

// ListSummaries returns the most recent batch summaries for an
// organization, newest first.
func (s *Store) ListSummaries(ctx context.Context, organizationID string, limit int) ([]StoredSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, organization_id, survey_id, total_requested, succeeded,
		       failed, total_cost_cents, total_tokens, wall_clock_ms, created_at
		FROM batch_summaries
		WHERE organization_id = ?
		ORDER BY created_at DESC
		LIMIT ?`, organizationID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying batch summaries: %w", err)
	}
	defer rows.Close()

	var out []StoredSummary
	for rows.Next() {
		var (
			ss StoredSummary
			ts string
		)
		if err := rows.Scan(&ss.ID, &ss.OrganizationID, &ss.SurveyID,
			&ss.Summary.TotalRequested, &ss.Summary.Succeeded, &ss.Summary.Failed,
			&ss.Summary.TotalCostCents, &ss.Summary.TotalTokens, &ss.Summary.WallClockMs,
			&ts); err != nil {
			return nil, fmt.Errorf("scanning batch summary: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			ss.CreatedAt = t
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}
