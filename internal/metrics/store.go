package metrics

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/seismohq/seismo/internal/db"
)

// ErrNoSnapshot is returned when an organization has no stored metrics.
var ErrNoSnapshot = errors.New("no metrics snapshot")

// Snapshot is a persisted metrics roll-up for one survey run.
type Snapshot struct {
	ID             string                `json:"id"`
	OrganizationID string                `json:"organization_id"`
	SurveyID       string                `json:"survey_id"`
	Metrics        OrganizationalMetrics `json:"metrics"`
	CreatedAt      time.Time             `json:"created_at"`
}

// Store persists metrics snapshots.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// SaveSnapshot stores a metrics roll-up and returns its generated id.
func (s *Store) SaveSnapshot(ctx context.Context, organizationID, surveyID string, m OrganizationalMetrics) (string, error) {
	payload, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("marshalling metrics: %w", err)
	}

	id := uuid.New().String()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO metrics_snapshots (id, organization_id, survey_id, metrics, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id, organizationID, surveyID, string(payload),
		time.Now().UTC().Format(db.TimeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("inserting metrics snapshot: %w", err)
	}
	return id, nil
}

// LatestSnapshot returns the most recent snapshot for an organization.
func (s *Store) LatestSnapshot(ctx context.Context, organizationID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, organization_id, survey_id, metrics, created_at
		FROM metrics_snapshots
		WHERE organization_id = ?
		ORDER BY created_at DESC
		LIMIT 1`, organizationID)

	var (
		snap    Snapshot
		payload string
		ts      string
	)
	if err := row.Scan(&snap.ID, &snap.OrganizationID, &snap.SurveyID, &payload, &ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("querying metrics snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &snap.Metrics); err != nil {
		return nil, fmt.Errorf("unmarshalling metrics snapshot: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
		snap.CreatedAt = t
	}
	return &snap, nil
}
