package usage

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seismohq/seismo/internal/db"
)

// Ledger is the append-only sink for provider call attempts. Record never
// returns an error: a failed usage write must not fail a successful
// analysis, so implementations log persistence problems themselves.
type Ledger interface {
	Record(ctx context.Context, entry Entry)
	Query(ctx context.Context, filter Filter) ([]Entry, error)
}

// Store is the SQLite-backed Ledger.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record appends an entry. Write failures are logged and swallowed.
func (s *Store) Record(ctx context.Context, entry Entry) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_entries (
			id, provider, model, tokens_used, cost_cents, latency_ms,
			status, timestamp, organization_id, survey_id, item_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Provider,
		entry.Model,
		entry.TokensUsed,
		entry.CostCents,
		entry.LatencyMs,
		string(entry.Status),
		entry.Timestamp.UTC().Format(db.TimeLayout),
		entry.OrganizationID,
		entry.SurveyID,
		entry.ItemID,
	)
	if err != nil {
		log.Printf("usage: recording entry for item %s: %v", entry.ItemID, err)
	}
}

// Query returns entries matching the filter, ordered by timestamp ascending.
func (s *Store) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.OrganizationID != "" {
		clauses = append(clauses, "organization_id = ?")
		args = append(args, filter.OrganizationID)
	}
	if filter.Provider != "" {
		clauses = append(clauses, "provider = ?")
		args = append(args, filter.Provider)
	}
	if filter.SurveyID != "" {
		clauses = append(clauses, "survey_id = ?")
		args = append(args, filter.SurveyID)
	}
	if !filter.From.IsZero() {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.From.UTC().Format(db.TimeLayout))
	}
	if !filter.To.IsZero() {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.To.UTC().Format(db.TimeLayout))
	}

	query := "SELECT id, provider, model, tokens_used, cost_cents, latency_ms, status, timestamp, organization_id, survey_id, item_id FROM usage_entries"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			status   string
			ts       string
			surveyID *string
			itemID   *string
		)
		if err := rows.Scan(&e.ID, &e.Provider, &e.Model, &e.TokensUsed, &e.CostCents,
			&e.LatencyMs, &status, &ts, &e.OrganizationID, &surveyID, &itemID); err != nil {
			return nil, err
		}
		e.Status = Status(status)
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			e.Timestamp = t
		}
		if surveyID != nil {
			e.SurveyID = *surveyID
		}
		if itemID != nil {
			e.ItemID = *itemID
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MemoryLedger keeps entries in memory. Used in tests and as the degraded
// fallback when the database is unavailable.
type MemoryLedger struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

func (m *MemoryLedger) Record(ctx context.Context, entry Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	m.entries = append(m.entries, entry)
}

func (m *MemoryLedger) Query(ctx context.Context, filter Filter) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Entry
	for _, e := range m.entries {
		if filter.OrganizationID != "" && e.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.Provider != "" && e.Provider != filter.Provider {
			continue
		}
		if filter.SurveyID != "" && e.SurveyID != filter.SurveyID {
			continue
		}
		if !filter.From.IsZero() && e.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Timestamp.After(filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Len returns the number of recorded entries.
func (m *MemoryLedger) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
