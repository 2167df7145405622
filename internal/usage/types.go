// Package usage implements the append-only ledger of provider call
// attempts, the time-bucketed views over it, and budget/error-rate
// alerting. Every attempt against an upstream provider lands here,
// including retries, so cost accounting is per attempt.
package usage

import "time"

// Status is the outcome of a single provider call attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusTimeout Status = "timeout"
)

// Entry is one provider call attempt. Immutable once recorded.
type Entry struct {
	ID             string    `json:"id"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	TokensUsed     int       `json:"tokens_used"`
	CostCents      float64   `json:"cost_cents"`
	LatencyMs      int64     `json:"latency_ms"`
	Status         Status    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	OrganizationID string    `json:"organization_id"`
	SurveyID       string    `json:"survey_id,omitempty"`
	ItemID         string    `json:"item_id,omitempty"`
}

// Filter controls which ledger entries Query returns. Zero values mean
// "no constraint".
type Filter struct {
	OrganizationID string
	Provider       string
	SurveyID       string
	From           time.Time
	To             time.Time
}
