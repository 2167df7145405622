package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/seismohq/seismo/internal/analysis"
	"github.com/seismohq/seismo/internal/forces"
	"github.com/seismohq/seismo/internal/metrics"
	"github.com/seismohq/seismo/internal/survey"
	"github.com/seismohq/seismo/internal/usage"
)

// analyzeResponse is the body returned by POST /api/analyze.
type analyzeResponse struct {
	BatchID  string                        `json:"batch_id"`
	Summary  analysis.BatchSummary         `json:"summary"`
	Skipped  int                           `json:"skipped"`
	Failures []analysis.Failure            `json:"failures,omitempty"`
	Metrics  metrics.OrganizationalMetrics `json:"metrics"`
}

// handleAnalyze accepts a survey export, runs the full analysis batch
// synchronously, and persists the summary and a metrics snapshot.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.provider == nil {
		writeError(w, http.StatusServiceUnavailable, "no provider configured")
		return
	}

	export, err := survey.ParseExport(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := forces.ClassifyOptions{IncludeDemographic: s.appCfg.Analysis.IncludeDemographic}
	requests, skipped := forces.ClassifyExport(export, opts)

	meta := analysis.BatchMeta{
		OrganizationID: export.Survey.OrganizationID,
		SurveyID:       export.Survey.ID,
	}
	scorer := analysis.NewScorer(s.provider, s.appCfg.Model)
	runner := analysis.NewRunner(scorer, s.ledger)

	summary, results, failures := runner.Run(r.Context(), meta, requests, analysis.Options{
		Parallelism:   s.appCfg.Analysis.Parallelism,
		RetryFailures: s.appCfg.Analysis.RetryFailures,
		Priority:      string(s.appCfg.Analysis.Priority),
		CallTimeout:   time.Duration(s.appCfg.Analysis.CallTimeoutSeconds) * time.Second,
	})

	batchID, err := s.batches.SaveSummary(r.Context(), meta, *summary)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rollup := metrics.Aggregate(results)
	if _, err := s.snapshots.SaveSnapshot(r.Context(), meta.OrganizationID, meta.SurveyID, rollup); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		BatchID:  batchID,
		Summary:  *summary,
		Skipped:  skipped,
		Failures: failures,
		Metrics:  rollup,
	})
}

// handleMetrics returns the latest stored metrics snapshot.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	org := orgParam(r, s.appCfg.OrganizationID)

	snap, err := s.snapshots.LatestSnapshot(r.Context(), org)
	if err != nil {
		if errors.Is(err, metrics.ErrNoSnapshot) {
			writeError(w, http.StatusNotFound, "no metrics snapshot for organization")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleUsageBuckets returns time-bucketed usage for the organization.
func (s *Server) handleUsageBuckets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	granularity := usage.ByDay
	if v := q.Get("granularity"); v != "" {
		g, err := usage.ParseGranularity(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		granularity = g
	}

	filter := usage.Filter{OrganizationID: orgParam(r, s.appCfg.OrganizationID)}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		filter.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		filter.To = t
	}
	if v := q.Get("survey"); v != "" {
		filter.SurveyID = v
	}

	entries, err := s.ledger.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"granularity": granularity,
		"buckets":     usage.BucketEntries(entries, granularity),
	})
}

// handleAlerts evaluates alerts against the current month's ledger.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	entries, err := s.ledger.Query(r.Context(), usage.Filter{
		OrganizationID: orgParam(r, s.appCfg.OrganizationID),
		From:           monthStart,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	alerts := usage.EvaluateAlerts(entries, s.appCfg.Alerts, now)
	if alerts == nil {
		alerts = []usage.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

// handleBatches lists recent batch summaries.
func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	summaries, err := s.batches.ListSummaries(r.Context(), orgParam(r, s.appCfg.OrganizationID), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summaries == nil {
		summaries = []analysis.StoredSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"batches": summaries})
}

// orgParam returns the organization query parameter, falling back to the
// configured organization.
func orgParam(r *http.Request, fallback string) string {
	if v := r.URL.Query().Get("org"); v != "" {
		return v
	}
	return fallback
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
