package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seismohq/seismo/internal/config"
	"github.com/seismohq/seismo/internal/db"
	"github.com/seismohq/seismo/internal/llm"
	"github.com/seismohq/seismo/internal/usage"
)

// stubProvider returns a canned response for every completion.
type stubProvider struct {
	text string
}

func (p *stubProvider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return &llm.Response{
		Text:         p.text,
		InputTokens:  100,
		OutputTokens: 50,
		Model:        req.Model,
	}, nil
}

func (p *stubProvider) Name() string { return "stub" }

const scoreJSON = `{
	"primary_force": "pain_of_old",
	"force_strength": 4,
	"confidence": 5,
	"sentiment": {"score": -0.6, "label": "negative"},
	"themes": ["slow builds"],
	"quality": "good",
	"reasoning": "clear complaint about the current process"
}`

const exportJSON = `{
	"survey": {"id": "s1", "name": "Adoption", "organization_id": "org-1", "organization_name": "Acme"},
	"questions": [
		{"id": "q1", "text": "What frustrates you today?", "category": "pain", "type": "open_text"}
	],
	"responses": [
		{
			"respondent": {"id": "r1", "role": "engineer", "department": "platform"},
			"answers": [{"question_id": "q1", "text": "Builds take forever."}]
		}
	]
}`

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.OrganizationID = "org-1"
	cfg.OrganizationName = "Acme"
	return *cfg
}

func newTestServer(t *testing.T, provider llm.Provider) (*Server, *db.DB) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return New(Config{Port: 0, AllowAll: true}, testConfig(), database, provider), database
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestAnalyzeWithoutProvider(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(exportJSON))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
}

func TestAnalyzeRejectsBadExport(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{text: scoreJSON})

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(`{"survey": {}}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t, &stubProvider{text: scoreJSON})

	req := httptest.NewRequest("POST", "/api/analyze", strings.NewReader(exportJSON))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp analyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.BatchID == "" {
		t.Error("expected a batch id")
	}
	if resp.Summary.TotalRequested != 1 || resp.Summary.Succeeded != 1 {
		t.Errorf("unexpected summary: %+v", resp.Summary)
	}
	if resp.Metrics.TotalResponses != 1 {
		t.Errorf("expected 1 aggregated response, got %d", resp.Metrics.TotalResponses)
	}

	// The run should now be visible through the other endpoints.
	req = httptest.NewRequest("GET", "/api/metrics", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("metrics after analyze: expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/batches", nil)
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("batches after analyze: expected 200, got %d", w.Code)
	}
	var batches struct {
		Batches []json.RawMessage `json:"batches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &batches); err != nil {
		t.Fatalf("unmarshal batches: %v", err)
	}
	if len(batches.Batches) != 1 {
		t.Errorf("expected 1 batch summary, got %d", len(batches.Batches))
	}
}

func TestMetricsNotFound(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/metrics", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestUsageBuckets(t *testing.T) {
	srv, database := newTestServer(t, nil)

	ledger := usage.NewStore(database)
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		ledger.Record(context.Background(), usage.Entry{
			Provider:       "stub",
			Model:          "m",
			TokensUsed:     100,
			CostCents:      2,
			Status:         usage.StatusSuccess,
			Timestamp:      now,
			OrganizationID: "org-1",
		})
	}

	req := httptest.NewRequest("GET", "/api/usage/buckets?granularity=day", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Granularity string         `json:"granularity"`
		Buckets     []usage.Bucket `json:"buckets"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Buckets) != 1 {
		t.Fatalf("expected 1 bucket, got %d", len(resp.Buckets))
	}
	if resp.Buckets[0].Requests != 3 || resp.Buckets[0].CostCents != 6 {
		t.Errorf("unexpected bucket: %+v", resp.Buckets[0])
	}
}

func TestUsageBucketsBadGranularity(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest("GET", "/api/usage/buckets?granularity=fortnight", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAlertsEndpoint(t *testing.T) {
	srv, database := newTestServer(t, nil)

	// Spend the entire monthly budget today so the critical alert fires.
	ledger := usage.NewStore(database)
	ledger.Record(context.Background(), usage.Entry{
		Provider:       "stub",
		Model:          "m",
		CostCents:      testConfig().Alerts.MonthlyBudgetCents,
		Status:         usage.StatusSuccess,
		Timestamp:      time.Now().UTC(),
		OrganizationID: "org-1",
	})

	req := httptest.NewRequest("GET", "/api/alerts", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Alerts []usage.Alert `json:"alerts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	found := false
	for _, a := range resp.Alerts {
		if a.Type == usage.AlertMonthlyBudget && a.Severity == usage.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Errorf("expected critical monthly budget alert, got %+v", resp.Alerts)
	}
}
