package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.OrganizationID = "org1"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("default config with org id should validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing provider", func(c *Config) { c.Provider = "" }},
		{"unknown provider", func(c *Config) { c.Provider = "grokbot" }},
		{"missing model", func(c *Config) { c.Model = "" }},
		{"missing org", func(c *Config) { c.OrganizationID = "" }},
		{"missing db path", func(c *Config) { c.DatabasePath = "" }},
		{"negative rpm", func(c *Config) { c.RequestsPerMinute = -1 }},
		{"zero parallelism", func(c *Config) { c.Analysis.Parallelism = 0 }},
		{"unknown priority", func(c *Config) { c.Analysis.Priority = "urgent" }},
		{"negative timeout", func(c *Config) { c.Analysis.CallTimeoutSeconds = -1 }},
		{"negative budget", func(c *Config) { c.Alerts.MonthlyBudgetCents = -1 }},
		{"negative daily limit", func(c *Config) { c.Alerts.DailyLimitCents = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("expected default provider, got %q", cfg.Provider)
	}
	if cfg.Analysis.Parallelism != 5 {
		t.Errorf("expected default parallelism 5, got %d", cfg.Analysis.Parallelism)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".seismo.yml")
	content := `provider: anthropic
model: claude-haiku-4-5-20251001
organization_id: org42
analysis:
  parallelism: 3
  retry_failures: false
alerts:
  monthly_budget_cents: 5000
  alerts_enabled: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider != ProviderAnthropic {
		t.Errorf("expected anthropic, got %q", cfg.Provider)
	}
	if cfg.OrganizationID != "org42" {
		t.Errorf("expected org42, got %q", cfg.OrganizationID)
	}
	if cfg.Analysis.Parallelism != 3 {
		t.Errorf("expected parallelism 3, got %d", cfg.Analysis.Parallelism)
	}
	if cfg.Alerts.MonthlyBudgetCents != 5000 {
		t.Errorf("expected budget 5000, got %v", cfg.Alerts.MonthlyBudgetCents)
	}
	// Unset fields keep their defaults.
	if cfg.DatabasePath != ".seismo/seismo.db" {
		t.Errorf("expected default db path, got %q", cfg.DatabasePath)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SEISMO_PROVIDER", "anthropic")
	t.Setenv("SEISMO_ORGANIZATION_ID", "env-org")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Provider != ProviderAnthropic {
		t.Errorf("env override ignored, got %q", cfg.Provider)
	}
	if cfg.OrganizationID != "env-org" {
		t.Errorf("env override ignored, got %q", cfg.OrganizationID)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".seismo.yml")

	cfg := validConfig()
	cfg.Model = "gpt-4o"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("saving: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	if loaded.Model != "gpt-4o" {
		t.Errorf("expected gpt-4o after round trip, got %q", loaded.Model)
	}
}

func TestDefaultModel(t *testing.T) {
	if m := DefaultModel(ProviderAnthropic); m == "" {
		t.Error("expected anthropic default model")
	}
	if m := DefaultModel("unknown"); m != DefaultModel(ProviderOpenAI) {
		t.Errorf("unknown provider should fall back to openai default, got %q", m)
	}
}

func TestAPIKeyEnvVar(t *testing.T) {
	if v := APIKeyEnvVar(ProviderOpenAI); v != "OPENAI_API_KEY" {
		t.Errorf("unexpected env var %q", v)
	}
	if v := APIKeyEnvVar("unknown"); v != "" {
		t.Errorf("expected empty for unknown provider, got %q", v)
	}
}
