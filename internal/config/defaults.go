package config

import "github.com/seismohq/seismo/internal/usage"

// defaultModels maps each provider to a sensible default model.
var defaultModels = map[ProviderType]string{
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderAnthropic: "claude-haiku-4-5-20251001",
}

// DefaultModel returns the default model for the given provider.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderOpenAI]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		Model:             DefaultModel(ProviderOpenAI),
		RequestsPerMinute: 60,
		DatabasePath:      ".seismo/seismo.db",
		Analysis: AnalysisConfig{
			Parallelism:        5,
			RetryFailures:      true,
			Priority:           PriorityNormal,
			CallTimeoutSeconds: 60,
		},
		Alerts: usage.Settings{
			MonthlyBudgetCents: 10000, // $100
			DailyLimitCents:    1000,  // $10
			AlertsEnabled:      true,
			Thresholds:         usage.DefaultThresholds(),
		},
	}
}
