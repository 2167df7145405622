package config

import "github.com/seismohq/seismo/internal/usage"

// ProviderType identifies an LLM provider.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
)

// Priority hints how urgently a batch should run.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// AnalysisConfig holds the batch processing defaults.
type AnalysisConfig struct {
	Parallelism        int      `yaml:"parallelism" koanf:"parallelism"`
	RetryFailures      bool     `yaml:"retry_failures" koanf:"retry_failures"`
	Priority           Priority `yaml:"priority" koanf:"priority"`
	CallTimeoutSeconds int      `yaml:"call_timeout_seconds" koanf:"call_timeout_seconds"`
	IncludeDemographic bool     `yaml:"include_demographic" koanf:"include_demographic"`
}

// Config is the top-level seismo configuration, corresponding to .seismo.yml.
type Config struct {
	Provider          ProviderType   `yaml:"provider" koanf:"provider"`
	Model             string         `yaml:"model" koanf:"model"`
	RequestsPerMinute int            `yaml:"requests_per_minute" koanf:"requests_per_minute"`
	OrganizationID    string         `yaml:"organization_id" koanf:"organization_id"`
	OrganizationName  string         `yaml:"organization_name" koanf:"organization_name"`
	DatabasePath      string         `yaml:"database_path" koanf:"database_path"`
	Analysis          AnalysisConfig `yaml:"analysis" koanf:"analysis"`
	Alerts            usage.Settings `yaml:"alerts" koanf:"alerts"`
}
