package cmd

import (
	"fmt"
	"os"

	"github.com/seismohq/seismo/internal/config"
	"github.com/seismohq/seismo/internal/db"
	"github.com/seismohq/seismo/internal/llm"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `seismo init` to create a config file", err)
	}
	return cfg, nil
}

// openDatabase opens the SQLite database from the config.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	database, err := db.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return database, nil
}

// createProviderFromConfig creates a rate-limited LLM provider based on
// config settings, checking that the API key is present.
func createProviderFromConfig(cfg *config.Config) (llm.Provider, error) {
	envVar := config.APIKeyEnvVar(cfg.Provider)
	if os.Getenv(envVar) == "" {
		return nil, fmt.Errorf("%s environment variable is required for provider %s", envVar, cfg.Provider)
	}

	provider, err := llm.NewProvider(string(cfg.Provider), cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("creating LLM provider: %w", err)
	}
	if cfg.RequestsPerMinute > 0 {
		provider = llm.NewRateLimitedProvider(provider, cfg.RequestsPerMinute)
	}
	return provider, nil
}
