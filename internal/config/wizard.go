package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .seismo.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to seismo! Let's configure your workspace.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select LLM provider",
		Items: []string{"openai", "anthropic"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)
	cfg.Model = DefaultModel(cfg.Provider)

	// 2. Organization.
	orgIDPrompt := promptui.Prompt{
		Label: "Organization id",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("organization id is required")
			}
			return nil
		},
	}
	orgID, err := orgIDPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("organization id: %w", err)
	}
	cfg.OrganizationID = strings.TrimSpace(orgID)

	orgNamePrompt := promptui.Prompt{
		Label:   "Organization display name",
		Default: cfg.OrganizationID,
	}
	orgName, err := orgNamePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("organization name: %w", err)
	}
	cfg.OrganizationName = strings.TrimSpace(orgName)

	// 3. Budgets.
	budget, err := promptDollars("Monthly budget in dollars", cfg.Alerts.MonthlyBudgetCents/100)
	if err != nil {
		return nil, err
	}
	cfg.Alerts.MonthlyBudgetCents = budget * 100

	daily, err := promptDollars("Daily spend limit in dollars (0 to disable)", cfg.Alerts.DailyLimitCents/100)
	if err != nil {
		return nil, err
	}
	cfg.Alerts.DailyLimitCents = daily * 100

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("wizard produced invalid config: %w", err)
	}

	if err := cfg.Save(".seismo.yml"); err != nil {
		return nil, err
	}

	fmt.Println()
	fmt.Println("Configuration saved to .seismo.yml")
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" {
		fmt.Printf("Remember to set %s before running an analysis.\n", envVar)
	}

	return cfg, nil
}

// promptDollars asks for a non-negative dollar amount.
func promptDollars(label string, defaultValue float64) (float64, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: strconv.FormatFloat(defaultValue, 'f', -1, 64),
		Validate: func(s string) error {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return fmt.Errorf("enter a number")
			}
			if v < 0 {
				return fmt.Errorf("must be non-negative")
			}
			return nil
		},
	}
	raw, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", strings.ToLower(label), err)
	}
	return v, nil
}
