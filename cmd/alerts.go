package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seismohq/seismo/internal/usage"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Evaluate budget and error-rate alerts",
	Long:  `Checks the current month's usage ledger against the configured monthly budget, daily limit, and error-rate thresholds.`,
	RunE:  runAlerts,
}

func init() {
	rootCmd.AddCommand(alertsCmd)
}

func runAlerts(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	entries, err := usage.NewStore(database).Query(ctx, usage.Filter{
		OrganizationID: cfg.OrganizationID,
		From:           monthStart,
	})
	if err != nil {
		return fmt.Errorf("querying usage ledger: %w", err)
	}

	alerts := usage.EvaluateAlerts(entries, cfg.Alerts, now)
	if len(alerts) == 0 {
		if cfg.Alerts.AlertsEnabled {
			fmt.Println("No alerts.")
		} else {
			fmt.Println("Alerts are disabled in the configuration.")
		}
		return nil
	}

	for _, a := range alerts {
		fmt.Printf("[%s] %s: %s\n", a.Severity, a.Type, a.Message)
	}
	return nil
}
