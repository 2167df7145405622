package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seismohq/seismo/internal/usage"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show LLM spend and request volume over time",
	Long:  `Buckets the usage ledger by hour, day, week, or month and prints cost, token, and error totals per bucket.`,
	RunE:  runUsage,
}

func init() {
	usageCmd.Flags().String("granularity", "day", "bucket width: hour, day, week, or month")
	usageCmd.Flags().String("from", "", "only include entries at or after this time (RFC 3339)")
	usageCmd.Flags().String("to", "", "only include entries before this time (RFC 3339)")
	usageCmd.Flags().String("survey", "", "restrict to one survey id")
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	gFlag, _ := cmd.Flags().GetString("granularity")
	granularity, err := usage.ParseGranularity(gFlag)
	if err != nil {
		return err
	}

	filter := usage.Filter{OrganizationID: cfg.OrganizationID}
	if v, _ := cmd.Flags().GetString("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("invalid --from: %w", err)
		}
		filter.From = t
	}
	if v, _ := cmd.Flags().GetString("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return fmt.Errorf("invalid --to: %w", err)
		}
		filter.To = t
	}
	filter.SurveyID, _ = cmd.Flags().GetString("survey")

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	entries, err := usage.NewStore(database).Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("querying usage ledger: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No usage recorded for the given filters.")
		return nil
	}

	buckets := usage.BucketEntries(entries, granularity)

	fmt.Printf("%-22s %10s %8s %12s %12s\n", "Period", "Requests", "Errors", "Tokens", "Cost")
	var totalCost float64
	var totalTokens, totalRequests, totalErrors int
	for _, b := range buckets {
		fmt.Printf("%-22s %10d %8d %12d %12s\n",
			b.Label(granularity), b.Requests, b.Errors, b.Tokens,
			fmt.Sprintf("$%.4f", b.CostCents/100))
		totalCost += b.CostCents
		totalTokens += b.Tokens
		totalRequests += b.Requests
		totalErrors += b.Errors
	}
	fmt.Printf("%-22s %10d %8d %12d %12s\n", "total", totalRequests, totalErrors, totalTokens,
		fmt.Sprintf("$%.4f", totalCost/100))

	return nil
}
