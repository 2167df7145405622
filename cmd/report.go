package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seismohq/seismo/internal/metrics"
	"github.com/seismohq/seismo/internal/report"
	"github.com/seismohq/seismo/internal/usage"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the latest analysis as a shareable HTML report",
	Long:  `Combines the most recent metrics snapshot with usage history and active alerts into a standalone HTML (or markdown) report.`,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().String("out", "seismo-report.html", "output file path")
	reportCmd.Flags().String("granularity", "day", "usage bucket width: hour, day, week, or month")
	reportCmd.Flags().Bool("markdown", false, "write markdown instead of HTML")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
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

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	snap, err := metrics.NewStore(database).LatestSnapshot(ctx, cfg.OrganizationID)
	if err != nil {
		if errors.Is(err, metrics.ErrNoSnapshot) {
			return fmt.Errorf("no analysis has been run yet; run `seismo analyze` first")
		}
		return fmt.Errorf("loading metrics snapshot: %w", err)
	}

	entries, err := usage.NewStore(database).Query(ctx, usage.Filter{
		OrganizationID: cfg.OrganizationID,
	})
	if err != nil {
		return fmt.Errorf("querying usage ledger: %w", err)
	}

	now := time.Now().UTC()
	in := report.Input{
		OrganizationName: cfg.OrganizationName,
		SurveyName:       snap.SurveyID,
		Metrics:          snap.Metrics,
		Buckets:          usage.BucketEntries(entries, granularity),
		Granularity:      granularity,
		Alerts:           usage.EvaluateAlerts(entries, cfg.Alerts, now),
		GeneratedAt:      now,
	}

	out, _ := cmd.Flags().GetString("out")
	markdown, _ := cmd.Flags().GetBool("markdown")

	var content string
	if markdown {
		content = report.BuildMarkdown(in)
	} else {
		content, err = report.RenderHTML(in)
		if err != nil {
			return fmt.Errorf("rendering report: %w", err)
		}
	}

	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Printf("Report written to %s\n", out)
	return nil
}
