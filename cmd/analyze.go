package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/seismohq/seismo/internal/analysis"
	"github.com/seismohq/seismo/internal/forces"
	"github.com/seismohq/seismo/internal/metrics"
	"github.com/seismohq/seismo/internal/progress"
	"github.com/seismohq/seismo/internal/survey"
	"github.com/seismohq/seismo/internal/usage"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <export.json>",
	Short: "Analyze a survey export against the four forces",
	Long: `Loads a survey export, classifies every free-text answer by force,
scores each one through the configured LLM provider, and stores the
resulting metrics. Every provider call is recorded in the usage ledger.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("dry-run", false, "estimate costs without making API calls")
	analyzeCmd.Flags().Int("parallelism", 0, "max parallel LLM calls (overrides config)")
	analyzeCmd.Flags().Bool("include-demographic", false, "analyze demographic answers too")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if parallelism, _ := cmd.Flags().GetInt("parallelism"); parallelism > 0 {
		cfg.Analysis.Parallelism = parallelism
	}
	if include, _ := cmd.Flags().GetBool("include-demographic"); include {
		cfg.Analysis.IncludeDemographic = true
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	export, err := survey.LoadExport(args[0])
	if err != nil {
		return err
	}

	requests, skipped := forces.ClassifyExport(export, forces.ClassifyOptions{
		IncludeDemographic: cfg.Analysis.IncludeDemographic,
	})
	if verbose {
		fmt.Fprintf(os.Stderr, "Classified %d answers (%d skipped) from survey %q\n",
			len(requests), skipped, export.Survey.Name)
	}
	if len(requests) == 0 {
		fmt.Println("No analyzable answers in export.")
		return nil
	}

	if dryRun {
		printCostEstimate(analysis.EstimateCost(requests, cfg.Model), cfg.Model, skipped)
		return nil
	}

	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	ledger := usage.NewStore(database)
	scorer := analysis.NewScorer(provider, cfg.Model)
	runner := analysis.NewRunner(scorer, ledger)

	reporter := progress.NewReporter()
	reporter.Start(len(requests))

	meta := analysis.BatchMeta{
		OrganizationID: export.Survey.OrganizationID,
		SurveyID:       export.Survey.ID,
	}
	summary, results, failures := runner.Run(ctx, meta, requests, analysis.Options{
		Parallelism:   cfg.Analysis.Parallelism,
		RetryFailures: cfg.Analysis.RetryFailures,
		Priority:      string(cfg.Analysis.Priority),
		CallTimeout:   time.Duration(cfg.Analysis.CallTimeoutSeconds) * time.Second,
		OnProgress: func(done, total int, itemID string) {
			reporter.Update(done, itemID)
		},
	})
	reporter.Finish()

	batchID, err := analysis.NewStore(database).SaveSummary(ctx, meta, *summary)
	if err != nil {
		return fmt.Errorf("saving batch summary: %w", err)
	}

	rollup := metrics.Aggregate(results)
	if _, err := metrics.NewStore(database).SaveSnapshot(ctx, meta.OrganizationID, meta.SurveyID, rollup); err != nil {
		return fmt.Errorf("saving metrics snapshot: %w", err)
	}

	fmt.Println("Analysis complete")
	fmt.Println("=================")
	fmt.Printf("  Batch:       %s\n", batchID)
	fmt.Printf("  Analyzed:    %d of %d (%d skipped before dispatch)\n",
		summary.Succeeded, summary.TotalRequested, skipped)
	fmt.Printf("  Failed:      %d\n", summary.Failed)
	fmt.Printf("  Tokens:      %d\n", summary.TotalTokens)
	fmt.Printf("  Cost:        $%.4f\n", summary.TotalCostCents/100)
	fmt.Printf("  Wall clock:  %s\n", time.Duration(summary.WallClockMs)*time.Millisecond)

	if len(failures) > 0 {
		fmt.Printf("\n%d answers could not be analyzed:\n", len(failures))
		for _, f := range failures {
			fmt.Printf("  %s: [%s] %s\n", f.ItemID, f.Kind, f.Message)
		}
	}

	return nil
}

func printCostEstimate(est analysis.CostEstimate, model string, skipped int) {
	fmt.Println("Cost Estimate")
	fmt.Println("=============")
	fmt.Printf("  Answers to analyze:  %d (%d skipped)\n", est.Items, skipped)
	fmt.Printf("  Model:               %s\n", model)
	fmt.Printf("  Estimated tokens:    %d in / %d out\n", est.InputTokens, est.OutputTokens)
	fmt.Printf("  Estimated cost:      $%.4f\n", est.CostCents/100)
	fmt.Println("\nEstimates assume one attempt per answer; retries cost extra.")
}
