package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "seismo",
	Short: "AI-powered qualitative analysis of survey responses",
	Long: `Seismo reads survey exports and uses an LLM to score every free-text
answer against the four forces of change adoption, rolling the results
up into organization-level metrics with per-call cost accounting.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".seismo.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
