package cmd

import (
	"github.com/spf13/cobra"

	"github.com/seismohq/seismo/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize seismo configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure seismo for your organization and generates a .seismo.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
