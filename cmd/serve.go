package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seismohq/seismo/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the seismo HTTP API server",
	Long: `Starts an HTTP server exposing analysis, metrics, usage, and alert
endpoints, and sweeps alerts hourly in the background.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8585, "port to listen on")
	serveCmd.Flags().Bool("allow-all-origins", false, "allow all CORS origins (dev mode)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	// The server can run without a provider; only the analyze endpoint
	// needs one.
	provider, err := createProviderFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: analyze endpoint disabled: %v\n", err)
		provider = nil
	}

	port, _ := cmd.Flags().GetInt("port")
	allowAll, _ := cmd.Flags().GetBool("allow-all-origins")

	srv := server.New(server.Config{Port: port, AllowAll: allowAll}, *cfg, database, provider)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		fmt.Fprintln(os.Stderr, "Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
