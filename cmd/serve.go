package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lgmendez/diasync/internal/config"
	"github.com/lgmendez/diasync/internal/db"
	"github.com/lgmendez/diasync/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bundled reference diagram server",
	Long: `Starts a self-contained diagram server backed by SQLite: the REST API,
the websocket update hub, and user management. Point server_url and
socket_url at it to run diasync without an external backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		port := cfg.Serve.Port
		if servePort != 0 {
			port = servePort
		}

		database, err := db.Open(cfg.Serve.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: true,
		}, database)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(os.Stderr, "diasync server v%s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.Serve.DBPath)

		return srv.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
