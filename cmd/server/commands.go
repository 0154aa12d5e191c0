package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phrazzld/dmo-api/internal/platform/postgres"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			db, err := setupAppDatabase(ctx, cfg, logger)
			if err != nil {
				return err
			}

			app, err := newApplication(ctx, cfg, logger, db)
			if err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return app.startHTTPServer(ctx, app.setupRouter())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|reset|status|version]",
		Short: "Run database migrations",
		Long: `Run goose against the embedded SQL migrations.

Examples:
  server migrate up
  server migrate status`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"up", "down", "reset", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}

			db, err := setupAppDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			return postgres.Migrate(cmd.Context(), db, args[0], logger)
		},
	}
}

// hashPasswordCmd prints a bcrypt hash, useful for seeding accounts by hand.
func hashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), cost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hash))
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
