// Package main is farmctl, the operator CLI for the farm monitoring
// service: schema migration, fixture seeding and readings export.
//
// Import Path: fertigation.io/farmwatch/cmd/farmctl
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fertigation.io/farmwatch/internal/config"
	"fertigation.io/farmwatch/internal/infrastructure"
	"fertigation.io/farmwatch/internal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "farmctl: %v\n", err)
		os.Exit(1)
	}
}

// cli carries state shared by the subcommands once the root has loaded it.
type cli struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "farmctl",
		Short:         "farmctl - farm monitoring operator tool",
		Long:          `farmctl migrates the database, seeds fixture data and exports sensor readings.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			c.cfg = cfg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			logger.Sync()
		},
	}
	root.AddCommand(c.migrateCmd(), c.seedCmd(), c.exportCmd())
	return root
}

func (c *cli) openDB(ctx context.Context) (*infrastructure.DatabaseClients, error) {
	db, err := infrastructure.NewDatabaseClients(ctx, c.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	return db, nil
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the application schema and River queue tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := c.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
