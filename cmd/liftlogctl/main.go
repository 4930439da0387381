// Command liftlogctl runs admin tasks against the liftlog database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/2beens/liftlog/internal/config"
	"github.com/2beens/liftlog/internal/db"
	"github.com/2beens/liftlog/internal/logging"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	env        string
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "liftlogctl",
		Short:         "Admin tasks for the liftlog backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.LoggerSetupParams{
				LogLevel: opts.logLevel,
			})
			log.SetOutput(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.env, "env", "development", "environment [prod | production | dev | development]")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "./config.toml", "path for the TOML config file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level")

	rootCmd.AddCommand(
		newMigrateCmd(opts),
		newHashPasswordCmd(),
		newWorkoutsCmd(opts),
	)

	return rootCmd
}

// openPool loads the config and connects to its database.
// The password comes from LIFTLOG_POSTGRES_PASS, like for the service.
func openPool(ctx context.Context, opts *rootOptions) (*config.Config, *pgxpool.Pool, error) {
	cfg, err := config.Load(opts.env, opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	pool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("LIFTLOG_POSTGRES_PASS"),
	})
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping db: %w", err)
	}

	return cfg, pool, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
