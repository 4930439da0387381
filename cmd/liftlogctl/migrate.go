package main

import (
	"fmt"

	"github.com/2beens/liftlog/internal/db"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the liftlog tables and indexes if they do not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			_, pool, err := openPool(ctx, opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := db.Migrate(ctx, pool); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			log.Info("schema up to date")
			return nil
		},
	}
}
