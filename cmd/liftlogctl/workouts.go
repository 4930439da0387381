package main

import (
	"encoding/json"
	"fmt"

	"github.com/2beens/liftlog/internal/gymlog/catalog"
	"github.com/2beens/liftlog/internal/gymlog/workouts"

	"github.com/spf13/cobra"
)

func newWorkoutsCmd(opts *rootOptions) *cobra.Command {
	workoutsCmd := &cobra.Command{
		Use:   "workouts",
		Short: "Inspect stored workouts",
	}
	workoutsCmd.AddCommand(newWorkoutsDayCmd(opts))
	return workoutsCmd
}

func newWorkoutsDayCmd(opts *rootOptions) *cobra.Command {
	var (
		userID string
		date   string
		offset int
	)

	dayCmd := &cobra.Command{
		Use:   "day",
		Short: "Print a user's workouts for a local calendar day as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// reject bad input before touching the database
			if _, _, err := workouts.ResolveDayWindow(date, offset); err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, pool, err := openPool(ctx, opts)
			if err != nil {
				return err
			}
			defer pool.Close()

			service := workouts.NewService(
				workouts.NewRepo(pool, catalog.NewRepo(pool)),
				cfg.DBTimeout.Duration,
				nil,
			)
			list, err := service.ListForDay(ctx, userID, date, offset)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(workouts.ListResponse{Workouts: list}); err != nil {
				return fmt.Errorf("encode workouts: %w", err)
			}
			return nil
		},
	}

	dayCmd.Flags().StringVar(&userID, "user", "", "user id the workouts belong to")
	dayCmd.Flags().StringVar(&date, "date", "", "local calendar day, YYYY-MM-DD")
	dayCmd.Flags().IntVar(&offset, "offset", 0, "minutes behind UTC (browser getTimezoneOffset; UTC+2 is -120)")
	_ = dayCmd.MarkFlagRequired("user")
	_ = dayCmd.MarkFlagRequired("date")

	return dayCmd
}
