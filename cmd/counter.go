package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/venue-opener/internal/application/usecases"
	"github.com/example/venue-opener/internal/clock"
)

func newCounterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Inspect or override the stored day counter",
	}
	cmd.AddCommand(newCounterGetCmd())
	cmd.AddCommand(newCounterSetCmd())
	return cmd
}

func withCounterAdmin(fn func(ctx context.Context, admin usecases.CounterAdmin) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	profile, err := cfg.Profile()
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, err := openCounter(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, usecases.CounterAdmin{Profile: profile, Counter: store, Clock: clock.NewSystem()})
}

func newCounterGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show the stored counter, the date-based estimate and the next day number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCounterAdmin(func(ctx context.Context, admin usecases.CounterAdmin) error {
				st, err := admin.Status(ctx)
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			})
		},
	}
}

func newCounterSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <days>",
		Short: "Overwrite the stored day number the next announcement will use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[0])
			if err != nil || days < 0 {
				return fmt.Errorf("days must be a non-negative integer")
			}
			return withCounterAdmin(func(ctx context.Context, admin usecases.CounterAdmin) error {
				if err := admin.Override(ctx, days); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "counter for %s set to %d\n", admin.Profile.ID, days)
				return nil
			})
		},
	}
}
