package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/venue-opener/internal/domain/venue"
	"github.com/example/venue-opener/internal/infrastructure/hoursapi"
	"github.com/example/venue-opener/internal/scheduler"
)

func newHoursCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hours",
		Short: "Debug opening-hours parsing and the hours API",
	}
	cmd.AddCommand(newHoursParseCmd())
	cmd.AddCommand(newHoursFetchCmd())
	return cmd
}

func newHoursParseCmd() *cobra.Command {
	var timezone string

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: `Parse an hours string such as "10AM - 2AM" and print today's opening time`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := venue.LoadZone(timezone)
			if err != nil {
				return err
			}
			opening, err := venue.ParseOpening(strings.Join(args, " "), time.Now().In(loc))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), opening.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&timezone, "tz", "America/Los_Angeles", "IANA zone used for today's date")
	return cmd
}

func newHoursFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the weekly hours for the configured venue and show today's decision",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.HoursURL == "" {
				return fmt.Errorf("HOURS_URL is required")
			}
			profile, err := cfg.Profile()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
			defer cancel()
			hours, err := hoursapi.New(cfg.HoursURL, cfg.HTTPTimeout).WeeklyHours(ctx, profile.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			days := make([]string, 0, len(hours))
			for d := range hours {
				days = append(days, d)
			}
			sort.Strings(days)
			for _, d := range days {
				fmt.Fprintf(out, "%-10s %s\n", d, hours[d])
			}

			now := profile.NowIn(time.Now())
			next, err := scheduler.NextRun(cfg.CronSchedule, profile.Location, now)
			if err != nil {
				return fmt.Errorf("invalid CRON_SCHEDULE %q: %w", cfg.CronSchedule, err)
			}
			fmt.Fprintf(out, "next trigger: %s\n", next.Format("2006-01-02 15:04 MST"))

			d, ok, err := profile.ResolveTimeout(now, hours)
			if !ok {
				fmt.Fprintf(out, "today (%s): skip: %v\n", venue.WeekdayKey(now), err)
				return nil
			}
			fmt.Fprintf(out, "today (%s): opens %s, wait %s\n", venue.WeekdayKey(now), d.Target.Format("15:04 MST"), d.Delay)
			return nil
		},
	}
}
