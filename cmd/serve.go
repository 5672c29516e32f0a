package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/venue-opener/internal/application/usecases"
	"github.com/example/venue-opener/internal/clock"
	"github.com/example/venue-opener/internal/interfaces/web"
	"github.com/example/venue-opener/internal/logging"
	"github.com/example/venue-opener/internal/scheduler"
)

func newServeCmd() *cobra.Command {
	var schedule string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the daily scheduler and the operator HTTP endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateAnnouncer(); err != nil {
				return err
			}
			if schedule != "" {
				cfg.CronSchedule = schedule
			}
			log := logging.Setup(cfg.Environment, cfg.LogLevel)
			profile, err := cfg.Profile()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			store := openCounterLazy(ctx, cfg, log)
			defer store.Close()

			// scheduler
			s := &scheduler.Scheduler{
				Announcer: newAnnouncer(cfg, profile, store, log),
				Spec:      cfg.CronSchedule,
				Location:  profile.Location,
				Logger:    log,
			}

			// web
			ws := &web.Server{
				Counter:           usecases.CounterAdmin{Profile: profile, Counter: store, Clock: clock.NewSystem()},
				NextRun:           s.Next,
				AdminPasswordHash: cfg.AdminPasswordHash,
				Logger:            log,
			}
			if cfg.AdminPasswordHash == "" {
				log.Warn().Msg("ADMIN_PASSWORD_HASH not set, PUT /counter is disabled")
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return s.Run(gctx) })
			g.Go(func() error { return web.Start(gctx, cfg.ListenAddr, ws.Routes(), log) })
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", "", "cron expression in the venue time zone (overrides CRON_SCHEDULE)")
	return cmd
}
