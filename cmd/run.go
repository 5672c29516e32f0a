package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/example/venue-opener/internal/application/usecases"
	"github.com/example/venue-opener/internal/clock"
	"github.com/example/venue-opener/internal/config"
	"github.com/example/venue-opener/internal/domain/venue"
	"github.com/example/venue-opener/internal/infrastructure/hoursapi"
	"github.com/example/venue-opener/internal/infrastructure/webhook"
	"github.com/example/venue-opener/internal/logging"
	"github.com/example/venue-opener/internal/telemetry"
)

func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Announce today's opening once: fetch hours, wait, post and advance the counter",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateAnnouncer(); err != nil {
				return err
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

			uc := newAnnouncer(cfg, profile, store, log)
			if dryRun {
				res, err := uc.Plan(ctx)
				if err != nil {
					return err
				}
				printPlan(cmd, res)
				return nil
			}

			res, err := uc.Execute(ctx)
			if err != nil {
				return err
			}
			if cfg.PushgatewayURL != "" {
				if err := telemetry.Push(cfg.PushgatewayURL, cfg.VenueID); err != nil {
					log.Warn().Err(err).Msg("metrics push failed")
				}
			}
			log.Info().Str("run_id", res.RunID).Str("state", string(res.State)).Bool("sent", res.Sent()).Msg("run finished")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "decide the timeout and preview the message without waiting, posting or writing")
	return cmd
}

func newAnnouncer(cfg config.Config, p venue.Profile, store usecases.CounterStore, log zerolog.Logger) usecases.AnnounceOpening {
	return usecases.AnnounceOpening{
		Profile: p,
		Hours:   hoursapi.New(cfg.HoursURL, cfg.HTTPTimeout),
		Notifier: webhook.New(cfg.WebhookBaseURL, webhook.Credentials{
			ID:    cfg.WebhookID,
			Token: cfg.WebhookToken,
		}, cfg.HTTPTimeout),
		Counter: store,
		Clock:   clock.NewSystem(),
		Logger:  log,
	}
}

func printPlan(cmd *cobra.Command, res usecases.Result) {
	out := cmd.OutOrStdout()
	if res.State == usecases.StateSkipped {
		fmt.Fprintf(out, "skipped: %v\n", res.SkipErr)
		return
	}
	fmt.Fprintf(out, "source:  %s\n", res.Decision.Source)
	fmt.Fprintf(out, "delay:   %s\n", res.Decision.Delay)
	fmt.Fprintf(out, "at:      %s\n", res.Decision.Target.Format("2006-01-02 15:04:05 MST"))
	if res.FetchErr != nil {
		fmt.Fprintf(out, "fetch:   %v\n", res.FetchErr)
	}
	fmt.Fprintf(out, "message: %s\n", res.Message)
}
