// Package telemetry exposes Prometheus metrics for announcement runs.
package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "venueopen"

var (
	RunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Announcement runs by outcome (sent, skipped, dispatch_failed).",
	}, []string{"outcome"})

	// SkipsTotal separates closed days from hours text the parser could not read.
	SkipsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "skips_total",
		Help:      "Runs that announced nothing, by reason (closed, unparseable).",
	}, []string{"reason"})

	FetchFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_failures_total",
		Help:      "Hours source failures that triggered the fallback timeout.",
	})

	PersistFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persist_failures_total",
		Help:      "Counter store failures by operation (read, write).",
	}, []string{"op"})

	ScheduledDelay = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduled_delay_seconds",
		Help:      "Delay chosen by the most recent run, by source.",
	}, []string{"source"})

	LastNotification = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_notification_timestamp_seconds",
		Help:      "Unix time of the last successfully dispatched announcement.",
	})

	DayNumber = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "day_number",
		Help:      "Day of operation announced by the most recent run.",
	})
)

func init() {
	prometheus.MustRegister(RunsTotal, SkipsTotal, FetchFailuresTotal, PersistFailuresTotal, ScheduledDelay, LastNotification, DayNumber)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDelay records the delay a run decided on.
func ObserveDelay(source string, d time.Duration) {
	ScheduledDelay.WithLabelValues(source).Set(d.Seconds())
}

// MarkNotified records a successful dispatch.
func MarkNotified(at time.Time, day int) {
	LastNotification.Set(float64(at.Unix()))
	DayNumber.Set(float64(day))
}

// Push sends the default registry to a Prometheus push gateway. One-shot
// runs use this since nothing scrapes them.
func Push(gatewayURL, instance string) error {
	p := push.New(gatewayURL, namespace).Gatherer(prometheus.DefaultGatherer)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
