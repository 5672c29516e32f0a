// Package web serves the operator HTTP surface of `venueopen serve`.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/example/venue-opener/internal/application/usecases"
	"github.com/example/venue-opener/internal/auth"
	"github.com/example/venue-opener/internal/telemetry"
)

type Server struct {
	Counter usecases.CounterAdmin
	// NextRun reports the scheduler's next trigger; may be nil.
	NextRun           func() time.Time
	AdminPasswordHash string
	Logger            zerolog.Logger
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", telemetry.Handler())

	r.Route("/counter", func(r chi.Router) {
		r.Get("/", s.handleCounterGet)
		r.With(auth.RequireAdmin(s.AdminPasswordHash)).Put("/", s.handleCounterPut)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{"status": "ok"}
	if s.NextRun != nil {
		if next := s.NextRun(); !next.IsZero() {
			body["next_run"] = next.Format(time.RFC3339)
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleCounterGet(w http.ResponseWriter, r *http.Request) {
	st, err := s.Counter.Status(r.Context())
	if err != nil {
		s.Logger.Error().Err(err).Msg("counter status failed")
		writeError(w, http.StatusServiceUnavailable, "counter store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type counterRequest struct {
	Days *int `json:"days"`
}

func (s *Server) handleCounterPut(w http.ResponseWriter, r *http.Request) {
	var req counterRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil || req.Days == nil {
		writeError(w, http.StatusBadRequest, `body must be {"days": <non-negative integer>}`)
		return
	}
	if *req.Days < 0 {
		writeError(w, http.StatusBadRequest, "days must be >= 0")
		return
	}
	if err := s.Counter.Override(r.Context(), *req.Days); err != nil {
		s.Logger.Error().Err(err).Int("days", *req.Days).Msg("counter override failed")
		writeError(w, http.StatusServiceUnavailable, "counter store unavailable")
		return
	}
	s.Logger.Info().Int("days", *req.Days).Str("request_id", middleware.GetReqID(r.Context())).Msg("counter overridden")
	s.handleCounterGet(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func Start(ctx context.Context, addr string, h http.Handler, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Str("addr", addr).Msg("operator http listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
