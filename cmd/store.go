package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/example/venue-opener/internal/application/usecases"
	"github.com/example/venue-opener/internal/config"
	"github.com/example/venue-opener/internal/infrastructure/postgres"
	"github.com/example/venue-opener/internal/infrastructure/redisstore"
	"github.com/example/venue-opener/internal/infrastructure/sqlite"
)

type counterStore interface {
	usecases.CounterStore
	Close() error
}

// openCounter connects the configured counter backend. Postgres is migrated
// on open.
func openCounter(ctx context.Context, cfg config.Config) (counterStore, error) {
	switch cfg.CounterBackend {
	case config.BackendPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("db ping: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewCounterRepo(pool), nil
	case config.BackendSQLite:
		repo, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return repo, nil
	case config.BackendRedis:
		repo, err := redisstore.Open(ctx, redisstore.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unsupported counter backend %q", cfg.CounterBackend)
	}
}

// lazyCounter connects on first use and retries on every call until a
// connection succeeds, so an unreachable store degrades to read and write
// failures instead of stopping the run.
type lazyCounter struct {
	open func(ctx context.Context) (counterStore, error)

	mu    sync.Mutex
	store counterStore
}

// openCounterLazy tries the configured backend once up front for the log and
// hands back a store that keeps trying.
func openCounterLazy(ctx context.Context, cfg config.Config, log zerolog.Logger) *lazyCounter {
	l := &lazyCounter{open: func(ctx context.Context) (counterStore, error) { return openCounter(ctx, cfg) }}
	if _, err := l.connect(ctx); err != nil {
		log.Error().Err(err).Str("backend", string(cfg.CounterBackend)).
			Msg("counter store unreachable, day number will be estimated")
	}
	return l
}

func (l *lazyCounter) connect(ctx context.Context) (counterStore, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		return l.store, nil
	}
	s, err := l.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("counter store unavailable: %w", err)
	}
	l.store = s
	return s, nil
}

func (l *lazyCounter) Get(ctx context.Context, venueID string) (int, error) {
	s, err := l.connect(ctx)
	if err != nil {
		return 0, err
	}
	return s.Get(ctx, venueID)
}

func (l *lazyCounter) Set(ctx context.Context, venueID string, days int) error {
	s, err := l.connect(ctx)
	if err != nil {
		return err
	}
	return s.Set(ctx, venueID, days)
}

func (l *lazyCounter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return nil
	}
	err := l.store.Close()
	l.store = nil
	return err
}
