// Package redisstore keeps the days-open counter in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/venue-opener/internal/internaltypes"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "venueopen:days_open:" // + venue_id

type Config struct {
	Addr     string
	Password string
	DB       int
}

type CounterRepo struct {
	client *redis.Client
}

func Open(ctx context.Context, cfg Config) (*CounterRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     2,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return &CounterRepo{client: client}, nil
}

func Key(venueID string) string { return keyPrefix + venueID }

func (r *CounterRepo) Get(ctx context.Context, venueID string) (int, error) {
	n, err := r.client.Get(ctx, Key(venueID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, internaltypes.ErrNotFound
		}
		return 0, err
	}
	return n, nil
}

func (r *CounterRepo) Set(ctx context.Context, venueID string, days int) error {
	if days < 0 {
		return fmt.Errorf("days must be >= 0 (got %d)", days)
	}
	return r.client.Set(ctx, Key(venueID), days, 0).Err()
}

func (r *CounterRepo) Close() error {
	return r.client.Close()
}
