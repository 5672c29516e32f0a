package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/venue-opener/internal/internaltypes"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CounterRepo struct{ pool *pgxpool.Pool }

func NewCounterRepo(pool *pgxpool.Pool) *CounterRepo { return &CounterRepo{pool: pool} }

func (r *CounterRepo) Get(ctx context.Context, venueID string) (int, error) {
	var days int
	err := r.pool.QueryRow(ctx, `SELECT days FROM days_open WHERE venue_id=$1`, venueID).Scan(&days)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, internaltypes.ErrNotFound
		}
		return 0, err
	}
	return days, nil
}

func (r *CounterRepo) Set(ctx context.Context, venueID string, days int) error {
	if days < 0 {
		return fmt.Errorf("days must be >= 0 (got %d)", days)
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO days_open (venue_id, days, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (venue_id) DO UPDATE SET days=EXCLUDED.days, updated_at=now()
	`, venueID, days)
	return err
}

func (r *CounterRepo) Close() error {
	r.pool.Close()
	return nil
}
