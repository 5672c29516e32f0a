// Package sqlite stores the days-open counter in a local SQLite file, for
// single-host deployments without a database server.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/venue-opener/internal/internaltypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// DaysOpen is one venue's counter row.
type DaysOpen struct {
	VenueID   string `gorm:"primaryKey"`
	Days      int    `gorm:"not null"`
	UpdatedAt time.Time
}

func (DaysOpen) TableName() string { return "days_open" }

type CounterRepo struct{ db *gorm.DB }

// Open opens (creating if needed) the database at path and migrates it.
func Open(path string) (*CounterRepo, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return New(db)
}

func New(db *gorm.DB) (*CounterRepo, error) {
	if err := db.AutoMigrate(&DaysOpen{}); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return &CounterRepo{db: db}, nil
}

func (r *CounterRepo) Get(ctx context.Context, venueID string) (int, error) {
	var row DaysOpen
	err := r.db.WithContext(ctx).Where("venue_id = ?", venueID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, internaltypes.ErrNotFound
		}
		return 0, err
	}
	return row.Days, nil
}

func (r *CounterRepo) Set(ctx context.Context, venueID string, days int) error {
	if days < 0 {
		return fmt.Errorf("days must be >= 0 (got %d)", days)
	}
	row := DaysOpen{VenueID: venueID, Days: days, UpdatedAt: time.Now().UTC()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "venue_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"days", "updated_at"}),
	}).Create(&row).Error
}

func (r *CounterRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
