// Package pricelog persists landed-cost observations so the buy-now policy
// can reason about recent price volatility. The store is optional: a nil
// *Store is a valid no-op dependency and the planner degrades to zero
// variance without it.
package pricelog

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/weekendly/planner/pkg/money"
)

// Observation is a single landed-cost data point for an offer.
type Observation struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	Provider   string    `gorm:"type:varchar(32);not null;index:idx_offer"`
	Title      string    `gorm:"type:varchar(255);not null;index:idx_offer"`
	Landed     float64   `gorm:"type:decimal(20,8);not null"`
	Currency   string    `gorm:"type:varchar(3);not null"`
	ObservedAt time.Time `gorm:"not null;index"`
}

// Store records and queries price observations on a gorm connection.
type Store struct {
	db *gorm.DB
}

// New creates a price-log store on an existing connection and migrates its
// schema.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("pricelog: nil db")
	}
	if err := db.AutoMigrate(&Observation{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Open connects to the given postgres URL and returns a migrated store.
func Open(url string) (*Store, error) {
	if url == "" {
		return nil, errors.New("pricelog: empty database url")
	}
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	return New(db)
}

// Record stores one landed-cost observation for the offer identified by
// provider and title.
func (s *Store) Record(provider, title string, landed float64, currency money.Code, observedAt time.Time) error {
	if s == nil {
		return nil
	}
	obs := Observation{
		ID:         uuid.New(),
		Provider:   provider,
		Title:      title,
		Landed:     landed,
		Currency:   string(currency),
		ObservedAt: observedAt.UTC(),
	}
	return s.db.Create(&obs).Error
}

// Variance returns the relative spread (max-min over min) of the offer's
// observations inside the window. Fewer than two observations, or a
// non-positive minimum, yield zero.
func (s *Store) Variance(provider, title string, window time.Duration) (float64, error) {
	if s == nil {
		return 0, nil
	}
	var rows []Observation
	since := time.Now().UTC().Add(-window)
	err := s.db.
		Where("provider = ? AND title = ? AND observed_at >= ?", provider, title, since).
		Order("observed_at").
		Find(&rows).Error
	if err != nil {
		return 0, err
	}
	if len(rows) < 2 {
		return 0, nil
	}

	minv, maxv := rows[0].Landed, rows[0].Landed
	for _, r := range rows[1:] {
		if r.Landed < minv {
			minv = r.Landed
		}
		if r.Landed > maxv {
			maxv = r.Landed
		}
	}
	if minv <= 0 {
		return 0, nil
	}
	return (maxv - minv) / minv, nil
}

// Purge deletes observations older than the retention window and returns
// the number removed.
func (s *Store) Purge(retention time.Duration) (int64, error) {
	if s == nil {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-retention)
	res := s.db.Where("observed_at < ?", cutoff).Delete(&Observation{})
	return res.RowsAffected, res.Error
}
