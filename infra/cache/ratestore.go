package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/weekendly/planner/pkg/money"
)

// rateRecord is the FX-specific on-disk variant:
// {"rates": {...}, "timestamp": ISO-8601 UTC}.
type rateRecord struct {
	Rates     map[money.Code]float64 `json:"rates"`
	Timestamp time.Time              `json:"timestamp"`
}

// RateStore persists the last-known-good exchange-rate table to a single
// file, with the same atomic-rename write discipline as FileCache.
type RateStore struct {
	path   string
	logger *slog.Logger
}

// NewRateStore creates a store writing to dir/fx_last_good.json.
func NewRateStore(dir string, logger *slog.Logger) (*RateStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &RateStore{path: filepath.Join(dir, "fx_last_good.json"), logger: logger}, nil
}

// Load returns the persisted rate table and its age timestamp. A missing or
// corrupt file is reported as absent, never as an error.
func (s *RateStore) Load() (map[money.Code]float64, time.Time, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, time.Time{}, false
	}
	var rec rateRecord
	if err := json.Unmarshal(raw, &rec); err != nil || len(rec.Rates) == 0 {
		s.logger.Debug("fx last-good file unreadable, ignoring", "path", s.path)
		return nil, time.Time{}, false
	}
	return rec.Rates, rec.Timestamp, true
}

// Save overwrites the persisted table with the current timestamp.
func (s *RateStore) Save(rates map[money.Code]float64) error {
	data, err := json.Marshal(rateRecord{Rates: rates, Timestamp: time.Now().UTC()})
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".fx-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()        //nolint:errcheck
		os.Remove(tmpName) //nolint:errcheck
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck
		return err
	}
	return os.Rename(tmpName, s.path)
}
