// Package cache implements the disk-backed key-value cache shared by the
// connectors and the exchange-rate resolver. One JSON file per key; reads
// check a caller-supplied TTL and may ignore it in degraded mode.
package cache

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/weekendly/planner/pkg/metrics"
)

// entry is the on-disk record: {"value": <opaque>, "timestamp": ISO-8601 UTC}.
type entry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

// FileCache stores one JSON file per key under a directory. Writes are
// atomic (write-then-rename) so concurrent readers never observe partial
// files; concurrent writers to the same key are last-writer-wins.
type FileCache struct {
	dir       string
	logger    *slog.Logger
	collector *metrics.Collector
	now       func() time.Time
}

// Option configures a FileCache.
type Option func(*FileCache)

// WithCollector wires cache hit/miss accounting into a metrics collector.
func WithCollector(c *metrics.Collector) Option {
	return func(fc *FileCache) { fc.collector = c }
}

// WithClock injects a clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(fc *FileCache) { fc.now = now }
}

// New creates a FileCache rooted at dir, creating the directory if needed.
func New(dir string, logger *slog.Logger, opts ...Option) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	fc := &FileCache{dir: dir, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(fc)
	}
	return fc, nil
}

func (fc *FileCache) path(key string) string {
	safe := strings.NewReplacer("/", "_", ":", "_", "..", "_").Replace(key)
	return filepath.Join(fc.dir, safe+".json")
}

// Get returns the raw value for key if the record exists, deserializes
// cleanly and is younger than ttl (or ignoreTTL is set). Any read or decode
// failure is a miss, never an error.
func (fc *FileCache) Get(key string, ttl time.Duration, ignoreTTL bool) (json.RawMessage, bool) {
	raw, err := os.ReadFile(fc.path(key))
	if err != nil {
		fc.miss()
		return nil, false
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Timestamp.IsZero() {
		fc.logger.Debug("cache entry unreadable, treating as miss", "key", key)
		fc.miss()
		return nil, false
	}

	if !ignoreTTL && fc.now().Sub(e.Timestamp) >= ttl {
		fc.miss()
		return nil, false
	}

	fc.hit()
	return e.Value, true
}

// GetJSON decodes a cached value into out, with the same miss semantics.
func (fc *FileCache) GetJSON(key string, ttl time.Duration, ignoreTTL bool, out any) bool {
	raw, ok := fc.Get(key, ttl, ignoreTTL)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		fc.logger.Debug("cache value undecodable, treating as miss", "key", key)
		return false
	}
	return true
}

// Set overwrites the record for key with the current timestamp. The value
// must be JSON-serializable.
func (fc *FileCache) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data, err := json.Marshal(entry{Value: raw, Timestamp: fc.now().UTC()})
	if err != nil {
		return err
	}

	target := fc.path(key)
	tmp, err := os.CreateTemp(fc.dir, ".tmp-*")
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
	return os.Rename(tmpName, target)
}

// Clear removes the given keys, or every entry when called with none.
// Clearing an absent key is a no-op.
func (fc *FileCache) Clear(keys ...string) error {
	if len(keys) == 0 {
		entries, err := os.ReadDir(fc.dir)
		if err != nil {
			return err
		}
		for _, ent := range entries {
			if strings.HasSuffix(ent.Name(), ".json") {
				os.Remove(filepath.Join(fc.dir, ent.Name())) //nolint:errcheck
			}
		}
		return nil
	}
	for _, key := range keys {
		if err := os.Remove(fc.path(key)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (fc *FileCache) hit() {
	if fc.collector != nil {
		fc.collector.RecordCacheHit()
	}
}

func (fc *FileCache) miss() {
	if fc.collector != nil {
		fc.collector.RecordCacheMiss()
	}
}
