// Package metrics provides a small thread-safe collector for request
// latencies and cache hit ratios, with Prometheus text export. Collectors
// are explicit instances wired in by the caller, not package globals.
package metrics

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Collector records latency samples and cache hit/miss counts.
type Collector struct {
	mu          sync.Mutex
	latencies   map[string][]float64
	cacheHits   int
	cacheMisses int
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{latencies: make(map[string][]float64)}
}

// RecordLatency records a latency measurement in milliseconds.
func (c *Collector) RecordLatency(name string, durationMs float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies[name] = append(c.latencies[name], durationMs)
}

// RecordCacheHit records a cache hit.
func (c *Collector) RecordCacheHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheHits++
}

// RecordCacheMiss records a cache miss.
func (c *Collector) RecordCacheMiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cacheMisses++
}

// Snapshot returns mean latencies per metric plus the cache hit ratio.
func (c *Collector) Snapshot() map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]float64, len(c.latencies)+1)
	for name, samples := range c.latencies {
		var sum float64
		for _, s := range samples {
			sum += s
		}
		if len(samples) > 0 {
			out[name] = sum / float64(len(samples))
		} else {
			out[name] = 0
		}
	}

	total := c.cacheHits + c.cacheMisses
	if total > 0 {
		out["cache_hit_ratio"] = float64(c.cacheHits) / float64(total)
	} else {
		out["cache_hit_ratio"] = 0
	}
	return out
}

// ExportPrometheus renders the snapshot in Prometheus text format.
func (c *Collector) ExportPrometheus() string {
	snap := c.Snapshot()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		fmt.Fprintf(&b, "# TYPE %s gauge\n", name)
		fmt.Fprintf(&b, "%s %.6f\n", name, snap[name])
	}
	return b.String()
}

// Reset clears all recorded samples and counters.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latencies = make(map[string][]float64)
	c.cacheHits = 0
	c.cacheMisses = 0
}
