package pipeline

import (
	"sync"
	"time"
)

// SeedSource yields obfuscator seeds, one per source unit.
type SeedSource interface {
	Next() int64
}

// ClockSeeds derives seeds from wall-clock nanoseconds. Seeds are strictly
// increasing within one process even if the clock repeats a reading.
type ClockSeeds struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewClockSeeds creates a clock-based seed source.
func NewClockSeeds() *ClockSeeds {
	return &ClockSeeds{now: time.Now}
}

// Next returns the next seed.
func (c *ClockSeeds) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := c.now().UnixNano()
	if n <= c.last {
		n = c.last + 1
	}
	c.last = n
	return n
}

// FixedSeed returns the same seed for every unit, for reproducible builds.
type FixedSeed int64

// Next returns the fixed seed.
func (f FixedSeed) Next() int64 { return int64(f) }
