package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config exposes store configuration options for consumers of the cache
// package. The zero value is valid: lazy eviction only, stats survive Clear.
type Config struct {
	// ResetStatsOnClear makes Clear also zero the cumulative hit/miss
	// counters. Off by default so stats remain useful for reporting across
	// invalidations.
	ResetStatsOnClear bool

	// SweepInterval enables a background sweep of expired entries. Zero
	// disables the sweep; expired entries are then removed lazily on read,
	// which is observationally equivalent.
	SweepInterval time.Duration
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		ResetStatsOnClear: false,
		SweepInterval:     0,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SweepInterval, validation.Min(time.Duration(0))),
	)
}
