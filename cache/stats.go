package cache

// Stats is a point-in-time snapshot of a store's counters. Hits and Misses
// accumulate for the lifetime of the store; Entries counts live entries only.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// Requests returns the total number of lookups observed.
func (s Stats) Requests() uint64 {
	return s.Hits + s.Misses
}

// HitRate returns hits / (hits + misses), or 0 when no lookups happened.
func (s Stats) HitRate() float64 {
	total := s.Requests()
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
