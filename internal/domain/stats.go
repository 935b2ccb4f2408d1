package domain

import (
	"sync"
	"sync/atomic"
	"time"
)

// RunStats aggregates counters for one batch invocation. Counter
// updates are atomic so workers can report concurrently; the failed
// key list and per-destination map take the mutex.
type RunStats struct {
	Total     int64
	Generated int64
	Indexed   int64
	Failed    int64
	Skipped   int64
	InFlight  int64

	StartTime time.Time
	EndTime   time.Time

	mu         sync.Mutex
	published  map[string]int64
	failedKeys []string
}

// NewRunStats creates stats for a run starting now.
func NewRunStats() *RunStats {
	return &RunStats{
		StartTime: time.Now(),
		published: make(map[string]int64),
	}
}

func (s *RunStats) AddTotal(n int)  { atomic.AddInt64(&s.Total, int64(n)) }
func (s *RunStats) IncGenerated()   { atomic.AddInt64(&s.Generated, 1) }
func (s *RunStats) IncIndexed()     { atomic.AddInt64(&s.Indexed, 1) }
func (s *RunStats) IncSkipped()     { atomic.AddInt64(&s.Skipped, 1) }
func (s *RunStats) ItemStarted()    { atomic.AddInt64(&s.InFlight, 1) }
func (s *RunStats) ItemFinished()   { atomic.AddInt64(&s.InFlight, -1) }

// IncPublished counts one successful upload for a destination.
func (s *RunStats) IncPublished(destination string) {
	s.mu.Lock()
	s.published[destination]++
	s.mu.Unlock()
}

// MarkFailed counts a failure and records the key for the summary.
func (s *RunStats) MarkFailed(key string) {
	atomic.AddInt64(&s.Failed, 1)
	s.mu.Lock()
	s.failedKeys = append(s.failedKeys, key)
	s.mu.Unlock()
}

// FailedKeys returns a copy of the keys that failed so far.
func (s *RunStats) FailedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, len(s.failedKeys))
	copy(keys, s.failedKeys)
	return keys
}

// StatsSnapshot is a point-in-time view of RunStats, safe to serialize.
type StatsSnapshot struct {
	Total      int64            `json:"total"`
	Generated  int64            `json:"generated"`
	Published  map[string]int64 `json:"published"`
	Indexed    int64            `json:"indexed"`
	Failed     int64            `json:"failed"`
	Skipped    int64            `json:"skipped"`
	InFlight   int64            `json:"in_flight"`
	FailedKeys []string         `json:"failed_keys"`
	StartedAt  time.Time        `json:"started_at"`
	UptimeSec  float64          `json:"uptime_sec"`
}

// Snapshot captures the current counters for reporting.
func (s *RunStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	published := make(map[string]int64, len(s.published))
	for k, v := range s.published {
		published[k] = v
	}
	keys := make([]string, len(s.failedKeys))
	copy(keys, s.failedKeys)
	s.mu.Unlock()

	return StatsSnapshot{
		Total:      atomic.LoadInt64(&s.Total),
		Generated:  atomic.LoadInt64(&s.Generated),
		Published:  published,
		Indexed:    atomic.LoadInt64(&s.Indexed),
		Failed:     atomic.LoadInt64(&s.Failed),
		Skipped:    atomic.LoadInt64(&s.Skipped),
		InFlight:   atomic.LoadInt64(&s.InFlight),
		FailedKeys: keys,
		StartedAt:  s.StartTime,
		UptimeSec:  time.Since(s.StartTime).Seconds(),
	}
}
