package ratelimit

import (
	"sync"
	"time"
)

const latencyWindow = 128

// Stats holds the throttle counters. The zero value is ready to use.
type Stats struct {
	mu        sync.Mutex
	calls     int64
	throttled int64
	failed    int64
	retries   int64

	latencies [latencyWindow]time.Duration
	filled    int
	next      int
}

// Snapshot is a point-in-time copy of the throttle counters.
type Snapshot struct {
	Calls         int64
	Throttled     int64
	Failed        int64
	Retries       int64
	AvgLatency    time.Duration
	Buckets       int
	LockedBuckets int
	GlobalUntil   time.Time
}

func (s *Stats) call() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *Stats) throttle() {
	s.mu.Lock()
	s.throttled++
	s.mu.Unlock()
}

func (s *Stats) fail() {
	s.mu.Lock()
	s.failed++
	s.mu.Unlock()
}

func (s *Stats) retry() {
	s.mu.Lock()
	s.retries++
	s.mu.Unlock()
}

func (s *Stats) observe(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latencies[s.next] = d
	s.next = (s.next + 1) % latencyWindow
	if s.filled < latencyWindow {
		s.filled++
	}
}

func (s *Stats) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Calls:     s.calls,
		Throttled: s.throttled,
		Failed:    s.failed,
		Retries:   s.retries,
	}
	if s.filled > 0 {
		var total time.Duration
		for i := 0; i < s.filled; i++ {
			total += s.latencies[i]
		}
		snap.AvgLatency = total / time.Duration(s.filled)
	}
	return snap
}
