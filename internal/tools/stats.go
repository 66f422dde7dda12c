package tools

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	at         time.Time
	durationMs int64
	failed     bool
}

// LatencySnapshot aggregates the recent calls of one tool.
type LatencySnapshot struct {
	Calls  int     `json:"calls"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Stats keeps per-tool call latencies within a rolling window. It is an
// Observer and only looks at completion events.
type Stats struct {
	mu      sync.Mutex
	samples map[string][]sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make(map[string][]sample),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

func (s *Stats) Observe(e Event) {
	if e.Status == StatusStart {
		return
	}
	s.Record(e.Tool, e.Duration, e.Status == StatusError)
}

// Record adds one completed call.
func (s *Stats) Record(tool string, d time.Duration, failed bool) {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples[tool] = append(prune(s.samples[tool], now.Add(-s.maxAge)), sample{at: now, durationMs: ms, failed: failed})
}

// Snapshot returns the aggregate of every tool with calls in the window.
func (s *Stats) Snapshot() map[string]LatencySnapshot {
	cutoff := s.now().Add(-s.maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]LatencySnapshot, len(s.samples))
	for tool, list := range s.samples {
		list = prune(list, cutoff)
		if len(list) == 0 {
			delete(s.samples, tool)
			continue
		}
		s.samples[tool] = list
		out[tool] = aggregate(list)
	}
	return out
}

func aggregate(list []sample) LatencySnapshot {
	values := make([]int64, 0, len(list))
	var sum int64
	errs := 0
	for _, sm := range list {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		if sm.failed {
			errs++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return LatencySnapshot{
		Calls:  len(values),
		Errors: errs,
		MinMs:  values[0],
		MaxMs:  values[len(values)-1],
		AvgMs:  float64(sum) / float64(len(values)),
		P50Ms:  percentile(values, 50),
		P95Ms:  percentile(values, 95),
		P99Ms:  percentile(values, 99),
	}
}

// prune drops samples older than cutoff in place.
func prune(list []sample, cutoff time.Time) []sample {
	kept := list[:0]
	for _, sm := range list {
		if !sm.at.Before(cutoff) {
			kept = append(kept, sm)
		}
	}
	return kept
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*weight
}
