// Package perf keeps a rolling window of request and query timings for the
// admin performance endpoint.
package perf

import (
	"math"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Label      string // "METHOD pattern" for requests, "VERB table" for queries
	StatusCode int    // 0 for queries
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// When full, the oldest entries are overwritten. Aggregation happens only
// on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   atomic.Int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: none; size <= 0 selects DefaultRingSize
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry, overwriting the oldest when the buffer is full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	c.count.Add(1)
}

// TotalRecorded returns the number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return c.count.Load()
}

// Latency summarises one kind of entry.
type Latency struct {
	Count int     `json:"count"`
	P50Ms float64 `json:"p50Ms"`
	P95Ms float64 `json:"p95Ms"`
	P99Ms float64 `json:"p99Ms"`
	MaxMs float64 `json:"maxMs"`
}

// LabelStat aggregates timing for one route or statement.
type LabelStat struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	AvgMs   float64 `json:"avgMs"`
	MaxMs   float64 `json:"maxMs"`
	TotalMs float64 `json:"-"`
}

// Snapshot is the aggregated view served to admins.
type Snapshot struct {
	Since          time.Time   `json:"since"`
	TotalRecorded  int64       `json:"totalRecorded"`
	Requests       Latency     `json:"requests"`
	Queries        Latency     `json:"queries"`
	ServerErrors   int         `json:"serverErrors"`   // 5xx responses in the window
	Throttled      int         `json:"throttled"`      // 429 responses in the window
	SlowestRoutes  []LabelStat `json:"slowestRoutes"`  // by average duration
	SlowestQueries []LabelStat `json:"slowestQueries"` // by average duration
}

// Snapshot aggregates the entries recorded at or after since.
// Sorting makes this expensive; call it on demand only.
// PRE: topN >= 0
// POST: Slowest lists hold at most topN items, slowest first
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	snap := Snapshot{Since: since, TotalRecorded: c.TotalRecorded()}
	var reqDurations, queryDurations []float64
	routes := make(map[string]*LabelStat)
	queries := make(map[string]*LabelStat)

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			reqDurations = append(reqDurations, e.DurationMs)
			accumulate(routes, e)
			switch {
			case e.StatusCode >= http.StatusInternalServerError:
				snap.ServerErrors++
			case e.StatusCode == http.StatusTooManyRequests:
				snap.Throttled++
			}
		case KindQuery:
			queryDurations = append(queryDurations, e.DurationMs)
			accumulate(queries, e)
		}
	}

	snap.Requests = summarise(reqDurations)
	snap.Queries = summarise(queryDurations)
	snap.SlowestRoutes = topByAvg(routes, topN)
	snap.SlowestQueries = topByAvg(queries, topN)
	return snap
}

func accumulate(into map[string]*LabelStat, e Entry) {
	s, ok := into[e.Label]
	if !ok {
		s = &LabelStat{Label: e.Label}
		into[e.Label] = s
	}
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
}

func summarise(durations []float64) Latency {
	if len(durations) == 0 {
		return Latency{}
	}
	sort.Float64s(durations)
	return Latency{
		Count: len(durations),
		P50Ms: percentile(durations, 50),
		P95Ms: percentile(durations, 95),
		P99Ms: percentile(durations, 99),
		MaxMs: durations[len(durations)-1],
	}
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

func topByAvg(stats map[string]*LabelStat, n int) []LabelStat {
	list := make([]LabelStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Label < list[j].Label
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
