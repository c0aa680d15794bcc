// Package metrics counts what a RAPTOR query actually did, the way the
// teacher's pkg/metrics/metric.go counted CRP turn-cost stalling events
// for its bidirectional Dijkstra search. RAPTOR has no turn costs or
// stalling, so this tracks the quantities spec.md §4.5/§4.7 defines
// instead: rounds run, labels touched and the diagnostic
// percent_visited figure.
package metrics

import "sync/atomic"

// Metric aggregates counters across every query served by one engine
// instance. All fields are updated with atomic ops so a single *Metric
// can be shared across concurrently running sessions (spec.md §5: the
// timetable and its supporting counters are the only state a session
// does not own privately).
type Metric struct {
	queriesTotal   atomic.Int64
	queriesEmpty   atomic.Int64
	roundsTotal    atomic.Int64
	labelsWritten  atomic.Int64
	queryLatencyNs atomic.Int64
}

func New() *Metric {
	return &Metric{}
}

// RecordQuery records one completed query: how many rounds it ran, how
// long it took, and whether it returned any itinerary.
func (m *Metric) RecordQuery(rounds int, latencyNs int64, empty bool) {
	m.queriesTotal.Add(1)
	m.roundsTotal.Add(int64(rounds))
	m.queryLatencyNs.Add(latencyNs)
	if empty {
		m.queriesEmpty.Add(1)
	}
}

// RecordLabelWrite increments the count of label writes across all
// sessions, a cheap proxy for how much of the round scanner/transfer
// relaxer's work was actually done.
func (m *Metric) RecordLabelWrite(n int64) {
	m.labelsWritten.Add(n)
}

// Snapshot is a point-in-time, race-free read of every counter.
type Snapshot struct {
	QueriesTotal      int64
	QueriesEmpty      int64
	RoundsTotal       int64
	LabelsWritten     int64
	QueryLatencyNs    int64
	AvgRoundsPerQuery float64
}

func (m *Metric) Snapshot() Snapshot {
	queries := m.queriesTotal.Load()
	rounds := m.roundsTotal.Load()
	s := Snapshot{
		QueriesTotal:   queries,
		QueriesEmpty:   m.queriesEmpty.Load(),
		RoundsTotal:    rounds,
		LabelsWritten:  m.labelsWritten.Load(),
		QueryLatencyNs: m.queryLatencyNs.Load(),
	}
	if queries > 0 {
		s.AvgRoundsPerQuery = float64(rounds) / float64(queries)
	}
	return s
}

// PercentVisited computes spec.md §4.7's diagnostic field: the share of
// a timetable's stop-points whose best label was ever initialized
// during a search, out of the total stop-point count.
func PercentVisited(initialized, totalStopPoints int) float64 {
	if totalStopPoints == 0 {
		return 0
	}
	return 100 * float64(initialized) / float64(totalStopPoints)
}
