package infra

import (
	"sync/atomic"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	scansTotal         atomic.Uint64
	opportunitiesFound atomic.Uint64
	candidatesSelected atomic.Uint64
	fetchErrors        atomic.Uint64
	cacheHits          atomic.Uint64
	cacheMisses        atomic.Uint64
}

// RecordScan records one completed scan cycle and how many opportunities it produced.
func (m *Metrics) RecordScan(opportunities int) {
	m.scansTotal.Add(1)
	if opportunities > 0 {
		m.opportunitiesFound.Add(uint64(opportunities))
	}
}

// RecordSelection records a successful candidate selection.
func (m *Metrics) RecordSelection() {
	m.candidatesSelected.Add(1)
}

// RecordFetchError records a failed external fetch.
func (m *Metrics) RecordFetchError() {
	m.fetchErrors.Add(1)
}

// RecordCacheHit records a symbol-cache hit.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Add(1)
}

// RecordCacheMiss records a symbol-cache miss.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	ScansTotal         uint64
	OpportunitiesFound uint64
	CandidatesSelected uint64
	FetchErrors        uint64
	CacheHits          uint64
	CacheMisses        uint64
}

// Snapshot returns a consistent-enough view for reporting.
func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		ScansTotal:         m.scansTotal.Load(),
		OpportunitiesFound: m.opportunitiesFound.Load(),
		CandidatesSelected: m.candidatesSelected.Load(),
		FetchErrors:        m.fetchErrors.Load(),
		CacheHits:          m.cacheHits.Load(),
		CacheMisses:        m.cacheMisses.Load(),
	}
}
