package infra

import (
	"testing"
)

func TestMetrics_RecordScan(t *testing.T) {
	m := &Metrics{}

	m.RecordScan(3)
	m.RecordScan(0)
	m.RecordScan(2)

	snap := m.Snapshot()

	if snap.ScansTotal != 3 {
		t.Errorf("Expected 3 scans, got %d", snap.ScansTotal)
	}
	if snap.OpportunitiesFound != 5 {
		t.Errorf("Expected 5 opportunities, got %d", snap.OpportunitiesFound)
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := &Metrics{}

	m.RecordSelection()
	m.RecordFetchError()
	m.RecordFetchError()
	m.RecordCacheHit()
	m.RecordCacheMiss()

	snap := m.Snapshot()
	if snap.CandidatesSelected != 1 {
		t.Errorf("Expected 1 selection, got %d", snap.CandidatesSelected)
	}
	if snap.FetchErrors != 2 {
		t.Errorf("Expected 2 fetch errors, got %d", snap.FetchErrors)
	}
	if snap.CacheHits != 1 || snap.CacheMisses != 1 {
		t.Errorf("Expected 1 hit and 1 miss, got %d/%d", snap.CacheHits, snap.CacheMisses)
	}
}
