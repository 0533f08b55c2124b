// Package universe maintains the mapping of tradable base assets to each
// venue's market symbol, cached on disk so the expensive full-listing fetch
// amortizes across scans.
package universe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"kimp_radar/internal/domain"
)

// SchemaVersion guards the on-disk record layout. A mismatch is a miss,
// never an error.
const SchemaVersion = 1

// SymbolUniverse maps base assets to venue symbols plus the derived
// candidate sets for each arbitrage direction.
type SymbolUniverse struct {
	UpdatedAt           int64             `json:"updated_at_ts"`
	DomesticSymbols     map[string]string `json:"bithumb_krw_symbols"`
	OverseasSpotSymbols map[string]string `json:"gateio_spot_symbols"`
	OverseasPerpSymbols map[string]string `json:"gateio_perp_symbols"`
	ReverseCandidates   []string          `json:"reverse_candidates"`
	KimchiCandidates    []string          `json:"kimchi_candidates"`
}

// AgeSeconds is the record's age relative to now, floored at zero.
func (u *SymbolUniverse) AgeSeconds() float64 {
	age := time.Since(time.Unix(u.UpdatedAt, 0)).Seconds()
	if age < 0 {
		return 0
	}
	return age
}

type persistedUniverse struct {
	SchemaVersion int `json:"schema_version"`
	SymbolUniverse
}

// Cache owns one on-disk universe record at an explicit path. No implicit
// process-global slot; callers construct and hold their own cache.
type Cache struct {
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// NewCache builds a cache over the given file path.
func NewCache(path string, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{path: path, logger: logger, now: time.Now}
}

// Load reads the persisted record. Fails closed to a miss (nil, false) on a
// missing file, parse failure, schema mismatch, bad timestamp, or a record
// older than maxAge. maxAge <= 0 disables the staleness check.
func (c *Cache) Load(maxAge time.Duration) (*SymbolUniverse, bool) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, false
	}

	var record persistedUniverse
	if err := json.Unmarshal(data, &record); err != nil {
		c.logger.Warn("symbol cache unreadable, treating as miss", slog.Any("error", err))
		return nil, false
	}
	if record.SchemaVersion != SchemaVersion {
		return nil, false
	}
	if record.UpdatedAt <= 0 {
		return nil, false
	}
	if maxAge > 0 && c.now().Sub(time.Unix(record.UpdatedAt, 0)) > maxAge {
		return nil, false
	}
	if len(record.DomesticSymbols) == 0 || len(record.OverseasSpotSymbols) == 0 || len(record.OverseasPerpSymbols) == 0 {
		return nil, false
	}

	u := record.SymbolUniverse
	u.ReverseCandidates = filterCandidates(u.ReverseCandidates, u.DomesticSymbols, u.OverseasPerpSymbols)
	u.KimchiCandidates = filterCandidates(u.KimchiCandidates, u.DomesticSymbols, u.OverseasPerpSymbols, u.OverseasSpotSymbols)
	return &u, true
}

// filterCandidates re-applies the subset invariant after a load: every
// candidate must still exist in each required symbol map. A nil list is
// derived from scratch by intersecting the maps.
func filterCandidates(candidates []string, maps ...map[string]string) []string {
	if candidates == nil {
		return intersectKeys(maps...)
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if inAll(c, maps...) {
			out = append(out, c)
		}
	}
	return out
}

func inAll(key string, maps ...map[string]string) bool {
	for _, m := range maps {
		if _, ok := m[key]; !ok {
			return false
		}
	}
	return true
}

func intersectKeys(maps ...map[string]string) []string {
	if len(maps) == 0 {
		return nil
	}
	out := make([]string, 0, len(maps[0]))
	for key := range maps[0] {
		if inAll(key, maps[1:]...) {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out
}

// Refresh queries live market listings from both venues, rebuilds the
// universe, and persists it atomically. The overseas lister must return both
// spot and perp markets, distinguished by Kind.
func (c *Cache) Refresh(ctx context.Context, domestic, overseas domain.MarketLister) (*SymbolUniverse, error) {
	domesticMarkets, err := domestic.ListMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list domestic markets: %w", err)
	}
	overseasMarkets, err := overseas.ListMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list overseas markets: %w", err)
	}

	domesticSymbols := symbolsByBase(domesticMarkets, "KRW", nil)
	spotSymbols := symbolsByBase(overseasMarkets, "USDT", kindIs(domain.MarketSpot))
	perpSymbols := symbolsByBase(overseasMarkets, "USDT", kindIs(domain.MarketPerp))

	u := &SymbolUniverse{
		UpdatedAt:           c.now().Unix(),
		DomesticSymbols:     domesticSymbols,
		OverseasSpotSymbols: spotSymbols,
		OverseasPerpSymbols: perpSymbols,
		ReverseCandidates:   intersectKeys(domesticSymbols, perpSymbols),
		KimchiCandidates:    intersectKeys(domesticSymbols, perpSymbols, spotSymbols),
	}

	if err := c.save(u); err != nil {
		c.logger.Warn("symbol cache write failed", slog.Any("error", err))
	}
	return u, nil
}

func kindIs(kind domain.MarketKind) func(domain.Market) bool {
	return func(m domain.Market) bool { return m.Kind == kind }
}

// symbolsByBase builds base -> venue-symbol for active markets quoted in the
// given currency. The quote currency itself never becomes a base.
func symbolsByBase(markets []domain.Market, quote string, keep func(domain.Market) bool) map[string]string {
	out := make(map[string]string)
	for _, m := range markets {
		if !m.Active || m.Quote != quote || m.Base == "" {
			continue
		}
		if keep != nil && !keep(m) {
			continue
		}
		base := strings.ToUpper(m.Base)
		if base == quote {
			continue
		}
		out[base] = m.Symbol
	}
	return out
}

// save persists the record with write-temp-then-rename so a concurrent
// reader never observes a partial file.
func (c *Cache) save(u *SymbolUniverse) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return err
	}

	record := persistedUniverse{SchemaVersion: SchemaVersion, SymbolUniverse: *u}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Get returns the cached universe when fresh enough, refreshing otherwise.
func (c *Cache) Get(ctx context.Context, domestic, overseas domain.MarketLister, maxAge time.Duration, forceRefresh bool) (*SymbolUniverse, error) {
	if !forceRefresh {
		if cached, ok := c.Load(maxAge); ok {
			c.logger.Info("symbol cache hit",
				slog.String("path", c.path),
				slog.Float64("age_hours", cached.AgeSeconds()/3600.0),
			)
			return cached, nil
		}
	}

	c.logger.Info("symbol cache refresh", slog.String("path", c.path))
	u, err := c.Refresh(ctx, domestic, overseas)
	if err != nil {
		return nil, err
	}
	c.logger.Info("symbol cache updated",
		slog.Int("reverse_candidates", len(u.ReverseCandidates)),
		slog.Int("kimchi_candidates", len(u.KimchiCandidates)),
	)
	return u, nil
}
