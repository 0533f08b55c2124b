package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"kimp_radar/internal/chains"
	"kimp_radar/internal/domain"
	"kimp_radar/internal/engine"
	"kimp_radar/internal/infra"
	"kimp_radar/internal/infra/storage"
	"kimp_radar/internal/universe"
)

// refineLimit caps how many prefiltered candidates get the expensive
// per-asset order-book walk.
const refineLimit = 5

// DomesticVenue is the surface the scanner needs from the KRW exchange.
type DomesticVenue interface {
	domain.MarketLister
	domain.TransferStatusSource
	FetchQuotes(ctx context.Context) (map[string]domain.Quote, error)
	FetchOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error)
}

// OverseasVenue is the surface the scanner needs from the USDT exchange.
type OverseasVenue interface {
	domain.MarketLister
	domain.TransferStatusSource
	SpotQuotes(ctx context.Context) (map[string]domain.Quote, error)
	PerpQuotes(ctx context.Context) (map[string]domain.Quote, error)
	Perp() domain.QuoteSource
}

// Scanner runs the full premium scan: coarse ticker pass, depth-aware
// refinement, transferable-candidate selection, and history persistence.
type Scanner struct {
	cfg       *infra.Config
	logger    *slog.Logger
	metrics   *infra.Metrics
	universe  *universe.Cache
	bithumb   DomesticVenue
	gateio    OverseasVenue
	rate      domain.ExchangeRateProvider
	selector  *engine.Selector
	estimator *chains.EtaEstimator
	store     *storage.Storage

	// Reference prices from the latest scan, consulted by the live tick
	// feed between polls.
	liveMu        sync.RWMutex
	symbolToAsset map[string]string
	reverseRef    map[string]float64
	kimchiRef     map[string]float64
}

// NewScanner wires a scanner over the two venues. store may be nil to
// disable history persistence.
func NewScanner(
	cfg *infra.Config,
	logger *slog.Logger,
	metrics *infra.Metrics,
	universeCache *universe.Cache,
	bithumb DomesticVenue,
	gateio OverseasVenue,
	rate domain.ExchangeRateProvider,
	store *storage.Storage,
) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &infra.Metrics{}
	}
	normalizer := chains.NewDefaultNormalizer()
	return &Scanner{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		universe:  universeCache,
		bithumb:   bithumb,
		gateio:    gateio,
		rate:      rate,
		selector:  engine.NewSelector(bithumb, gateio, normalizer, logger),
		estimator: chains.NewDefaultEtaEstimator(),
		store:     store,
	}
}

// ScanResult is one completed scan cycle.
type ScanResult struct {
	Direction     domain.Direction
	FxRate        float64
	Opportunities []domain.Opportunity
	Selection     *engine.Selection
	Etas          []chains.Eta
	At            time.Time
}

// ScanOnce runs a single scan cycle for one direction.
func (s *Scanner) ScanOnce(ctx context.Context, direction domain.Direction) (*ScanResult, error) {
	maxAge := time.Duration(s.cfg.Cache.MaxAgeSec) * time.Second
	u, ok := s.universe.Load(maxAge)
	if ok {
		s.metrics.RecordCacheHit()
	} else {
		s.metrics.RecordCacheMiss()
		var err error
		u, err = s.universe.Refresh(ctx, s.bithumb, s.gateio)
		if err != nil {
			s.metrics.RecordFetchError()
			return nil, fmt.Errorf("symbol universe: %w", err)
		}
	}

	fx := s.rate.GetRate()
	if !fx.IsPositive() {
		return nil, fmt.Errorf("conversion rate not available yet: %w", domain.ErrUnavailable)
	}
	fxRate := fx.InexactFloat64()

	domesticRaw, err := s.bithumb.FetchQuotes(ctx)
	if err != nil {
		s.metrics.RecordFetchError()
		return nil, fmt.Errorf("domestic quotes: %w", err)
	}
	perpRaw, err := s.gateio.PerpQuotes(ctx)
	if err != nil {
		s.metrics.RecordFetchError()
		return nil, fmt.Errorf("overseas perp quotes: %w", err)
	}
	spotRaw, err := s.gateio.SpotQuotes(ctx)
	if err != nil {
		s.metrics.RecordFetchError()
		return nil, fmt.Errorf("overseas spot quotes: %w", err)
	}

	domesticFee := s.cfg.Scan.BithumbTakerFeeRate.InexactFloat64()
	spotFee := s.cfg.Scan.GateIOSpotTakerFeeRate.InexactFloat64()
	perpFee := s.cfg.Scan.GateIOPerpTakerFeeRate.InexactFloat64()

	domestic := adjustQuotes(byAsset(u.DomesticSymbols, domesticRaw), domesticFee, domesticFee)
	perp := adjustQuotes(byAsset(u.OverseasPerpSymbols, perpRaw), perpFee, perpFee)
	spot := adjustQuotes(byAsset(u.OverseasSpotSymbols, spotRaw), spotFee, spotFee)

	s.updateLiveRefs(u.DomesticSymbols, perp, fxRate)

	var opps []domain.Opportunity
	var mode domain.BasisMode
	var route chains.TransferRoute
	switch direction {
	case domain.DirectionReverse:
		opps = engine.ReverseOpportunities(domestic, perp, fxRate, s.cfg.Scan.ReverseThresholdPct.InexactFloat64())
		mode = domain.BasisUnwind
		route = chains.RouteDomesticToOverseas
	case domain.DirectionKimchi:
		opps = engine.KimchiOpportunities(domestic, perp, fxRate, s.cfg.Scan.KimchiThresholdPct.InexactFloat64())
		mode = domain.BasisEntry
		route = chains.RouteOverseasToDomestic
	default:
		return nil, fmt.Errorf("%w: unknown direction %d", domain.ErrInvalidInput, direction)
	}

	opps = s.refine(ctx, direction, opps, u, fxRate, domesticFee, perpFee)
	s.metrics.RecordScan(len(opps))

	result := &ScanResult{
		Direction:     direction,
		FxRate:        fxRate,
		Opportunities: opps,
		At:            time.Now(),
	}

	if len(opps) > 0 {
		selection, err := s.selector.SelectTransferable(ctx, opps, spot, perp, s.cfg.Scan.BasisThresholdPct.InexactFloat64(), mode)
		if err != nil && !errors.Is(err, domain.ErrNoCandidate) {
			return nil, err
		}
		if selection != nil {
			s.metrics.RecordSelection()
			result.Selection = selection
			result.Etas = s.estimator.BuildEtas(selection.ChainPairs, selection.Domestic, selection.Overseas, route)
		}
	}

	s.persist(result)
	s.logResult(result)
	return result, nil
}

// refine replaces coarse ticker premiums with depth-aware VWAP premiums for
// the top candidates. The executable size comes from walking the perp book
// with the configured notional; both legs are then re-quoted at that size.
// Candidates whose book cannot carry the size, or whose refined premium no
// longer passes the threshold, drop out.
func (s *Scanner) refine(ctx context.Context, direction domain.Direction, opps []domain.Opportunity, u *universe.SymbolUniverse, fxRate, domesticFee, perpFee float64) []domain.Opportunity {
	if len(opps) == 0 {
		return opps
	}
	limit := refineLimit
	if len(opps) < limit {
		limit = len(opps)
	}
	notional := s.cfg.Scan.ChunkNotionalUSDT.InexactFloat64()
	depth := s.cfg.Scan.OrderbookDepth

	refined := make([]domain.Opportunity, 0, limit)
	for _, opp := range opps[:limit] {
		domesticSymbol := u.DomesticSymbols[opp.Asset]
		perpSymbol := u.OverseasPerpSymbols[opp.Asset]
		if domesticSymbol == "" || perpSymbol == "" {
			continue
		}

		perpBook, err := s.gateio.Perp().FetchOrderBook(ctx, perpSymbol, depth)
		if err != nil {
			s.metrics.RecordFetchError()
			s.logger.Warn("perp book fetch failed", slog.String("asset", opp.Asset), slog.Any("error", err))
			continue
		}

		// Reverse shorts the perp, so the notional fills against the bids;
		// kimchi buys it back against the asks.
		sizingSide := perpBook.Bids
		if direction == domain.DirectionKimchi {
			sizingSide = perpBook.Asks
		}
		baseQty, _, err := engine.FillForQuoteNotional(sizingSide, notional)
		if err != nil {
			s.logger.Debug("perp book too thin for chunk", slog.String("asset", opp.Asset))
			continue
		}

		domesticBook, err := s.bithumb.FetchOrderBook(ctx, domesticSymbol, depth)
		if err != nil {
			s.metrics.RecordFetchError()
			s.logger.Warn("domestic book fetch failed", slog.String("asset", opp.Asset), slog.Any("error", err))
			continue
		}

		domesticQuote, err := engine.QuoteFromOrderBook(domesticBook, baseQty)
		if err != nil {
			s.logger.Debug("domestic book too thin for chunk", slog.String("asset", opp.Asset))
			continue
		}
		perpQuote, err := engine.QuoteFromOrderBook(perpBook, baseQty)
		if err != nil {
			continue
		}

		domesticQuote, err = engine.FeeAdjustedQuote(domesticQuote, domesticFee, domesticFee)
		if err != nil {
			continue
		}
		perpQuote, err = engine.FeeAdjustedQuote(perpQuote, perpFee, perpFee)
		if err != nil {
			continue
		}

		single := map[string]domain.Quote{opp.Asset: domesticQuote}
		perpSingle := map[string]domain.Quote{opp.Asset: perpQuote}
		var passed []domain.Opportunity
		if direction == domain.DirectionKimchi {
			passed = engine.KimchiOpportunities(single, perpSingle, fxRate, s.cfg.Scan.KimchiThresholdPct.InexactFloat64())
		} else {
			passed = engine.ReverseOpportunities(single, perpSingle, fxRate, s.cfg.Scan.ReverseThresholdPct.InexactFloat64())
		}
		if len(passed) == 1 {
			refined = append(refined, passed[0])
		}
	}

	// Re-rank after refinement.
	sort.Slice(refined, func(i, j int) bool {
		if direction == domain.DirectionKimchi {
			if refined[i].PremiumPct != refined[j].PremiumPct {
				return refined[i].PremiumPct > refined[j].PremiumPct
			}
		} else {
			if refined[i].PremiumPct != refined[j].PremiumPct {
				return refined[i].PremiumPct < refined[j].PremiumPct
			}
		}
		return refined[i].Asset < refined[j].Asset
	})
	return refined
}

// updateLiveRefs snapshots the FX-converted overseas perp sides per domestic
// market symbol so ticks arriving between polls can be priced immediately.
func (s *Scanner) updateLiveRefs(domesticSymbols map[string]string, perp map[string]domain.Quote, fxRate float64) {
	symbolToAsset := make(map[string]string, len(domesticSymbols))
	reverseRef := make(map[string]float64, len(perp))
	kimchiRef := make(map[string]float64, len(perp))
	for asset, symbol := range domesticSymbols {
		symbolToAsset[symbol] = asset
		if q, ok := perp[asset]; ok {
			reverseRef[asset] = q.Bid * fxRate
			kimchiRef[asset] = q.Ask * fxRate
		}
	}

	s.liveMu.Lock()
	s.symbolToAsset = symbolToAsset
	s.reverseRef = reverseRef
	s.kimchiRef = kimchiRef
	s.liveMu.Unlock()
}

// ObserveTick prices a live domestic trade against the latest scan's
// overseas references and returns the indicative reverse-side premium.
// Returns false before the first scan or for markets outside the universe.
// Premiums crossing either configured threshold are surfaced at info level
// so the operator sees windows opening between polls.
func (s *Scanner) ObserveTick(tick infra.Tick) (float64, bool) {
	if tick.Price <= 0 {
		return 0, false
	}

	s.liveMu.RLock()
	asset, ok := s.symbolToAsset[tick.Symbol]
	reverseRef := s.reverseRef[asset]
	kimchiRef := s.kimchiRef[asset]
	s.liveMu.RUnlock()
	if !ok || reverseRef <= 0 {
		return 0, false
	}

	reversePct := (tick.Price - reverseRef) / reverseRef * 100.0
	if reversePct <= s.cfg.Scan.ReverseThresholdPct.InexactFloat64() {
		s.logger.Info("live premium signal",
			slog.String("direction", domain.DirectionReverse.String()),
			slog.String("asset", asset),
			slog.Float64("premium_pct", reversePct),
		)
		return reversePct, true
	}

	if kimchiRef > 0 {
		kimchiPct := (tick.Price - kimchiRef) / kimchiRef * 100.0
		if kimchiPct >= s.cfg.Scan.KimchiThresholdPct.InexactFloat64() && !s.cfg.Scan.KimchiThresholdPct.IsZero() {
			s.logger.Info("live premium signal",
				slog.String("direction", domain.DirectionKimchi.String()),
				slog.String("asset", asset),
				slog.Float64("premium_pct", kimchiPct),
			)
		}
	}
	return reversePct, true
}

// byAsset rekeys a venue-symbol quote map by base asset.
func byAsset(symbols map[string]string, quotes map[string]domain.Quote) map[string]domain.Quote {
	out := make(map[string]domain.Quote, len(symbols))
	for asset, symbol := range symbols {
		if q, ok := quotes[symbol]; ok {
			out[asset] = q
		}
	}
	return out
}

// adjustQuotes applies taker fees to every quote, dropping unusable ones.
func adjustQuotes(quotes map[string]domain.Quote, buyFee, sellFee float64) map[string]domain.Quote {
	out := make(map[string]domain.Quote, len(quotes))
	for asset, q := range quotes {
		adj, err := engine.FeeAdjustedQuote(q, buyFee, sellFee)
		if err != nil {
			continue
		}
		out[asset] = adj
	}
	return out
}

func (s *Scanner) persist(result *ScanResult) {
	if s.store == nil || len(result.Opportunities) == 0 {
		return
	}

	records := make([]domain.ScanRecord, 0, len(result.Opportunities))
	for _, opp := range result.Opportunities {
		record := domain.ScanRecord{
			CreatedAt:     result.At,
			Direction:     opp.Direction.String(),
			Asset:         opp.Asset,
			PremiumPct:    opp.PremiumPct,
			DomesticPrice: opp.DomesticPrice,
			OverseasPrice: opp.OverseasPrice,
			FxRate:        opp.FxRate,
		}
		if result.Selection != nil && result.Selection.Asset == opp.Asset {
			record.Selected = true
			if len(result.Etas) > 0 {
				record.Chain = result.Etas[0].CanonicalChain
				if result.Etas[0].Minutes != nil {
					record.EtaMinutes = *result.Etas[0].Minutes
				}
			}
		}
		records = append(records, record)
	}

	if err := s.store.SaveScanRecords(records); err != nil {
		s.logger.Warn("scan history write failed", slog.Any("error", err))
	}
}

func (s *Scanner) logResult(result *ScanResult) {
	attrs := []any{
		slog.String("direction", result.Direction.String()),
		slog.Int("opportunities", len(result.Opportunities)),
		slog.Float64("fx_rate", result.FxRate),
	}
	if result.Selection != nil {
		attrs = append(attrs, slog.String("selected", result.Selection.Asset))
		if len(result.Etas) > 0 {
			attrs = append(attrs, slog.String("chain", result.Etas[0].CanonicalChain))
			if result.Etas[0].Minutes != nil {
				attrs = append(attrs, slog.Int("eta_minutes", *result.Etas[0].Minutes))
			}
		}
	}
	s.logger.Info("scan complete", attrs...)
}

// Run scans both directions on the configured interval until the context is
// cancelled.
func (s *Scanner) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.Scan.PollIntervalSec) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.scanBoth(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.scanBoth(ctx)
		}
	}
}

func (s *Scanner) scanBoth(ctx context.Context) {
	for _, direction := range []domain.Direction{domain.DirectionReverse, domain.DirectionKimchi} {
		if _, err := s.ScanOnce(ctx, direction); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error("scan failed",
				slog.String("direction", direction.String()),
				slog.Any("error", err),
			)
		}
	}
}
