package engine

import (
	"context"
	"errors"
	"log/slog"

	"kimp_radar/internal/chains"
	"kimp_radar/internal/domain"
)

// Selection is the outcome of a transferable-candidate search: the first
// asset, in opportunity order, whose basis and cross-venue transferability
// both pass.
type Selection struct {
	Asset      string
	Domestic   domain.TransferStatus
	Overseas   domain.TransferStatus
	ChainPairs []chains.Pair
}

// basisSides picks the spot/perp execution sides a basis check compares.
// Unwind sells spot and buys the perp back; entry buys spot and sells the
// perp short.
func basisSides(spot, perp domain.Quote, mode domain.BasisMode) (spotPrice, perpPrice float64) {
	if mode == domain.BasisUnwind {
		return spot.Bid, perp.Ask
	}
	return spot.Ask, perp.Bid
}

// SelectCandidate returns the first opportunity, in list order, whose
// overseas spot/perp basis is at or below basisThresholdPct. Opportunities
// with a missing or invalid quote on either leg are skipped.
// Returns ErrNoCandidate when nothing passes.
func SelectCandidate(opps []domain.Opportunity, spotQuotes, perpQuotes map[string]domain.Quote, basisThresholdPct float64, mode domain.BasisMode) (string, error) {
	for _, opp := range opps {
		spot, okSpot := spotQuotes[opp.Asset]
		perp, okPerp := perpQuotes[opp.Asset]
		if !okSpot || !okPerp || !spot.IsValid() || !perp.IsValid() {
			continue
		}

		spotPrice, perpPrice := basisSides(spot, perp, mode)
		basis, err := BasisPct(spotPrice, perpPrice)
		if err != nil {
			continue
		}
		if basis <= basisThresholdPct {
			return opp.Asset, nil
		}
	}
	return "", domain.ErrNoCandidate
}

// Selector runs the two-gate transferable-candidate search: a basis gate
// over the opportunity ranking, then a fail-closed transferability gate over
// the survivors. First match in basis-gate order wins; profitability ranking
// is never reordered by transfer quality.
type Selector struct {
	domestic   domain.TransferStatusSource
	overseas   domain.TransferStatusSource
	normalizer *chains.Normalizer
	logger     *slog.Logger
}

// NewSelector wires a selector over the two venues' transfer-status sources.
func NewSelector(domestic, overseas domain.TransferStatusSource, normalizer *chains.Normalizer, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{domestic: domestic, overseas: overseas, normalizer: normalizer, logger: logger}
}

// SelectTransferable returns the first candidate, in opportunity order, that
// passes both the basis gate and the transferability gate. A candidate is
// transferable only when BOTH venues report deposit and withdraw exactly
// true and the venues share at least one canonical chain. Unknown flags
// disqualify. Returns ErrNoCandidate when nothing passes.
func (s *Selector) SelectTransferable(ctx context.Context, opps []domain.Opportunity, spotQuotes, perpQuotes map[string]domain.Quote, basisThresholdPct float64, mode domain.BasisMode) (*Selection, error) {
	basisOk := make([]string, 0, len(opps))
	for _, opp := range opps {
		spot, okSpot := spotQuotes[opp.Asset]
		perp, okPerp := perpQuotes[opp.Asset]
		if !okSpot || !okPerp || !spot.IsValid() || !perp.IsValid() {
			continue
		}
		spotPrice, perpPrice := basisSides(spot, perp, mode)
		basis, err := BasisPct(spotPrice, perpPrice)
		if err != nil {
			continue
		}
		if basis <= basisThresholdPct {
			basisOk = append(basisOk, opp.Asset)
		}
	}
	if len(basisOk) == 0 {
		return nil, domain.ErrNoCandidate
	}

	domesticStatuses := s.fetchStatuses(ctx, s.domestic, basisOk)
	overseasStatuses := s.fetchStatuses(ctx, s.overseas, basisOk)

	for _, asset := range basisOk {
		d, okD := domesticStatuses[asset]
		o, okO := overseasStatuses[asset]
		if !okD || !okO {
			s.logger.Info("candidate rejected: no transfer status", slog.String("asset", asset))
			continue
		}
		if !d.Transferable() {
			s.logger.Info("candidate rejected: domestic transfer blocked",
				slog.String("asset", asset),
				slog.String("deposit", d.Deposit.String()),
				slog.String("withdraw", d.Withdraw.String()),
			)
			continue
		}
		if !o.Transferable() {
			s.logger.Info("candidate rejected: overseas transfer blocked",
				slog.String("asset", asset),
				slog.String("deposit", o.Deposit.String()),
				slog.String("withdraw", o.Withdraw.String()),
			)
			continue
		}

		pairs := s.normalizer.CommonChainPairs(d.Chains, o.Chains)
		if len(pairs) == 0 {
			s.logger.Info("candidate rejected: no common chain", slog.String("asset", asset))
			continue
		}

		return &Selection{Asset: asset, Domestic: d, Overseas: o, ChainPairs: pairs}, nil
	}
	return nil, domain.ErrNoCandidate
}

// fetchStatuses degrades a failed batch fetch to an empty map so the
// fail-closed gate rejects the affected assets instead of aborting the scan.
func (s *Selector) fetchStatuses(ctx context.Context, src domain.TransferStatusSource, assets []string) map[string]domain.TransferStatus {
	statuses, err := src.FetchTransferStatuses(ctx, assets)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Warn("transfer status fetch failed", slog.Any("error", err))
		}
		return map[string]domain.TransferStatus{}
	}
	return statuses
}
