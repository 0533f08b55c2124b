package engine

import (
	"math"
	"sort"

	"kimp_radar/internal/domain"
)

// ReverseOpportunities finds assets trading cheaper domestically than the
// overseas perp after FX conversion. Both quote maps are expected to be
// fee-adjusted already. Compares the domestic ask (cost to buy) against the
// overseas bid (proceeds to short); keeps premiums at or below thresholdPct
// and returns them most negative first.
func ReverseOpportunities(domestic, overseasPerp map[string]domain.Quote, fxRate, thresholdPct float64) []domain.Opportunity {
	opps := collect(domestic, overseasPerp, fxRate, domain.DirectionReverse, func(pct float64) bool {
		return pct <= thresholdPct
	})
	sort.Slice(opps, func(i, j int) bool {
		if opps[i].PremiumPct != opps[j].PremiumPct {
			return opps[i].PremiumPct < opps[j].PremiumPct
		}
		return opps[i].Asset < opps[j].Asset
	})
	return opps
}

// KimchiOpportunities finds assets trading richer domestically. Compares the
// domestic bid (proceeds to sell) against the overseas ask (cost to cover);
// keeps premiums at or above thresholdPct, richest first.
func KimchiOpportunities(domestic, overseasPerp map[string]domain.Quote, fxRate, thresholdPct float64) []domain.Opportunity {
	opps := collect(domestic, overseasPerp, fxRate, domain.DirectionKimchi, func(pct float64) bool {
		return pct >= thresholdPct
	})
	sort.Slice(opps, func(i, j int) bool {
		if opps[i].PremiumPct != opps[j].PremiumPct {
			return opps[i].PremiumPct > opps[j].PremiumPct
		}
		return opps[i].Asset < opps[j].Asset
	})
	return opps
}

// NearZeroOpportunities finds assets whose premium is closest to zero, for
// moving funds between venues at minimal loss. Uses reverse-direction sides
// (domestic ask vs overseas bid), keeps |premium| <= maxAbsPct, sorted by
// absolute premium ascending.
func NearZeroOpportunities(domestic, overseasPerp map[string]domain.Quote, fxRate, maxAbsPct float64) []domain.Opportunity {
	opps := collect(domestic, overseasPerp, fxRate, domain.DirectionReverse, func(pct float64) bool {
		return math.Abs(pct) <= maxAbsPct
	})
	sort.Slice(opps, func(i, j int) bool {
		ai, aj := math.Abs(opps[i].PremiumPct), math.Abs(opps[j].PremiumPct)
		if ai != aj {
			return ai < aj
		}
		return opps[i].Asset < opps[j].Asset
	})
	return opps
}

// collect walks the domestic quote map and emits one opportunity per asset
// present and valid on both venues whose premium passes keep. Missing or
// invalid quotes are skipped silently; market gaps are not errors.
func collect(domestic, overseasPerp map[string]domain.Quote, fxRate float64, dir domain.Direction, keep func(float64) bool) []domain.Opportunity {
	opps := make([]domain.Opportunity, 0)
	for asset, dq := range domestic {
		pq, ok := overseasPerp[asset]
		if !ok || !dq.IsValid() || !pq.IsValid() {
			continue
		}

		var domesticPrice, overseasPrice float64
		if dir == domain.DirectionKimchi {
			domesticPrice, overseasPrice = dq.Bid, pq.Ask
		} else {
			domesticPrice, overseasPrice = dq.Ask, pq.Bid
		}

		pct, err := PremiumPct(domesticPrice, overseasPrice, fxRate)
		if err != nil {
			continue
		}
		if !keep(pct) {
			continue
		}
		opps = append(opps, domain.Opportunity{
			Asset:         asset,
			Direction:     dir,
			PremiumPct:    pct,
			DomesticPrice: domesticPrice,
			OverseasPrice: overseasPrice,
			FxRate:        fxRate,
		})
	}
	return opps
}
