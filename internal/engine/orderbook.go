package engine

import (
	"kimp_radar/internal/domain"
)

// depthEpsilon absorbs floating-point residue when deciding whether a walk
// exhausted the requested size.
const depthEpsilon = 1e-12

// usableLevels drops levels with a non-positive price or size. Exchanges
// occasionally pad books with placeholder rows; those are noise, not errors.
func usableLevels(levels []domain.Level) []domain.Level {
	out := make([]domain.Level, 0, len(levels))
	for _, lv := range levels {
		if lv.Price > 0 && lv.Size > 0 {
			out = append(out, lv)
		}
	}
	return out
}

// FillPriceForBaseQty walks the levels best-price-first consuming baseQty
// units and returns the volume-weighted average fill price.
// Returns ErrInsufficientDepth when baseQty is non-positive or the visible
// depth cannot cover it.
func FillPriceForBaseQty(levels []domain.Level, baseQty float64) (float64, error) {
	if baseQty <= 0 {
		return 0, domain.ErrInsufficientDepth
	}

	remaining := baseQty
	cost := 0.0
	for _, lv := range usableLevels(levels) {
		take := lv.Size
		if take > remaining {
			take = remaining
		}
		cost += lv.Price * take
		remaining -= take
		if remaining <= depthEpsilon {
			break
		}
	}

	if remaining > depthEpsilon {
		return 0, domain.ErrInsufficientDepth
	}
	return cost / baseQty, nil
}

// FillForQuoteNotional walks the levels consuming notional currency units.
// A level whose full cost fits within the remaining notional is consumed
// entirely; otherwise a partial fraction of its size exhausts the notional
// exactly. Returns the filled base quantity and the VWAP price, or
// ErrInsufficientDepth when notional is non-positive or depth runs out first.
func FillForQuoteNotional(levels []domain.Level, notional float64) (baseQty, vwap float64, err error) {
	if notional <= 0 {
		return 0, 0, domain.ErrInsufficientDepth
	}

	remaining := notional
	cost := 0.0
	for _, lv := range usableLevels(levels) {
		levelCost := lv.Price * lv.Size
		if levelCost <= remaining {
			baseQty += lv.Size
			cost += levelCost
			remaining -= levelCost
		} else {
			baseQty += remaining / lv.Price
			cost += remaining
			remaining = 0
			break
		}
	}

	if remaining > depthEpsilon || baseQty <= 0 {
		return 0, 0, domain.ErrInsufficientDepth
	}
	return baseQty, cost / baseQty, nil
}

// QuoteFromOrderBook builds a synthetic quote at size baseQty by computing
// the base-quantity VWAP independently on the bid and ask side. This is the
// price the caller would actually get trading that size, and every premium
// downstream is computed from quotes built here.
func QuoteFromOrderBook(book domain.OrderBook, baseQty float64) (domain.Quote, error) {
	bid, err := FillPriceForBaseQty(book.Bids, baseQty)
	if err != nil {
		return domain.Quote{}, err
	}
	ask, err := FillPriceForBaseQty(book.Asks, baseQty)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{Bid: bid, Ask: ask}, nil
}
