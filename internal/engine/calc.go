package engine

import (
	"fmt"

	"kimp_radar/internal/domain"
)

// ApplyFee adjusts an execution price for a taker fee. Buys get more
// expensive, sells yield less.
func ApplyFee(price, feeRate float64, side domain.Side) (float64, error) {
	if price <= 0 {
		return 0, fmt.Errorf("%w: price must be > 0, got %v", domain.ErrInvalidInput, price)
	}
	if feeRate < 0 {
		return 0, fmt.Errorf("%w: fee rate must be >= 0, got %v", domain.ErrInvalidInput, feeRate)
	}
	switch side {
	case domain.SideBuy:
		return price * (1.0 + feeRate), nil
	case domain.SideSell:
		return price * (1.0 - feeRate), nil
	default:
		return 0, fmt.Errorf("%w: unknown side %d", domain.ErrInvalidInput, side)
	}
}

// FeeAdjustedQuote returns a quote with the worse-case cost to acquire on the
// ask and the worse-case proceeds to dispose on the bid. Scans and basis
// checks operate exclusively on fee-adjusted quotes once fees are known.
func FeeAdjustedQuote(q domain.Quote, buyFeeRate, sellFeeRate float64) (domain.Quote, error) {
	ask, err := ApplyFee(q.Ask, buyFeeRate, domain.SideBuy)
	if err != nil {
		return domain.Quote{}, err
	}
	bid, err := ApplyFee(q.Bid, sellFeeRate, domain.SideSell)
	if err != nil {
		return domain.Quote{}, err
	}
	return domain.Quote{Bid: bid, Ask: ask}, nil
}

// PremiumPct is the domestic premium over the FX-converted overseas price.
// Positive means domestic is richer (kimchi), negative means cheaper (reverse).
func PremiumPct(domesticPrice, overseasPrice, fxRate float64) (float64, error) {
	if domesticPrice <= 0 {
		return 0, fmt.Errorf("%w: domestic price must be > 0, got %v", domain.ErrInvalidInput, domesticPrice)
	}
	if overseasPrice <= 0 {
		return 0, fmt.Errorf("%w: overseas price must be > 0, got %v", domain.ErrInvalidInput, overseasPrice)
	}
	if fxRate <= 0 {
		return 0, fmt.Errorf("%w: fx rate must be > 0, got %v", domain.ErrInvalidInput, fxRate)
	}
	overseasConverted := overseasPrice * fxRate
	return (domesticPrice - overseasConverted) / overseasConverted * 100.0, nil
}

// BasisPct is the absolute divergence between two prices of the same
// instrument, as a percentage of the first. Always non-negative.
func BasisPct(priceA, priceB float64) (float64, error) {
	if priceA <= 0 {
		return 0, fmt.Errorf("%w: priceA must be > 0, got %v", domain.ErrInvalidInput, priceA)
	}
	if priceB <= 0 {
		return 0, fmt.Errorf("%w: priceB must be > 0, got %v", domain.ErrInvalidInput, priceB)
	}
	diff := priceB - priceA
	if diff < 0 {
		diff = -diff
	}
	return diff / priceA * 100.0, nil
}

// MidPrice is a defensive mid for thin markets: the average when both sides
// are positive, whichever side is positive otherwise, zero when neither is.
// Only used for reference rates, never for execution sizing.
func MidPrice(bid, ask float64) float64 {
	switch {
	case bid > 0 && ask > 0:
		return (bid + ask) / 2.0
	case bid > 0:
		return bid
	case ask > 0:
		return ask
	default:
		return 0
	}
}
