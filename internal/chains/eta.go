package chains

import (
	"math"

	"kimp_radar/internal/domain"
)

// defaultBlockSeconds is the average block time per canonical chain, used
// only for operator-facing transfer ETAs.
var defaultBlockSeconds = map[string]int{
	"ADA":     20,
	"ARBONE":  2,
	"ARBNOVA": 2,
	"ATOM":    6,
	"AVAXC":   2,
	"BASE":    2,
	"BCH":     600,
	"BEP20":   3,
	"BTC":     600,
	"DOGE":    60,
	"DOT":     6,
	"ERC20":   12,
	"ETC":     13,
	"LTC":     150,
	"MATIC":   2,
	"NEAR":    1,
	"OP":      2,
	"SOL":     1,
	"TRC20":   3,
	"XLM":     5,
	"XRP":     4,
}

// EtaEstimator produces best-effort minutes-to-confirm estimates per chain.
// Purely advisory: feeds human-readable reporting, never a trading decision.
type EtaEstimator struct {
	blockSeconds map[string]int
	normalizer   *Normalizer
}

// NewEtaEstimator builds an estimator over the given block-time table.
func NewEtaEstimator(blockSeconds map[string]int, normalizer *Normalizer) *EtaEstimator {
	return &EtaEstimator{blockSeconds: blockSeconds, normalizer: normalizer}
}

// NewDefaultEtaEstimator builds an estimator over the built-in tables.
func NewDefaultEtaEstimator() *EtaEstimator {
	return NewEtaEstimator(defaultBlockSeconds, NewDefaultNormalizer())
}

// EstimateMinutes estimates the confirmation window for a chain in minutes,
// minimum 1. The second return is false when the chain's timing is unknown.
func (e *EtaEstimator) EstimateMinutes(chainName string, confirmations *int) (int, bool) {
	canonical := e.normalizer.Normalize(chainName)
	blockSeconds, ok := e.blockSeconds[canonical]
	if !ok || blockSeconds <= 0 {
		return 0, false
	}
	conf := 1
	if confirmations != nil && *confirmations > 0 {
		conf = *confirmations
	}
	minutes := int(math.Ceil(float64(blockSeconds) * float64(conf) / 60.0))
	if minutes < 1 {
		minutes = 1
	}
	return minutes, true
}

// TransferRoute is the direction an asset moves between the two venues.
type TransferRoute int

const (
	RouteDomesticToOverseas TransferRoute = iota
	RouteOverseasToDomestic
)

// Eta is one chain pair's estimated transfer timing for reporting.
type Eta struct {
	CanonicalChain string
	DomesticChain  string
	OverseasChain  string
	ReceiveVenue   string
	Confirmations  *int
	Minutes        *int
}

// BuildEtas annotates common chain pairs with confirmation counts from the
// receiving venue and the estimated minutes to confirm.
func (e *EtaEstimator) BuildEtas(pairs []Pair, domestic, overseas domain.TransferStatus, route TransferRoute) []Eta {
	receiveStatus := overseas
	receiveVenue := overseas.Venue
	if route == RouteOverseasToDomestic {
		receiveStatus = domestic
		receiveVenue = domestic.Venue
	}

	out := make([]Eta, 0, len(pairs))
	for _, pair := range pairs {
		recvChain := pair.B
		if route == RouteOverseasToDomestic {
			recvChain = pair.A
		}

		confirmations := e.confirmationsFor(receiveStatus, recvChain)
		var minutes *int
		if m, ok := e.EstimateMinutes(recvChain, confirmations); ok {
			minutes = &m
		}

		canonical := e.normalizer.Normalize(recvChain)
		if canonical == "" {
			canonical = recvChain
		}
		out = append(out, Eta{
			CanonicalChain: canonical,
			DomesticChain:  pair.A,
			OverseasChain:  pair.B,
			ReceiveVenue:   receiveVenue,
			Confirmations:  confirmations,
			Minutes:        minutes,
		})
	}
	return out
}

// confirmationsFor finds the confirmation count the receiving venue reports
// for a chain, matching literally first and canonically second.
func (e *EtaEstimator) confirmationsFor(status domain.TransferStatus, chainName string) *int {
	for _, info := range status.ChainInfo {
		if info.Name == chainName && info.Confirmations != nil {
			return info.Confirmations
		}
	}

	target := e.normalizer.Normalize(chainName)
	for _, info := range status.ChainInfo {
		if e.normalizer.Normalize(info.Name) == target {
			return info.Confirmations
		}
	}
	return nil
}
