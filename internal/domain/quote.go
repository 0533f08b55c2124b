package domain

// Quote is a best bid/ask snapshot for a single market.
// A quote is only usable when both sides are strictly positive;
// consumers must check IsValid before pricing anything off it.
type Quote struct {
	Bid float64 `json:"bid"`
	Ask float64 `json:"ask"`
}

// IsValid reports whether both sides of the quote are executable.
func (q Quote) IsValid() bool {
	return q.Bid > 0 && q.Ask > 0
}

// Level is one order-book price level.
type Level struct {
	Price float64 `json:"price"`
	Size  float64 `json:"size"`
}

// OrderBook holds visible depth for one market.
// Bids are ordered best (highest) first, asks best (lowest) first.
type OrderBook struct {
	Bids []Level `json:"bids"`
	Asks []Level `json:"asks"`
}
