package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MarketKind distinguishes spot from perpetual-futures listings.
type MarketKind int

const (
	MarketSpot MarketKind = iota
	MarketPerp
)

// Market is one listing row returned by a venue's market list.
type Market struct {
	Symbol string
	Base   string
	Quote  string
	Active bool
	Kind   MarketKind
}

// QuoteSource provides read-only price data for one venue.
// Implementations return ErrUnavailable for failed or empty fetches.
type QuoteSource interface {
	FetchQuote(ctx context.Context, symbol string) (Quote, error)
	FetchOrderBook(ctx context.Context, symbol string, depth int) (OrderBook, error)
}

// MarketLister enumerates a venue's tradable markets.
type MarketLister interface {
	ListMarkets(ctx context.Context) ([]Market, error)
}

// TransferStatusSource batch-fetches deposit/withdraw availability.
// Every requested asset appears in the result; assets the venue did not
// report come back with all flags unknown.
type TransferStatusSource interface {
	FetchTransferStatuses(ctx context.Context, assets []string) (map[string]TransferStatus, error)
}

// ExchangeRateProvider defines the interface for currency exchange rate sources
type ExchangeRateProvider interface {
	Start(ctx context.Context) error
	GetRate() decimal.Decimal
}
