package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"kimp_radar/internal/domain"
)

// GateIOClient talks to the GateIO v4 REST API. It covers the spot market,
// the USDT-settled perpetual futures market, and the currency chain listing
// used for transfer checks.
type GateIOClient struct {
	restURL    string
	httpClient *http.Client

	// Contract sizes are quoted in contracts, not base units. The multiplier
	// map is filled from the contract listing and guarded for lazy refresh.
	mu          sync.RWMutex
	multipliers map[string]float64
}

// NewGateIOClient creates a GateIO client from configuration.
func NewGateIOClient(cfg *Config) *GateIOClient {
	return &GateIOClient{
		restURL: cfg.API.GateIO.RestURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		multipliers: make(map[string]float64),
	}
}

func (c *GateIOClient) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.restURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewNetworkError("gateio GET "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateio %s: unexpected status code %d: %w", path, resp.StatusCode, domain.ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

type gateSpotPair struct {
	ID          string `json:"id"`
	Base        string `json:"base"`
	Quote       string `json:"quote"`
	TradeStatus string `json:"trade_status"`
}

type gateContract struct {
	Name             string `json:"name"`
	QuantoMultiplier string `json:"quanto_multiplier"`
	InDelisting      bool   `json:"in_delisting"`
}

// ListMarkets enumerates USDT spot pairs and USDT-settled perpetual
// contracts in one slice, distinguished by Kind.
func (c *GateIOClient) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	var pairs []gateSpotPair
	if err := c.get(ctx, "/api/v4/spot/currency_pairs", nil, &pairs); err != nil {
		return nil, err
	}

	var contracts []gateContract
	if err := c.get(ctx, "/api/v4/futures/usdt/contracts", nil, &contracts); err != nil {
		return nil, err
	}

	markets := make([]domain.Market, 0, len(pairs)+len(contracts))
	for _, p := range pairs {
		if p.Quote != "USDT" {
			continue
		}
		markets = append(markets, domain.Market{
			Symbol: p.ID,
			Base:   p.Base,
			Quote:  p.Quote,
			Active: p.TradeStatus == "tradable",
			Kind:   domain.MarketSpot,
		})
	}

	multipliers := make(map[string]float64, len(contracts))
	for _, ct := range contracts {
		base, quote, ok := splitContractName(ct.Name)
		if !ok || quote != "USDT" {
			continue
		}
		if m, err := strconv.ParseFloat(ct.QuantoMultiplier, 64); err == nil && m > 0 {
			multipliers[ct.Name] = m
		}
		markets = append(markets, domain.Market{
			Symbol: ct.Name,
			Base:   base,
			Quote:  quote,
			Active: !ct.InDelisting,
			Kind:   domain.MarketPerp,
		})
	}

	c.mu.Lock()
	c.multipliers = multipliers
	c.mu.Unlock()

	return markets, nil
}

func splitContractName(name string) (base, quote string, ok bool) {
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == '_' {
			return name[:i], name[i+1:], true
		}
	}
	return "", "", false
}

type gateSpotTicker struct {
	CurrencyPair string `json:"currency_pair"`
	Last         string `json:"last"`
	LowestAsk    string `json:"lowest_ask"`
	HighestBid   string `json:"highest_bid"`
}

type gateFuturesTicker struct {
	Contract   string `json:"contract"`
	Last       string `json:"last"`
	LowestAsk  string `json:"lowest_ask"`
	HighestBid string `json:"highest_bid"`
}

// SpotQuotes returns top-of-book quotes for all spot pairs in one call,
// keyed by currency pair like "BTC_USDT".
func (c *GateIOClient) SpotQuotes(ctx context.Context) (map[string]domain.Quote, error) {
	var tickers []gateSpotTicker
	if err := c.get(ctx, "/api/v4/spot/tickers", nil, &tickers); err != nil {
		return nil, err
	}

	quotes := make(map[string]domain.Quote, len(tickers))
	for _, t := range tickers {
		if q, ok := parseQuote(t.HighestBid, t.LowestAsk); ok {
			quotes[t.CurrencyPair] = q
		}
	}
	return quotes, nil
}

// PerpQuotes returns top-of-book quotes for all USDT perpetual contracts,
// keyed by contract name like "BTC_USDT".
func (c *GateIOClient) PerpQuotes(ctx context.Context) (map[string]domain.Quote, error) {
	var tickers []gateFuturesTicker
	if err := c.get(ctx, "/api/v4/futures/usdt/tickers", nil, &tickers); err != nil {
		return nil, err
	}

	quotes := make(map[string]domain.Quote, len(tickers))
	for _, t := range tickers {
		if q, ok := parseQuote(t.HighestBid, t.LowestAsk); ok {
			quotes[t.Contract] = q
		}
	}
	return quotes, nil
}

func parseQuote(bid, ask string) (domain.Quote, bool) {
	b, errB := strconv.ParseFloat(bid, 64)
	a, errA := strconv.ParseFloat(ask, 64)
	if errB != nil || errA != nil || b <= 0 || a <= 0 {
		return domain.Quote{}, false
	}
	return domain.Quote{Bid: b, Ask: a}, true
}

type gateSpotBook struct {
	Bids [][]string `json:"bids"`
	Asks [][]string `json:"asks"`
}

type gateFuturesBookLevel struct {
	Price string  `json:"p"`
	Size  float64 `json:"s"`
}

type gateFuturesBook struct {
	Bids []gateFuturesBookLevel `json:"bids"`
	Asks []gateFuturesBookLevel `json:"asks"`
}

func (c *GateIOClient) fetchSpotQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	var tickers []gateSpotTicker
	query := url.Values{"currency_pair": {symbol}}
	if err := c.get(ctx, "/api/v4/spot/tickers", query, &tickers); err != nil {
		return domain.Quote{}, err
	}
	if len(tickers) == 0 {
		return domain.Quote{}, fmt.Errorf("gateio spot %s: no ticker: %w", symbol, domain.ErrUnavailable)
	}
	q, ok := parseQuote(tickers[0].HighestBid, tickers[0].LowestAsk)
	if !ok {
		return domain.Quote{}, fmt.Errorf("gateio spot %s: unusable ticker: %w", symbol, domain.ErrUnavailable)
	}
	return q, nil
}

func (c *GateIOClient) fetchSpotOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error) {
	if depth <= 0 {
		depth = 10
	}
	query := url.Values{
		"currency_pair": {symbol},
		"limit":         {strconv.Itoa(depth)},
	}
	var raw gateSpotBook
	if err := c.get(ctx, "/api/v4/spot/order_book", query, &raw); err != nil {
		return domain.OrderBook{}, err
	}
	return domain.OrderBook{
		Bids: parseGateSpotLevels(raw.Bids),
		Asks: parseGateSpotLevels(raw.Asks),
	}, nil
}

func (c *GateIOClient) fetchPerpQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	var tickers []gateFuturesTicker
	query := url.Values{"contract": {symbol}}
	if err := c.get(ctx, "/api/v4/futures/usdt/tickers", query, &tickers); err != nil {
		return domain.Quote{}, err
	}
	if len(tickers) == 0 {
		return domain.Quote{}, fmt.Errorf("gateio perp %s: no ticker: %w", symbol, domain.ErrUnavailable)
	}
	q, ok := parseQuote(tickers[0].HighestBid, tickers[0].LowestAsk)
	if !ok {
		return domain.Quote{}, fmt.Errorf("gateio perp %s: unusable ticker: %w", symbol, domain.ErrUnavailable)
	}
	return q, nil
}

func (c *GateIOClient) fetchPerpOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error) {
	if depth <= 0 {
		depth = 10
	}
	mult, err := c.contractMultiplier(ctx, symbol)
	if err != nil {
		return domain.OrderBook{}, err
	}

	query := url.Values{
		"contract": {symbol},
		"limit":    {strconv.Itoa(depth)},
	}
	var raw gateFuturesBook
	if err := c.get(ctx, "/api/v4/futures/usdt/order_book", query, &raw); err != nil {
		return domain.OrderBook{}, err
	}
	return domain.OrderBook{
		Bids: parseGateFuturesLevels(raw.Bids, mult),
		Asks: parseGateFuturesLevels(raw.Asks, mult),
	}, nil
}

// contractMultiplier resolves the base units per contract, fetching the
// contract listing on a cold cache.
func (c *GateIOClient) contractMultiplier(ctx context.Context, symbol string) (float64, error) {
	c.mu.RLock()
	mult, ok := c.multipliers[symbol]
	c.mu.RUnlock()
	if ok {
		return mult, nil
	}

	var ct gateContract
	if err := c.get(ctx, "/api/v4/futures/usdt/contracts/"+symbol, nil, &ct); err != nil {
		return 0, err
	}
	mult, err := strconv.ParseFloat(ct.QuantoMultiplier, 64)
	if err != nil || mult <= 0 {
		return 0, fmt.Errorf("gateio perp %s: unusable multiplier %q: %w", symbol, ct.QuantoMultiplier, domain.ErrUnavailable)
	}

	c.mu.Lock()
	c.multipliers[symbol] = mult
	c.mu.Unlock()
	return mult, nil
}

func parseGateSpotLevels(raw [][]string) []domain.Level {
	levels := make([]domain.Level, 0, len(raw))
	for _, l := range raw {
		if len(l) < 2 {
			continue
		}
		price, errP := strconv.ParseFloat(l[0], 64)
		size, errS := strconv.ParseFloat(l[1], 64)
		if errP != nil || errS != nil {
			continue
		}
		levels = append(levels, domain.Level{Price: price, Size: size})
	}
	return levels
}

func parseGateFuturesLevels(raw []gateFuturesBookLevel, mult float64) []domain.Level {
	levels := make([]domain.Level, 0, len(raw))
	for _, l := range raw {
		price, err := strconv.ParseFloat(l.Price, 64)
		if err != nil {
			continue
		}
		levels = append(levels, domain.Level{Price: price, Size: l.Size * mult})
	}
	return levels
}

// gateSpotView adapts the spot endpoints to the quote source interface.
type gateSpotView struct{ c *GateIOClient }

func (v gateSpotView) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	return v.c.fetchSpotQuote(ctx, symbol)
}

func (v gateSpotView) FetchOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error) {
	return v.c.fetchSpotOrderBook(ctx, symbol, depth)
}

// gatePerpView adapts the futures endpoints to the quote source interface.
type gatePerpView struct{ c *GateIOClient }

func (v gatePerpView) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	return v.c.fetchPerpQuote(ctx, symbol)
}

func (v gatePerpView) FetchOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error) {
	return v.c.fetchPerpOrderBook(ctx, symbol, depth)
}

// Spot returns a quote source over the spot market.
func (c *GateIOClient) Spot() domain.QuoteSource { return gateSpotView{c} }

// Perp returns a quote source over the USDT perpetual market.
func (c *GateIOClient) Perp() domain.QuoteSource { return gatePerpView{c} }

// Disabled flags decode as pointers: the API omitting a flag means the
// availability is unknown, which must stay distinct from "not disabled".
type gateChain struct {
	Name             string `json:"name"`
	DepositDisabled  *bool  `json:"deposit_disabled"`
	WithdrawDisabled *bool  `json:"withdraw_disabled"`
	IsDisabled       *bool  `json:"is_disabled"`
}

type gateCurrency struct {
	Currency         string      `json:"currency"`
	Delisted         bool        `json:"delisted"`
	DepositDisabled  *bool       `json:"deposit_disabled"`
	WithdrawDisabled *bool       `json:"withdraw_disabled"`
	Chains           []gateChain `json:"chains"`
}

// FetchTransferStatuses reports deposit/withdraw availability per asset
// from the currency listing. Assets missing from the listing come back
// with unknown flags.
func (c *GateIOClient) FetchTransferStatuses(ctx context.Context, assets []string) (map[string]domain.TransferStatus, error) {
	var currencies []gateCurrency
	if err := c.get(ctx, "/api/v4/spot/currencies", nil, &currencies); err != nil {
		return nil, err
	}

	byAsset := make(map[string]gateCurrency, len(currencies))
	for _, cur := range currencies {
		byAsset[cur.Currency] = cur
	}

	statuses := make(map[string]domain.TransferStatus, len(assets))
	for _, asset := range assets {
		status := domain.TransferStatus{Venue: "gateio", Asset: asset}
		cur, ok := byAsset[asset]
		if !ok {
			statuses[asset] = status
			continue
		}

		if cur.Delisted {
			status.Deposit = domain.FlagFalse
			status.Withdraw = domain.FlagFalse
		} else {
			status.Deposit = flagOfDisabled(cur.DepositDisabled)
			status.Withdraw = flagOfDisabled(cur.WithdrawDisabled)
		}
		for _, ch := range cur.Chains {
			if ch.Name == "" {
				continue
			}
			info := domain.ChainInfo{
				Name:     ch.Name,
				Deposit:  chainFlag(ch.DepositDisabled, ch.IsDisabled),
				Withdraw: chainFlag(ch.WithdrawDisabled, ch.IsDisabled),
			}
			status.ChainInfo = append(status.ChainInfo, info)
			if info.Deposit.IsTrue() && info.Withdraw.IsTrue() {
				status.Chains = append(status.Chains, ch.Name)
			}
		}
		statuses[asset] = status
	}
	return statuses, nil
}

// flagOfDisabled inverts an optional "disabled" flag. Absence is unknown,
// never availability.
func flagOfDisabled(disabled *bool) domain.Flag {
	if disabled == nil {
		return domain.FlagUnknown
	}
	if *disabled {
		return domain.FlagFalse
	}
	return domain.FlagTrue
}

// chainFlag folds a chain's per-direction disabled flag with its blanket
// is_disabled flag. A known-disabled chain is closed regardless.
func chainFlag(disabled, isDisabled *bool) domain.Flag {
	if isDisabled != nil && *isDisabled {
		return domain.FlagFalse
	}
	return flagOfDisabled(disabled)
}
