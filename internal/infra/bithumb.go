package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"kimp_radar/internal/domain"
)

// BithumbClient talks to the Bithumb public REST API and the web gateway.
// Quotes and order books come from the public API; deposit/withdraw network
// status is only exposed through the gateway.
type BithumbClient struct {
	restURL    string
	gatewayURL string
	httpClient *http.Client
}

// NewBithumbClient creates a Bithumb client from configuration.
func NewBithumbClient(cfg *Config) *BithumbClient {
	return &BithumbClient{
		restURL:    cfg.API.Bithumb.RestURL,
		gatewayURL: cfg.API.Bithumb.GatewayURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type bithumbEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type bithumbBookLevel struct {
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type bithumbBook struct {
	Bids []bithumbBookLevel `json:"bids"`
	Asks []bithumbBookLevel `json:"asks"`
}

func (c *BithumbClient) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	u := c.restURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("bithumb GET "+path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bithumb %s: unexpected status code %d: %w", path, resp.StatusCode, domain.ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env bithumbEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.Status != "0000" {
		return nil, fmt.Errorf("bithumb %s: status %s (%s): %w", path, env.Status, env.Message, domain.ErrUnavailable)
	}
	return env.Data, nil
}

// FetchQuote returns the top of book for one market, e.g. "BTC_KRW".
func (c *BithumbClient) FetchQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	book, err := c.FetchOrderBook(ctx, symbol, 1)
	if err != nil {
		return domain.Quote{}, err
	}
	if len(book.Bids) == 0 || len(book.Asks) == 0 {
		return domain.Quote{}, fmt.Errorf("bithumb %s: empty book: %w", symbol, domain.ErrUnavailable)
	}
	return domain.Quote{Bid: book.Bids[0].Price, Ask: book.Asks[0].Price}, nil
}

// FetchOrderBook returns up to depth levels per side for one market.
func (c *BithumbClient) FetchOrderBook(ctx context.Context, symbol string, depth int) (domain.OrderBook, error) {
	if depth <= 0 || depth > 30 {
		depth = 30
	}
	query := url.Values{"count": {strconv.Itoa(depth)}}
	data, err := c.get(ctx, "/public/orderbook/"+symbol, query)
	if err != nil {
		return domain.OrderBook{}, err
	}

	var raw bithumbBook
	if err := json.Unmarshal(data, &raw); err != nil {
		return domain.OrderBook{}, err
	}
	return domain.OrderBook{
		Bids: parseBithumbLevels(raw.Bids),
		Asks: parseBithumbLevels(raw.Asks),
	}, nil
}

// FetchQuotes returns top-of-book quotes for every KRW market in one call.
// Keys are market symbols like "BTC_KRW".
func (c *BithumbClient) FetchQuotes(ctx context.Context) (map[string]domain.Quote, error) {
	data, err := c.get(ctx, "/public/orderbook/ALL_KRW", url.Values{"count": {"1"}})
	if err != nil {
		return nil, err
	}

	// The ALL_KRW payload mixes coin entries with scalar metadata fields
	// (timestamp, payment_currency), so decode values lazily.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	quotes := make(map[string]domain.Quote)
	for base, value := range raw {
		var book bithumbBook
		if err := json.Unmarshal(value, &book); err != nil {
			continue
		}
		if len(book.Bids) == 0 || len(book.Asks) == 0 {
			continue
		}
		bid, errB := strconv.ParseFloat(book.Bids[0].Price, 64)
		ask, errA := strconv.ParseFloat(book.Asks[0].Price, 64)
		if errB != nil || errA != nil {
			continue
		}
		quotes[base+"_KRW"] = domain.Quote{Bid: bid, Ask: ask}
	}
	return quotes, nil
}

// ListMarkets enumerates the KRW markets.
func (c *BithumbClient) ListMarkets(ctx context.Context) ([]domain.Market, error) {
	data, err := c.get(ctx, "/public/ticker/ALL_KRW", nil)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	markets := make([]domain.Market, 0, len(raw))
	for base, value := range raw {
		// Skip scalar metadata such as the "date" field.
		var entry map[string]any
		if err := json.Unmarshal(value, &entry); err != nil {
			continue
		}
		markets = append(markets, domain.Market{
			Symbol: base + "_KRW",
			Base:   base,
			Quote:  "KRW",
			Active: true,
			Kind:   domain.MarketSpot,
		})
	}
	sort.Slice(markets, func(i, j int) bool { return markets[i].Base < markets[j].Base })
	return markets, nil
}

// Gateway network-status payload. Statuses are 1 (open) or 0 (closed);
// a missing field stays unknown.
type bithumbNetworkInfo struct {
	NetworkType      string   `json:"coinNetworkType"`
	NetworkName      string   `json:"coinNetworkName"`
	DepositStatus    *int     `json:"depositStatus"`
	WithdrawalStatus *int     `json:"withdrawalStatus"`
	ConfirmCount     *int     `json:"confirmCnt"`
	WithdrawalFee    *float64 `json:"withdrawalFee,string"`
	MinWithdrawal    *float64 `json:"minWithdrawal,string"`
}

type bithumbCoinStatus struct {
	CoinSymbol      string               `json:"coinSymbol"`
	NetworkInfoList []bithumbNetworkInfo `json:"networkInfoList"`
}

type bithumbGatewayResponse struct {
	Code string              `json:"code"`
	Data []bithumbCoinStatus `json:"data"`
}

// FetchTransferStatuses reports deposit/withdraw availability per asset.
// The gateway returns the whole coin list in one shot; requested assets the
// gateway does not know come back with unknown flags.
func (c *BithumbClient) FetchTransferStatuses(ctx context.Context, assets []string) (map[string]domain.TransferStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.gatewayURL+"/exchange/v1/comn/coin-inout-statuses", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError("bithumb gateway coin-inout-statuses", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bithumb gateway: unexpected status code %d: %w", resp.StatusCode, domain.ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var gw bithumbGatewayResponse
	if err := json.Unmarshal(body, &gw); err != nil {
		return nil, err
	}

	byAsset := make(map[string]bithumbCoinStatus, len(gw.Data))
	for _, coin := range gw.Data {
		byAsset[coin.CoinSymbol] = coin
	}

	statuses := make(map[string]domain.TransferStatus, len(assets))
	for _, asset := range assets {
		status := domain.TransferStatus{Venue: "bithumb", Asset: asset}
		coin, ok := byAsset[asset]
		if !ok {
			statuses[asset] = status
			continue
		}

		for _, net := range coin.NetworkInfoList {
			name := net.NetworkName
			if name == "" {
				name = net.NetworkType
			}
			if name == "" {
				continue
			}
			info := domain.ChainInfo{
				Name:          name,
				Deposit:       flagOfStatus(net.DepositStatus),
				Withdraw:      flagOfStatus(net.WithdrawalStatus),
				Confirmations: net.ConfirmCount,
				WithdrawFee:   net.WithdrawalFee,
				WithdrawMin:   net.MinWithdrawal,
			}
			status.ChainInfo = append(status.ChainInfo, info)
			if info.Deposit.IsTrue() && info.Withdraw.IsTrue() {
				status.Chains = append(status.Chains, name)
			}
		}

		// Venue-level availability is the OR over the networks: one open
		// network suffices. No networks reported means unknown.
		status.Deposit = anyFlagTrue(status.ChainInfo, func(i domain.ChainInfo) domain.Flag { return i.Deposit })
		status.Withdraw = anyFlagTrue(status.ChainInfo, func(i domain.ChainInfo) domain.Flag { return i.Withdraw })
		statuses[asset] = status
	}
	return statuses, nil
}

func anyFlagTrue(infos []domain.ChainInfo, pick func(domain.ChainInfo) domain.Flag) domain.Flag {
	if len(infos) == 0 {
		return domain.FlagUnknown
	}
	for _, info := range infos {
		if pick(info).IsTrue() {
			return domain.FlagTrue
		}
	}
	return domain.FlagFalse
}

// flagOfStatus maps the gateway's 1/0 status integers to a tri-state flag.
func flagOfStatus(v *int) domain.Flag {
	if v == nil {
		return domain.FlagUnknown
	}
	if *v == 1 {
		return domain.FlagTrue
	}
	return domain.FlagFalse
}

func parseBithumbLevels(raw []bithumbBookLevel) []domain.Level {
	levels := make([]domain.Level, 0, len(raw))
	for _, l := range raw {
		price, errP := strconv.ParseFloat(l.Price, 64)
		size, errS := strconv.ParseFloat(l.Quantity, 64)
		if errP != nil || errS != nil {
			continue
		}
		levels = append(levels, domain.Level{Price: price, Size: size})
	}
	return levels
}
