package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Rate source identifiers accepted in configuration.
const (
	RateSourceForex        = "fx_usd_krw"
	RateSourceForexPremium = "fx_plus_usdt_premium"
	RateSourceBithumbUSDT  = "bithumb_usdt"
	RateSourceUpbitUSDT    = "upbit_usdt"
	RateSourceCustom       = "custom"
)

// dunamuResponse represents the Dunamu Forex API response
type dunamuResponse struct {
	Code         string  `json:"code"`
	CurrencyCode string  `json:"currencyCode"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	BasePrice    float64 `json:"basePrice"`
	OpeningPrice float64 `json:"openingPrice"`
	HighPrice    float64 `json:"highPrice"`
	LowPrice     float64 `json:"lowPrice"`
}

// bithumbOrderbookResponse is the public orderbook payload for USDT_KRW.
type bithumbOrderbookResponse struct {
	Status string `json:"status"`
	Data   struct {
		Bids []struct {
			Price string `json:"price"`
		} `json:"bids"`
		Asks []struct {
			Price string `json:"price"`
		} `json:"asks"`
	} `json:"data"`
}

// upbitTickerResponse is one element of the Upbit ticker array.
type upbitTickerResponse struct {
	Market     string  `json:"market"`
	TradePrice float64 `json:"trade_price"`
}

// RateClient serves the USDT/KRW conversion rate used to compare venues.
// Depending on the configured source it polls the Dunamu forex feed, a
// domestic USDT market, or holds a fixed override.
type RateClient struct {
	source       string
	override     decimal.Decimal
	rate         decimal.Decimal
	mu           sync.RWMutex
	pollInterval time.Duration
	forexURL     string
	bithumbURL   string
	upbitURL     string
	httpClient   *http.Client
	cancel       context.CancelFunc
	wg           sync.WaitGroup
}

// NewRateClient creates a rate client from configuration.
func NewRateClient(cfg *Config) *RateClient {
	c := &RateClient{
		source:       cfg.API.Rate.Source,
		override:     cfg.API.Rate.Override,
		rate:         decimal.Zero,
		pollInterval: time.Duration(cfg.API.Rate.PollIntervalSec) * time.Second,
		forexURL:     "https://quotation-api-cdn.dunamu.com/v1/forex/recent?codes=FRX.KRWUSD",
		bithumbURL:   cfg.API.Bithumb.RestURL + "/public/orderbook/USDT_KRW",
		upbitURL:     "https://api.upbit.com/v1/ticker?markets=KRW-USDT",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	if c.source == RateSourceCustom {
		c.rate = c.override
	}
	return c
}

// Start begins polling for rate updates. A custom override never polls.
func (c *RateClient) Start(ctx context.Context) error {
	if c.source == RateSourceCustom {
		return nil
	}

	ctx, c.cancel = context.WithCancel(ctx)

	// Fetch immediately on start
	if err := c.fetchRate(ctx); err != nil {
		slog.Warn("Initial rate fetch failed", slog.Any("error", err))
		// Continue anyway - will retry on next tick
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Rate polling panic recovered", slog.Any("panic", r))
			}
		}()

		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				slog.Info("Rate polling stopped")
				return
			case <-ticker.C:
				if err := c.fetchRate(ctx); err != nil {
					slog.Warn("Rate fetch failed", slog.Any("error", err))
				}
			}
		}
	}()

	return nil
}

// fetchRate fetches the current rate with retry logic.
func (c *RateClient) fetchRate(ctx context.Context) error {
	var lastErr error
	for i := 0; i < 3; i++ {
		if i > 0 {
			// Exponential backoff: 1s, 2s, 4s
			delay := time.Duration(1<<uint(i-1)) * time.Second
			slog.Info("Retrying rate fetch", slog.Int("attempt", i), slog.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		newRate, err := c.doFetch(ctx)
		if err == nil {
			c.setRate(newRate)
			return nil
		}
		lastErr = err
		slog.Warn("Rate fetch attempt failed", slog.Int("attempt", i+1), slog.Any("error", err))
	}
	return lastErr
}

func (c *RateClient) doFetch(ctx context.Context) (decimal.Decimal, error) {
	switch c.source {
	case RateSourceForex:
		return c.fetchForex(ctx)
	case RateSourceBithumbUSDT:
		return c.fetchBithumbUSDT(ctx)
	case RateSourceUpbitUSDT:
		return c.fetchUpbitUSDT(ctx)
	case RateSourceForexPremium:
		return c.fetchForexWithPremium(ctx)
	default:
		return decimal.Zero, fmt.Errorf("unsupported rate source: %s", c.source)
	}
}

// fetchForex returns the Dunamu USD/KRW base price.
func (c *RateClient) fetchForex(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.getJSON(ctx, c.forexURL)
	if err != nil {
		return decimal.Zero, err
	}

	var data []dunamuResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return decimal.Zero, err
	}
	if len(data) == 0 || data[0].BasePrice <= 0 {
		return decimal.Zero, fmt.Errorf("empty response from forex API")
	}
	return decimal.NewFromFloat(data[0].BasePrice), nil
}

// fetchBithumbUSDT returns the mid price of the Bithumb USDT_KRW book.
func (c *RateClient) fetchBithumbUSDT(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.getJSON(ctx, c.bithumbURL)
	if err != nil {
		return decimal.Zero, err
	}

	var data bithumbOrderbookResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return decimal.Zero, err
	}
	if data.Status != "0000" || len(data.Data.Bids) == 0 || len(data.Data.Asks) == 0 {
		return decimal.Zero, fmt.Errorf("empty USDT orderbook from Bithumb")
	}

	bid, err := decimal.NewFromString(data.Data.Bids[0].Price)
	if err != nil {
		return decimal.Zero, err
	}
	ask, err := decimal.NewFromString(data.Data.Asks[0].Price)
	if err != nil {
		return decimal.Zero, err
	}
	if !bid.IsPositive() || !ask.IsPositive() {
		return decimal.Zero, fmt.Errorf("non-positive USDT quote from Bithumb")
	}
	return bid.Add(ask).Div(decimal.NewFromInt(2)), nil
}

// fetchUpbitUSDT returns the Upbit KRW-USDT last trade price.
func (c *RateClient) fetchUpbitUSDT(ctx context.Context) (decimal.Decimal, error) {
	body, err := c.getJSON(ctx, c.upbitURL)
	if err != nil {
		return decimal.Zero, err
	}

	var data []upbitTickerResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return decimal.Zero, err
	}
	if len(data) == 0 || data[0].TradePrice <= 0 {
		return decimal.Zero, fmt.Errorf("empty ticker from Upbit")
	}
	return decimal.NewFromFloat(data[0].TradePrice), nil
}

// fetchForexWithPremium applies the domestic USDT premium on top of the
// forex base price. The premium is measured against the Upbit USDT market.
func (c *RateClient) fetchForexWithPremium(ctx context.Context) (decimal.Decimal, error) {
	forex, err := c.fetchForex(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	usdt, err := c.fetchUpbitUSDT(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	premium := usdt.Sub(forex).Div(forex)
	slog.Debug("USDT premium over forex",
		slog.String("forex", forex.String()),
		slog.String("usdt", usdt.String()),
		slog.String("premium", premium.String()),
	)
	return forex.Mul(decimal.NewFromInt(1).Add(premium)), nil
}

func (c *RateClient) getJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *RateClient) setRate(newRate decimal.Decimal) {
	c.mu.Lock()
	oldRate := c.rate
	c.rate = newRate
	c.mu.Unlock()

	if !oldRate.Equal(newRate) {
		slog.Info("Conversion rate updated",
			slog.String("source", c.source),
			slog.String("rate", newRate.String()),
			slog.String("old_rate", oldRate.String()),
		)
	}
}

// Stop stops the polling
func (c *RateClient) Stop() {
	if c.cancel != nil {
		c.cancel()
		c.wg.Wait()
	}
}

// GetRate returns the current rate, or zero when nothing was fetched yet.
func (c *RateClient) GetRate() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rate
}
