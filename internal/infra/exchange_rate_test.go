package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func rateTestConfig(source string) *Config {
	cfg := &Config{}
	cfg.API.Rate.Source = source
	cfg.API.Rate.PollIntervalSec = 1
	return cfg
}

func TestRateClient_ForexSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"code":"FRX.KRWUSD","basePrice":1380.5}]`))
	}))
	defer server.Close()

	client := NewRateClient(rateTestConfig(RateSourceForex))
	client.forexURL = server.URL

	if err := client.fetchRate(context.Background()); err != nil {
		t.Fatalf("fetchRate failed: %v", err)
	}
	if !client.GetRate().Equal(decimal.RequireFromString("1380.5")) {
		t.Errorf("rate = %s, want 1380.5", client.GetRate())
	}
}

func TestRateClient_BithumbUSDTSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"0000","data":{"bids":[{"price":"1400"}],"asks":[{"price":"1402"}]}}`))
	}))
	defer server.Close()

	client := NewRateClient(rateTestConfig(RateSourceBithumbUSDT))
	client.bithumbURL = server.URL

	if err := client.fetchRate(context.Background()); err != nil {
		t.Fatalf("fetchRate failed: %v", err)
	}
	if !client.GetRate().Equal(decimal.RequireFromString("1401")) {
		t.Errorf("rate = %s, want mid price 1401", client.GetRate())
	}
}

func TestRateClient_UpbitUSDTSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"market":"KRW-USDT","trade_price":1395.0}]`))
	}))
	defer server.Close()

	client := NewRateClient(rateTestConfig(RateSourceUpbitUSDT))
	client.upbitURL = server.URL

	if err := client.fetchRate(context.Background()); err != nil {
		t.Fatalf("fetchRate failed: %v", err)
	}
	if !client.GetRate().Equal(decimal.NewFromInt(1395)) {
		t.Errorf("rate = %s, want 1395", client.GetRate())
	}
}

func TestRateClient_ForexPremiumSource(t *testing.T) {
	forex := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"code":"FRX.KRWUSD","basePrice":1380}]`))
	}))
	defer forex.Close()
	upbit := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"market":"KRW-USDT","trade_price":1407.6}]`))
	}))
	defer upbit.Close()

	client := NewRateClient(rateTestConfig(RateSourceForexPremium))
	client.forexURL = forex.URL
	client.upbitURL = upbit.URL

	if err := client.fetchRate(context.Background()); err != nil {
		t.Fatalf("fetchRate failed: %v", err)
	}
	// Premium-adjusted forex lands on the domestic USDT price.
	if !client.GetRate().Equal(decimal.RequireFromString("1407.6")) {
		t.Errorf("rate = %s, want 1407.6", client.GetRate())
	}
}

func TestRateClient_CustomOverride(t *testing.T) {
	cfg := rateTestConfig(RateSourceCustom)
	cfg.API.Rate.Override = decimal.RequireFromString("1390")

	client := NewRateClient(cfg)
	if err := client.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer client.Stop()

	if !client.GetRate().Equal(decimal.NewFromInt(1390)) {
		t.Errorf("rate = %s, want override 1390", client.GetRate())
	}
}

func TestRateClient_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewRateClient(rateTestConfig(RateSourceForex))
	client.forexURL = server.URL

	if _, err := client.doFetch(context.Background()); err == nil {
		t.Error("Empty response should return error")
	}
}

func TestRateClient_RetryOnFailure(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		if callCount < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"code":"FRX.KRWUSD","basePrice":1380.5}]`))
	}))
	defer server.Close()

	client := NewRateClient(rateTestConfig(RateSourceForex))
	client.forexURL = server.URL

	// Should retry 2 times and succeed on the 3rd attempt.
	if err := client.fetchRate(context.Background()); err != nil {
		t.Fatalf("fetchRate should succeed after retries: %v", err)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestRateClient_StartStop(t *testing.T) {
	callCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"code":"FRX.KRWUSD","basePrice":1380.5}]`))
	}))
	defer server.Close()

	client := NewRateClient(rateTestConfig(RateSourceForex))
	client.forexURL = server.URL

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := client.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Wait for initial fetch
	time.Sleep(100 * time.Millisecond)
	if callCount < 1 {
		t.Error("Expected at least one API call")
	}

	// Stop should complete without hanging
	client.Stop()
}
