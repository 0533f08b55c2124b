package infra

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kimp_radar/internal/domain"
)

func bithumbTestClient(rest, gateway string) *BithumbClient {
	cfg := &Config{}
	cfg.API.Bithumb.RestURL = rest
	cfg.API.Bithumb.GatewayURL = gateway
	return NewBithumbClient(cfg)
}

func TestBithumbClient_FetchOrderBook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/public/orderbook/BTC_KRW" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":"0000","data":{
			"bids":[{"price":"100000000","quantity":"0.5"},{"price":"99990000","quantity":"1.2"}],
			"asks":[{"price":"100010000","quantity":"0.8"}]
		}}`))
	}))
	defer server.Close()

	client := bithumbTestClient(server.URL, "")
	book, err := client.FetchOrderBook(context.Background(), "BTC_KRW", 5)
	if err != nil {
		t.Fatalf("FetchOrderBook failed: %v", err)
	}
	if len(book.Bids) != 2 || len(book.Asks) != 1 {
		t.Fatalf("unexpected book shape: %d bids, %d asks", len(book.Bids), len(book.Asks))
	}
	if book.Bids[0].Price != 100000000 || book.Bids[0].Size != 0.5 {
		t.Errorf("top bid = %+v", book.Bids[0])
	}
}

func TestBithumbClient_FetchQuote(t *testing.T) {
	t.Run("Top of book", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"0000","data":{
				"bids":[{"price":"3500","quantity":"100"}],
				"asks":[{"price":"3502","quantity":"80"}]
			}}`))
		}))
		defer server.Close()

		client := bithumbTestClient(server.URL, "")
		q, err := client.FetchQuote(context.Background(), "XRP_KRW")
		if err != nil {
			t.Fatalf("FetchQuote failed: %v", err)
		}
		if q.Bid != 3500 || q.Ask != 3502 {
			t.Errorf("quote = %+v", q)
		}
	})

	t.Run("API error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"status":"5500","message":"Invalid Parameter"}`))
		}))
		defer server.Close()

		client := bithumbTestClient(server.URL, "")
		if _, err := client.FetchQuote(context.Background(), "NOPE_KRW"); err == nil {
			t.Error("expected error for non-zero API status")
		}
	})
}

func TestBithumbClient_FetchQuotes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0000","data":{
			"timestamp":"1700000000000",
			"payment_currency":"KRW",
			"BTC":{"bids":[{"price":"100000000","quantity":"1"}],"asks":[{"price":"100050000","quantity":"1"}]},
			"XRP":{"bids":[{"price":"3500","quantity":"10"}],"asks":[{"price":"3501","quantity":"10"}]},
			"HALTED":{"bids":[],"asks":[]}
		}}`))
	}))
	defer server.Close()

	client := bithumbTestClient(server.URL, "")
	quotes, err := client.FetchQuotes(context.Background())
	if err != nil {
		t.Fatalf("FetchQuotes failed: %v", err)
	}
	if len(quotes) != 2 {
		t.Fatalf("expected 2 quotes, got %d", len(quotes))
	}
	if q := quotes["BTC_KRW"]; q.Bid != 100000000 || q.Ask != 100050000 {
		t.Errorf("BTC quote = %+v", q)
	}
	if _, ok := quotes["HALTED_KRW"]; ok {
		t.Error("market with empty book must be skipped")
	}
}

func TestBithumbClient_ListMarkets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"0000","data":{
			"date":"1700000000000",
			"BTC":{"closing_price":"100000000"},
			"ETH":{"closing_price":"5000000"}
		}}`))
	}))
	defer server.Close()

	client := bithumbTestClient(server.URL, "")
	markets, err := client.ListMarkets(context.Background())
	if err != nil {
		t.Fatalf("ListMarkets failed: %v", err)
	}
	if len(markets) != 2 {
		t.Fatalf("expected 2 markets, got %v", markets)
	}
	if markets[0].Symbol != "BTC_KRW" || markets[0].Quote != "KRW" {
		t.Errorf("first market = %+v", markets[0])
	}
}

func TestBithumbClient_FetchTransferStatuses(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"0000","data":[
			{"coinSymbol":"BTC","depositStatus":1,"withdrawalStatus":1,"networkInfoList":[
				{"coinNetworkType":"BTC","coinNetworkName":"Bitcoin","depositStatus":1,"withdrawalStatus":1,"confirmCnt":2}
			]},
			{"coinSymbol":"XRP","depositStatus":1,"withdrawalStatus":0,"networkInfoList":[
				{"coinNetworkType":"XRP","depositStatus":1,"withdrawalStatus":0}
			]},
			{"coinSymbol":"MULTI","networkInfoList":[
				{"coinNetworkType":"ERC20","depositStatus":0,"withdrawalStatus":0},
				{"coinNetworkType":"BEP20","depositStatus":1,"withdrawalStatus":1}
			]},
			{"coinSymbol":"MYST"}
		]}`))
	}))
	defer gateway.Close()

	client := bithumbTestClient("", gateway.URL)
	statuses, err := client.FetchTransferStatuses(context.Background(), []string{"BTC", "XRP", "MULTI", "MYST", "GHOST"})
	if err != nil {
		t.Fatalf("FetchTransferStatuses failed: %v", err)
	}

	t.Run("Open coin", func(t *testing.T) {
		s := statuses["BTC"]
		if !s.Transferable() {
			t.Errorf("BTC should be transferable: %+v", s)
		}
		if len(s.ChainInfo) != 1 || s.ChainInfo[0].Name != "Bitcoin" {
			t.Errorf("chain info = %+v", s.ChainInfo)
		}
		if s.ChainInfo[0].Confirmations == nil || *s.ChainInfo[0].Confirmations != 2 {
			t.Errorf("confirmations = %v", s.ChainInfo[0].Confirmations)
		}
	})

	t.Run("Withdrawal suspended", func(t *testing.T) {
		s := statuses["XRP"]
		if s.Transferable() {
			t.Error("suspended withdrawal must not be transferable")
		}
		if s.Withdraw != domain.FlagFalse {
			t.Errorf("withdraw flag = %v", s.Withdraw)
		}
		if len(s.Chains) != 0 {
			t.Errorf("closed network must not be usable: %v", s.Chains)
		}
	})

	t.Run("One open network opens the coin", func(t *testing.T) {
		s := statuses["MULTI"]
		if s.Deposit != domain.FlagTrue || s.Withdraw != domain.FlagTrue {
			t.Errorf("flags = %v/%v, want true/true from the open network", s.Deposit, s.Withdraw)
		}
		if len(s.Chains) != 1 || s.Chains[0] != "BEP20" {
			t.Errorf("usable chains = %v, want only the open network", s.Chains)
		}
	})

	t.Run("Missing status stays unknown", func(t *testing.T) {
		s := statuses["MYST"]
		if s.Deposit != domain.FlagUnknown || s.Withdraw != domain.FlagUnknown {
			t.Errorf("flags = %v/%v", s.Deposit, s.Withdraw)
		}
		if s.Transferable() {
			t.Error("unknown flags must not be transferable")
		}
	})

	t.Run("Unlisted asset present with unknown flags", func(t *testing.T) {
		s, ok := statuses["GHOST"]
		if !ok {
			t.Fatal("every requested asset must appear in the result")
		}
		if s.Deposit != domain.FlagUnknown {
			t.Errorf("deposit flag = %v", s.Deposit)
		}
	})
}
