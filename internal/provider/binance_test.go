package provider

import (
	"context"
	"net/http"
	"testing"
)

func TestFetchTickerParse(t *testing.T) {
	c := NewBinanceClient(testTracer())
	c.baseURL = "https://example.com"
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/v3/ticker/24hr" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("symbol") != "ETHUSDT" {
			t.Fatalf("unexpected pair: %s", req.URL.RawQuery)
		}
		body := `{"lastPrice":"2501.35","volume":"12345.6","priceChangePercent":"-2.15"}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	ticker, err := c.FetchTicker(context.Background(), "ETH")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticker.PriceUSD != 2501.35 || ticker.Volume24h != 12345.6 || ticker.PriceChange24h != -2.15 {
		t.Fatalf("unexpected ticker: %+v", ticker)
	}
}

func TestFetchTickerMissingFieldsDefaultZero(t *testing.T) {
	c := NewBinanceClient(testTracer())
	c.baseURL = "https://example.com"
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"lastPrice":"104.2"}`), nil
	})}

	ticker, err := c.FetchTicker(context.Background(), "SOL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ticker.PriceUSD != 104.2 || ticker.Volume24h != 0 || ticker.PriceChange24h != 0 {
		t.Fatalf("missing fields should default to zero: %+v", ticker)
	}
}

func TestFetchTickerErrorResponse(t *testing.T) {
	c := NewBinanceClient(testTracer())
	c.baseURL = "https://example.com"
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"code":-1121,"msg":"Invalid symbol."}`), nil
	})}

	if _, err := c.FetchTicker(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for invalid symbol")
	}
}
