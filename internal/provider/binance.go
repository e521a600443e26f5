package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const binanceBaseURL = "https://api.binance.com"

// BinanceClient fetches 24h ticker statistics for the USDT pair of a
// tracked coin.
type BinanceClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewBinanceClient(tracer trace.Tracer) *BinanceClient {
	return &BinanceClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: binanceBaseURL,
		tracer:  tracer,
	}
}

// FetchTicker returns the latest 24h snapshot for SYMBOL/USDT. Fields
// absent from the payload parse to 0.
func (c *BinanceClient) FetchTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	_, span := c.tracer.Start(ctx, "binance.fetch-ticker")
	defer span.End()

	pair := strings.ToUpper(strings.TrimSpace(symbol)) + "USDT"
	u := fmt.Sprintf("%s/api/v3/ticker/24hr?symbol=%s", c.baseURL, pair)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("binance API error %d: %s", resp.StatusCode, string(body))
	}

	var raw struct {
		LastPrice          string `json:"lastPrice"`
		Volume             string `json:"volume"`
		PriceChangePercent string `json:"priceChangePercent"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode binance ticker for %s: %w", pair, err)
	}

	return &domain.Ticker{
		PriceUSD:       parseFloat(raw.LastPrice),
		Volume24h:      parseFloat(raw.Volume),
		PriceChange24h: parseFloat(raw.PriceChangePercent),
	}, nil
}

func parseFloat(v string) float64 {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
