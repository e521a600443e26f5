package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

const coingeckoBaseURL = "https://api.coingecko.com/api/v3"

// CoinGeckoClient talks to the CoinGecko free API: the ranked-asset
// feed for the tracked universe and coin descriptions as a mention
// source. Rate limited to 8 requests per minute.
type CoinGeckoClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
	limiter *RateLimiter
}

func NewCoinGeckoClient(tracer trace.Tracer) *CoinGeckoClient {
	return &CoinGeckoClient{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: coingeckoBaseURL,
		tracer:  tracer,
		limiter: NewRateLimiter(8, 7500*time.Millisecond),
	}
}

// FetchMarkets returns the top coins by market capitalisation, in feed
// order, without any denylist filtering. Symbols are uppercased.
func (c *CoinGeckoClient) FetchMarkets(ctx context.Context, limit int) ([]domain.RankedCoin, error) {
	_, span := c.tracer.Start(ctx, "coingecko.fetch-markets")
	defer span.End()

	if limit <= 0 {
		limit = 50
	}
	u := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1&sparkline=false",
		c.baseURL, limit)

	body, err := c.doRequest(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetch markets: %w", err)
	}

	var raw []struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("parse markets: %w", err)
	}

	coins := make([]domain.RankedCoin, 0, len(raw))
	for _, row := range raw {
		symbol := strings.ToUpper(strings.TrimSpace(row.Symbol))
		name := strings.TrimSpace(row.Name)
		if symbol == "" || name == "" {
			continue
		}
		coins = append(coins, domain.RankedCoin{Symbol: symbol, FullName: name})
	}
	return coins, nil
}

// FetchDescription looks a symbol up via /search and returns the coin's
// English description as a single item linking to its CoinGecko page.
func (c *CoinGeckoClient) FetchDescription(ctx context.Context, symbol string) ([]Item, error) {
	_, span := c.tracer.Start(ctx, "coingecko.fetch-description")
	defer span.End()

	searchURL := fmt.Sprintf("%s/search?query=%s", c.baseURL, url.QueryEscape(symbol))
	body, err := c.doRequest(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", symbol, err)
	}

	var search struct {
		Coins []struct {
			ID string `json:"id"`
		} `json:"coins"`
	}
	if err := json.Unmarshal(body, &search); err != nil {
		return nil, fmt.Errorf("parse search for %s: %w", symbol, err)
	}
	if len(search.Coins) == 0 {
		return nil, nil
	}

	coinID := search.Coins[0].ID
	detailsURL := fmt.Sprintf("%s/coins/%s", c.baseURL, url.PathEscape(coinID))
	body, err = c.doRequest(ctx, detailsURL)
	if err != nil {
		return nil, fmt.Errorf("fetch coin %s: %w", coinID, err)
	}

	var details struct {
		Description map[string]string `json:"description"`
	}
	if err := json.Unmarshal(body, &details); err != nil {
		return nil, fmt.Errorf("parse coin %s: %w", coinID, err)
	}

	content := strings.TrimSpace(details.Description["en"])
	if content == "" {
		return nil, nil
	}
	return []Item{{
		Content: content,
		URL:     "https://www.coingecko.com/en/coins/" + coinID,
	}}, nil
}

func (c *CoinGeckoClient) doRequest(ctx context.Context, u string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

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
		return nil, fmt.Errorf("coingecko API error %d: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
