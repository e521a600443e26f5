package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const cryptoCompareNewsURL = "https://min-api.cryptocompare.com/data/v2/news/?lang=EN"

// CryptoCompareClient fetches the English news feed and filters it to
// articles whose title mentions a coin's symbol.
type CryptoCompareClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewCryptoCompareClient(apiKey string, tracer trace.Tracer) *CryptoCompareClient {
	return &CryptoCompareClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: cryptoCompareNewsURL,
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

// News returns headline items whose title contains the symbol,
// case-insensitively. The feed itself is not coin-scoped, so the filter
// is applied client-side.
func (c *CryptoCompareClient) News(ctx context.Context, symbol string) ([]Item, error) {
	_, span := c.tracer.Start(ctx, "cryptocompare.news")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("authorization", "Apikey "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("cryptocompare API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"Data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cryptocompare response: %w", err)
	}

	term := strings.ToLower(strings.TrimSpace(symbol))
	items := make([]Item, 0, len(payload.Data))
	for _, article := range payload.Data {
		title := strings.TrimSpace(article.Title)
		if title == "" || !strings.Contains(strings.ToLower(title), term) {
			continue
		}
		items = append(items, Item{Content: title, URL: strings.TrimSpace(article.URL)})
	}
	return items, nil
}
