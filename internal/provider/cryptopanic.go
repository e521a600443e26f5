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

	"go.opentelemetry.io/otel/trace"
)

// CryptoPanicClient fetches hot news posts scoped to a coin via the
// currencies parameter.
type CryptoPanicClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewCryptoPanicClient(baseURL, apiKey string, tracer trace.Tracer) *CryptoPanicClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://cryptopanic.com/api/v1/"
	}
	return &CryptoPanicClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

// Posts returns hot news post titles for the given symbol.
func (c *CryptoPanicClient) Posts(ctx context.Context, symbol string) ([]Item, error) {
	_, span := c.tracer.Start(ctx, "cryptopanic.posts")
	defer span.End()

	params := url.Values{}
	params.Set("auth_token", c.apiKey)
	params.Set("currencies", symbol)
	params.Set("public", "true")
	params.Set("filter", "hot")
	params.Set("kind", "news")

	u := strings.TrimRight(c.baseURL, "/") + "/posts/?" + params.Encode()
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
		return nil, fmt.Errorf("cryptopanic API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Results []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode cryptopanic response: %w", err)
	}

	items := make([]Item, 0, len(payload.Results))
	for _, post := range payload.Results {
		title := strings.TrimSpace(post.Title)
		if title == "" {
			continue
		}
		items = append(items, Item{Content: title, URL: strings.TrimSpace(post.URL)})
	}
	return items, nil
}
