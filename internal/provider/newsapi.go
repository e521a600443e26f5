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

// NewsClient searches NewsAPI's everything endpoint for articles
// mentioning a coin.
type NewsClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewNewsClient(baseURL, apiKey string, tracer trace.Tracer) *NewsClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://newsapi.org/v2/everything"
	}
	return &NewsClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
		tracer:  tracer,
	}
}

// Search returns article titles for "SYMBOL OR FullName cryptocurrency",
// newest first, in English, capped by the provider's default page size.
func (c *NewsClient) Search(ctx context.Context, symbol, fullName string) ([]Item, error) {
	_, span := c.tracer.Start(ctx, "newsapi.search")
	defer span.End()

	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s OR %s cryptocurrency", symbol, fullName))
	params.Set("apiKey", c.apiKey)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
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
		return nil, fmt.Errorf("newsapi error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Articles []struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		} `json:"articles"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode newsapi response: %w", err)
	}

	items := make([]Item, 0, len(payload.Articles))
	for _, article := range payload.Articles {
		title := strings.TrimSpace(article.Title)
		if title == "" {
			continue
		}
		items = append(items, Item{Content: title, URL: strings.TrimSpace(article.URL)})
	}
	return items, nil
}
