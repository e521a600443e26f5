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

const redditBaseURL = "https://www.reddit.com"

// RedditClient searches a subreddit for recent posts mentioning a coin.
type RedditClient struct {
	client    *http.Client
	baseURL   string
	userAgent string
	tracer    trace.Tracer
}

func NewRedditClient(userAgent string, tracer trace.Tracer) *RedditClient {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "CryptoSentimentBot/1.0"
	}
	return &RedditClient{
		client:    &http.Client{Timeout: 20 * time.Second},
		baseURL:   redditBaseURL,
		userAgent: userAgent,
		tracer:    tracer,
	}
}

// SearchSubreddit returns posts from the last day matching the coin's
// symbol or full name. Content is the title plus selftext; posts whose
// combined text trims to fewer than 10 characters are dropped.
func (c *RedditClient) SearchSubreddit(ctx context.Context, subreddit, symbol, fullName string) ([]Item, error) {
	_, span := c.tracer.Start(ctx, "reddit.search-subreddit")
	defer span.End()

	base := strings.TrimRight(c.baseURL, "/")
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s OR %s", symbol, fullName))
	params.Set("t", "day")
	params.Set("limit", "100")
	u := fmt.Sprintf("%s/r/%s/search.json?%s", base, url.PathEscape(subreddit), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("reddit API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data struct {
					Title     string `json:"title"`
					SelfText  string `json:"selftext"`
					Permalink string `json:"permalink"`
				} `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	items := make([]Item, 0, len(payload.Data.Children))
	for _, row := range payload.Data.Children {
		data := row.Data
		if strings.TrimSpace(data.Title) == "" {
			continue
		}
		content := fmt.Sprintf("Title: %s\nContent: %s", data.Title, data.SelfText)
		if len(strings.TrimSpace(content)) < 10 {
			continue
		}
		itemURL := ""
		if permalink := strings.TrimSpace(data.Permalink); permalink != "" {
			itemURL = "https://reddit.com" + permalink
		}
		items = append(items, Item{Content: content, URL: itemURL})
	}
	return items, nil
}
