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

const twitterBaseURL = "https://api.twitter.com/2/tweets/search/recent"

// TwitterClient searches recent tweets for coin hashtags. The provider
// imposes a low request-rate ceiling, so every call waits out a fixed
// pre-call delay local to this client.
type TwitterClient struct {
	client  *http.Client
	baseURL string
	bearer  string
	tracer  trace.Tracer
	delay   time.Duration
	sleep   func(time.Duration)
}

func NewTwitterClient(bearerToken string, tracer trace.Tracer) *TwitterClient {
	return &TwitterClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: twitterBaseURL,
		bearer:  bearerToken,
		tracer:  tracer,
		delay:   2 * time.Second,
		sleep:   time.Sleep,
	}
}

// SearchRecent returns the text of up to 100 recent English tweets
// matching the coin's hashtags, retweets excluded. Tweets carry no URL.
func (c *TwitterClient) SearchRecent(ctx context.Context, symbol, fullName string) ([]Item, error) {
	_, span := c.tracer.Start(ctx, "twitter.search-recent")
	defer span.End()

	c.sleep(c.delay)

	query := fmt.Sprintf("#%s OR #%s crypto -is:retweet lang:en",
		strings.ToLower(symbol), strings.ToLower(strings.ReplaceAll(fullName, " ", "")))
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", "100")
	params.Set("tweet.fields", "created_at,text,public_metrics")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.bearer)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("twitter API error %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		Data []struct {
			Text string `json:"text"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode twitter response: %w", err)
	}

	items := make([]Item, 0, len(payload.Data))
	for _, tweet := range payload.Data {
		text := strings.TrimSpace(tweet.Text)
		if text == "" {
			continue
		}
		items = append(items, Item{Content: text})
	}
	return items, nil
}
