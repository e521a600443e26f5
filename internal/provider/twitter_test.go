package provider

import (
	"context"
	"net/http"
	"testing"
	"time"
)

func TestSearchRecentDelayAndQuery(t *testing.T) {
	c := NewTwitterClient("bearer-token", testTracer())
	c.baseURL = "https://example.com/2/tweets/search/recent"

	var slept time.Duration
	c.sleep = func(d time.Duration) { slept = d }

	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Header.Get("Authorization") != "Bearer bearer-token" {
			t.Fatalf("missing bearer header")
		}
		q := req.URL.Query()
		if q.Get("query") != "#doge OR #dogecoin crypto -is:retweet lang:en" {
			t.Fatalf("unexpected query: %q", q.Get("query"))
		}
		if q.Get("max_results") != "100" {
			t.Fatalf("unexpected max_results: %s", q.Get("max_results"))
		}
		body := `{"data":[{"text":"DOGE to the moon"},{"text":""}]}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	items, err := c.SearchRecent(context.Background(), "DOGE", "Dogecoin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slept != 2*time.Second {
		t.Fatalf("expected 2s pre-call delay, got %v", slept)
	}
	if len(items) != 1 || items[0].Content != "DOGE to the moon" {
		t.Fatalf("unexpected items: %+v", items)
	}
	if items[0].URL != "" {
		t.Fatalf("tweets should carry no url, got %s", items[0].URL)
	}
}

func TestSearchRecentRateLimited(t *testing.T) {
	c := NewTwitterClient("bearer-token", testTracer())
	c.baseURL = "https://example.com/2/tweets/search/recent"
	c.sleep = func(time.Duration) {}
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusTooManyRequests, `{"title":"Too Many Requests"}`), nil
	})}

	if _, err := c.SearchRecent(context.Background(), "BTC", "Bitcoin"); err == nil {
		t.Fatal("expected error on 429")
	}
}
