package collector

import (
	"context"
	"log"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"
	"github.com/Rosssaab/CryptoDataLoader/internal/provider"
)

// Source is one external mention provider. Collect never fails
// outward: transport errors, bad status codes and malformed payloads
// are logged and turned into an empty result, so one provider's outage
// cannot block the rest of a coin's cycle.
type Source interface {
	Name() string
	Collect(ctx context.Context, coin domain.Coin) []domain.RawMention
}

type newsSearcher interface {
	Search(ctx context.Context, symbol, fullName string) ([]provider.Item, error)
}

type NewsSource struct {
	client newsSearcher
}

func NewNewsSource(client newsSearcher) *NewsSource {
	return &NewsSource{client: client}
}

func (s *NewsSource) Name() string { return domain.SourceNewsAPI }

func (s *NewsSource) Collect(ctx context.Context, coin domain.Coin) []domain.RawMention {
	items, err := s.client.Search(ctx, coin.Symbol, coin.FullName)
	if err != nil {
		log.Printf("newsapi: collect %s: %v", coin.Symbol, err)
		return nil
	}
	return toRawMentions(items)
}

type subredditSearcher interface {
	SearchSubreddit(ctx context.Context, subreddit, symbol, fullName string) ([]provider.Item, error)
}

// RedditSource queries a fixed list of subreddits and concatenates the
// results. A failing subreddit is skipped, not fatal to the rest.
type RedditSource struct {
	client     subredditSearcher
	subreddits []string
}

func NewRedditSource(client subredditSearcher, subreddits []string) *RedditSource {
	return &RedditSource{client: client, subreddits: subreddits}
}

func (s *RedditSource) Name() string { return domain.SourceReddit }

func (s *RedditSource) Collect(ctx context.Context, coin domain.Coin) []domain.RawMention {
	var out []domain.RawMention
	for _, subreddit := range s.subreddits {
		items, err := s.client.SearchSubreddit(ctx, subreddit, coin.Symbol, coin.FullName)
		if err != nil {
			log.Printf("reddit: collect %s from r/%s: %v", coin.Symbol, subreddit, err)
			continue
		}
		out = append(out, toRawMentions(items)...)
	}
	return out
}

type tweetSearcher interface {
	SearchRecent(ctx context.Context, symbol, fullName string) ([]provider.Item, error)
}

type TwitterSource struct {
	client tweetSearcher
}

func NewTwitterSource(client tweetSearcher) *TwitterSource {
	return &TwitterSource{client: client}
}

func (s *TwitterSource) Name() string { return domain.SourceTwitter }

func (s *TwitterSource) Collect(ctx context.Context, coin domain.Coin) []domain.RawMention {
	items, err := s.client.SearchRecent(ctx, coin.Symbol, coin.FullName)
	if err != nil {
		log.Printf("twitter: collect %s: %v", coin.Symbol, err)
		return nil
	}
	return toRawMentions(items)
}

type compareNewsReader interface {
	News(ctx context.Context, symbol string) ([]provider.Item, error)
}

type CryptoCompareSource struct {
	client compareNewsReader
}

func NewCryptoCompareSource(client compareNewsReader) *CryptoCompareSource {
	return &CryptoCompareSource{client: client}
}

func (s *CryptoCompareSource) Name() string { return domain.SourceCryptoCompare }

func (s *CryptoCompareSource) Collect(ctx context.Context, coin domain.Coin) []domain.RawMention {
	items, err := s.client.News(ctx, coin.Symbol)
	if err != nil {
		log.Printf("cryptocompare: collect %s: %v", coin.Symbol, err)
		return nil
	}
	return toRawMentions(items)
}

type descriptionFetcher interface {
	FetchDescription(ctx context.Context, symbol string) ([]provider.Item, error)
}

type CoinGeckoSource struct {
	client descriptionFetcher
}

func NewCoinGeckoSource(client descriptionFetcher) *CoinGeckoSource {
	return &CoinGeckoSource{client: client}
}

func (s *CoinGeckoSource) Name() string { return domain.SourceCoinGecko }

func (s *CoinGeckoSource) Collect(ctx context.Context, coin domain.Coin) []domain.RawMention {
	items, err := s.client.FetchDescription(ctx, coin.Symbol)
	if err != nil {
		log.Printf("coingecko: collect %s: %v", coin.Symbol, err)
		return nil
	}
	return toRawMentions(items)
}

type panicPostsReader interface {
	Posts(ctx context.Context, symbol string) ([]provider.Item, error)
}

type CryptoPanicSource struct {
	client panicPostsReader
}

func NewCryptoPanicSource(client panicPostsReader) *CryptoPanicSource {
	return &CryptoPanicSource{client: client}
}

func (s *CryptoPanicSource) Name() string { return domain.SourceCryptoPanic }

func (s *CryptoPanicSource) Collect(ctx context.Context, coin domain.Coin) []domain.RawMention {
	items, err := s.client.Posts(ctx, coin.Symbol)
	if err != nil {
		log.Printf("cryptopanic: collect %s: %v", coin.Symbol, err)
		return nil
	}
	return toRawMentions(items)
}

func toRawMentions(items []provider.Item) []domain.RawMention {
	if len(items) == 0 {
		return nil
	}
	out := make([]domain.RawMention, 0, len(items))
	for _, item := range items {
		if item.Content == "" {
			continue
		}
		out = append(out, domain.RawMention{Content: item.Content, URL: item.URL})
	}
	return out
}
