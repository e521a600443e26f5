package collector

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"
	"github.com/Rosssaab/CryptoDataLoader/internal/progress"
	"github.com/Rosssaab/CryptoDataLoader/internal/sentiment"

	"go.opentelemetry.io/otel/trace"
)

type Registry interface {
	TrackedUniverse(ctx context.Context, limit int) ([]domain.RankedCoin, error)
	ResolveOrRegister(ctx context.Context, symbol, fullName string) (domain.Coin, error)
}

type MentionStore interface {
	WriteMentions(ctx context.Context, coinID int64, batch []domain.Mention) error
	WritePrice(ctx context.Context, sample domain.PriceSample) error
}

type TickerFeed interface {
	FetchTicker(ctx context.Context, symbol string) (*domain.Ticker, error)
}

type PriceCache interface {
	Set(ctx context.Context, symbol string, sample domain.PriceSample) error
}

// Collector drives the collection cycles: for each tracked coin it
// fans out across the registered sources, scores and labels every
// mention, and hands one batch per coin to the store. Failures are
// isolated per (coin, source) pair; a persistence failure skips only
// that coin.
type Collector struct {
	tracer    trace.Tracer
	registry  Registry
	store     MentionStore
	scorer    *sentiment.Scorer
	sources   []Source
	sourceIDs map[string]int64
	ticker    TickerFeed
	prices    PriceCache
	sink      progress.Sink

	universeLimit int

	// serializes cycles so a manual trigger cannot interleave with a
	// scheduled run
	mu sync.Mutex
}

func New(
	tracer trace.Tracer,
	registry Registry,
	store MentionStore,
	scorer *sentiment.Scorer,
	sources []Source,
	sourceIDs map[string]int64,
	ticker TickerFeed,
	prices PriceCache,
	sink progress.Sink,
	universeLimit int,
) *Collector {
	if scorer == nil {
		scorer = sentiment.NewScorer()
	}
	if sink == nil {
		sink = progress.NopSink{}
	}
	if universeLimit <= 0 {
		universeLimit = 50
	}
	return &Collector{
		tracer:        tracer,
		registry:      registry,
		store:         store,
		scorer:        scorer,
		sources:       sources,
		sourceIDs:     sourceIDs,
		ticker:        ticker,
		prices:        prices,
		sink:          sink,
		universeLimit: universeLimit,
	}
}

// RunChatCycle performs one chat-collection pass over the tracked
// universe. It never returns an error: everything that goes wrong is
// recorded in the result and the cycle keeps moving.
func (c *Collector) RunChatCycle(ctx context.Context) domain.ChatRunResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, span := c.tracer.Start(ctx, "collector.chat-cycle")
	defer span.End()

	result := domain.ChatRunResult{}

	universe, err := c.registry.TrackedUniverse(ctx, c.universeLimit)
	if err != nil {
		result.Errors = append(result.Errors, "universe: "+err.Error())
		c.sink.Progress("chat collection aborted: " + err.Error())
		c.sink.ChatCycleDone(result)
		return result
	}
	c.sink.Progress(fmt.Sprintf("chat collection started: %d coins", len(universe)))

	for _, ranked := range universe {
		result.CoinsProcessed++

		coin, err := c.registry.ResolveOrRegister(ctx, ranked.Symbol, ranked.FullName)
		if err != nil {
			result.SkippedCoins++
			result.Errors = append(result.Errors, err.Error())
			log.Printf("chat cycle: %v", err)
			continue
		}

		var batch []domain.Mention
		for _, source := range c.sources {
			sourceID, ok := c.sourceIDs[source.Name()]
			if !ok {
				continue
			}
			for _, raw := range source.Collect(ctx, coin) {
				mention, ok := c.buildMention(coin.ID, sourceID, raw)
				if !ok {
					continue
				}
				batch = append(batch, mention)
			}
		}

		if len(batch) == 0 {
			c.sink.Progress(fmt.Sprintf("%s: no mentions", coin.Symbol))
			continue
		}
		if err := c.store.WriteMentions(ctx, coin.ID, batch); err != nil {
			result.FailedBatches++
			result.Errors = append(result.Errors, err.Error())
			log.Printf("chat cycle: %v", err)
			continue
		}
		result.BatchesPersisted++
		result.MentionsCollected += len(batch)
		c.sink.Progress(fmt.Sprintf("%s: %d mentions persisted", coin.Symbol, len(batch)))
	}

	c.sink.ChatCycleDone(result)
	return result
}

// buildMention attaches identity and sentiment to one raw mention.
// Empty content is dropped; stored content is capped at 500 runes.
func (c *Collector) buildMention(coinID, sourceID int64, raw domain.RawMention) (domain.Mention, bool) {
	content := strings.TrimSpace(raw.Content)
	if content == "" {
		return domain.Mention{}, false
	}
	score := c.scorer.Score(content)
	return domain.Mention{
		CoinID:         coinID,
		SourceID:       sourceID,
		Content:        truncateRunes(content, domain.MaxContentRunes),
		URL:            raw.URL,
		SentimentScore: score,
		SentimentLabel: domain.SentimentLabel(score),
	}, true
}

// RunPriceCycle fetches and persists one price sample per tracked
// coin. A missing ticker still produces a zero-valued sample so the
// series has a row for every coin in every cycle.
func (c *Collector) RunPriceCycle(ctx context.Context) domain.PriceRunResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, span := c.tracer.Start(ctx, "collector.price-cycle")
	defer span.End()

	result := domain.PriceRunResult{}

	universe, err := c.registry.TrackedUniverse(ctx, c.universeLimit)
	if err != nil {
		result.Errors = append(result.Errors, "universe: "+err.Error())
		c.sink.Progress("price collection aborted: " + err.Error())
		c.sink.PriceCycleDone(result)
		return result
	}
	c.sink.Progress(fmt.Sprintf("price collection started: %d coins", len(universe)))

	for _, ranked := range universe {
		result.CoinsProcessed++

		coin, err := c.registry.ResolveOrRegister(ctx, ranked.Symbol, ranked.FullName)
		if err != nil {
			result.FailedCoins++
			result.Errors = append(result.Errors, err.Error())
			log.Printf("price cycle: %v", err)
			continue
		}

		sample := domain.PriceSample{CoinID: coin.ID, DataSource: "binance"}
		ticker, err := c.ticker.FetchTicker(ctx, coin.Symbol)
		if err != nil {
			log.Printf("price cycle: ticker %s: %v", coin.Symbol, err)
		} else if ticker != nil {
			sample.PriceUSD = ticker.PriceUSD
			sample.Volume24h = ticker.Volume24h
			sample.PriceChange24h = ticker.PriceChange24h
		}

		if err := c.store.WritePrice(ctx, sample); err != nil {
			result.FailedCoins++
			result.Errors = append(result.Errors, err.Error())
			log.Printf("price cycle: %v", err)
			continue
		}
		result.RecordsAdded++

		if c.prices != nil {
			if err := c.prices.Set(ctx, coin.Symbol, sample); err != nil {
				log.Printf("price cycle: cache %s: %v", coin.Symbol, err)
			}
		}
		c.sink.Progress(fmt.Sprintf("%s: $%.4f", coin.Symbol, sample.PriceUSD))
	}

	c.sink.PriceCycleDone(result)
	return result
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
