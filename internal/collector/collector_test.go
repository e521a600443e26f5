package collector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"
	"github.com/Rosssaab/CryptoDataLoader/internal/progress"
	"github.com/Rosssaab/CryptoDataLoader/internal/provider"
	"github.com/Rosssaab/CryptoDataLoader/internal/sentiment"

	"go.opentelemetry.io/otel/trace"
)

func testTracer() trace.Tracer {
	return trace.NewNoopTracerProvider().Tracer("test")
}

type fakeRegistry struct {
	universe    []domain.RankedCoin
	universeErr error
	coins       map[string]domain.Coin
	inserts     int
	nextID      int64
}

func (f *fakeRegistry) TrackedUniverse(ctx context.Context, limit int) ([]domain.RankedCoin, error) {
	return f.universe, f.universeErr
}

func (f *fakeRegistry) ResolveOrRegister(ctx context.Context, symbol, fullName string) (domain.Coin, error) {
	if f.coins == nil {
		f.coins = make(map[string]domain.Coin)
	}
	if c, ok := f.coins[symbol]; ok {
		return c, nil
	}
	f.inserts++
	f.nextID++
	c := domain.Coin{ID: f.nextID, Symbol: symbol, FullName: fullName}
	f.coins[symbol] = c
	return c, nil
}

type fakeStore struct {
	batches      map[int64][]domain.Mention
	prices       []domain.PriceSample
	failMentions map[int64]bool
	failPrice    map[int64]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		batches:      make(map[int64][]domain.Mention),
		failMentions: make(map[int64]bool),
		failPrice:    make(map[int64]bool),
	}
}

func (f *fakeStore) WriteMentions(ctx context.Context, coinID int64, batch []domain.Mention) error {
	if f.failMentions[coinID] {
		return &domain.PersistenceError{CoinID: coinID, Op: "write mentions", Err: errors.New("deadlock")}
	}
	f.batches[coinID] = append(f.batches[coinID], batch...)
	return nil
}

func (f *fakeStore) WritePrice(ctx context.Context, sample domain.PriceSample) error {
	if f.failPrice[sample.CoinID] {
		return &domain.PersistenceError{CoinID: sample.CoinID, Op: "write price", Err: errors.New("deadlock")}
	}
	f.prices = append(f.prices, sample)
	return nil
}

type stubSource struct {
	name     string
	mentions []domain.RawMention
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Collect(ctx context.Context, coin domain.Coin) []domain.RawMention {
	return s.mentions
}

type failingNewsClient struct{}

func (failingNewsClient) Search(ctx context.Context, symbol, fullName string) ([]provider.Item, error) {
	return nil, errors.New("newsapi: API error 500")
}

type stubTicker struct {
	ticker *domain.Ticker
	err    error
}

func (s *stubTicker) FetchTicker(ctx context.Context, symbol string) (*domain.Ticker, error) {
	return s.ticker, s.err
}

func allSourceIDs() map[string]int64 {
	ids := make(map[string]int64)
	for i, name := range domain.ChatSourceNames() {
		ids[name] = int64(i + 1)
	}
	return ids
}

func newChatCollector(reg Registry, store MentionStore, sources []Source) *Collector {
	return New(testTracer(), reg, store, sentiment.NewScorer(), sources, allSourceIDs(),
		&stubTicker{}, nil, progress.NopSink{}, 50)
}

func TestChatCycleOneSourceFailingStillPersistsOthers(t *testing.T) {
	reg := &fakeRegistry{universe: []domain.RankedCoin{{Symbol: "BTC", FullName: "Bitcoin"}}}
	store := newFakeStore()

	sources := []Source{
		NewNewsSource(failingNewsClient{}),
		&stubSource{name: domain.SourceReddit, mentions: []domain.RawMention{{Content: "bullish rally incoming"}}},
		&stubSource{name: domain.SourceTwitter, mentions: []domain.RawMention{{Content: "moon soon"}}},
		&stubSource{name: domain.SourceCryptoCompare, mentions: []domain.RawMention{{Content: "BTC gains momentum"}}},
		&stubSource{name: domain.SourceCoinGecko, mentions: []domain.RawMention{{Content: "Bitcoin is a decentralized currency"}}},
		&stubSource{name: domain.SourceCryptoPanic, mentions: []domain.RawMention{{Content: "market crash fears"}}},
	}

	result := newChatCollector(reg, store, sources).RunChatCycle(context.Background())

	if result.CoinsProcessed != 1 {
		t.Fatalf("expected 1 coin processed, got %d", result.CoinsProcessed)
	}
	batch := store.batches[1]
	if len(batch) != 5 {
		t.Fatalf("expected 5 mentions from the healthy sources, got %d", len(batch))
	}
	if result.MentionsCollected != 5 || result.BatchesPersisted != 1 {
		t.Fatalf("unexpected counters: %+v", result)
	}
}

func TestChatCycleTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("a", 600)
	reg := &fakeRegistry{universe: []domain.RankedCoin{{Symbol: "ETH", FullName: "Ethereum"}}}
	store := newFakeStore()
	sources := []Source{
		&stubSource{name: domain.SourceReddit, mentions: []domain.RawMention{{Content: long}}},
	}

	newChatCollector(reg, store, sources).RunChatCycle(context.Background())

	batch := store.batches[1]
	if len(batch) != 1 {
		t.Fatalf("expected 1 mention, got %d", len(batch))
	}
	if batch[0].Content != long[:500] {
		t.Fatalf("expected first 500 characters, got %d runes", len([]rune(batch[0].Content)))
	}
}

func TestChatCycleDropsEmptyContent(t *testing.T) {
	reg := &fakeRegistry{universe: []domain.RankedCoin{{Symbol: "SOL", FullName: "Solana"}}}
	store := newFakeStore()
	sources := []Source{
		&stubSource{name: domain.SourceTwitter, mentions: []domain.RawMention{
			{Content: "   "},
			{Content: "solid gains today"},
		}},
	}

	newChatCollector(reg, store, sources).RunChatCycle(context.Background())

	batch := store.batches[1]
	if len(batch) != 1 {
		t.Fatalf("expected blank mention dropped, got %d mentions", len(batch))
	}
}

func TestChatCycleLabelMatchesScoreSign(t *testing.T) {
	reg := &fakeRegistry{universe: []domain.RankedCoin{{Symbol: "BTC", FullName: "Bitcoin"}}}
	store := newFakeStore()
	sources := []Source{
		&stubSource{name: domain.SourceReddit, mentions: []domain.RawMention{
			{Content: "bullish breakout, great gains"},
			{Content: "scam rug pull, terrible crash"},
			{Content: "the block height increased"},
		}},
	}

	newChatCollector(reg, store, sources).RunChatCycle(context.Background())

	for _, m := range store.batches[1] {
		want := domain.LabelNeutral
		if m.SentimentScore > 0 {
			want = domain.LabelPositive
		} else if m.SentimentScore < 0 {
			want = domain.LabelNegative
		}
		if m.SentimentLabel != want {
			t.Fatalf("score %f labelled %s, want %s", m.SentimentScore, m.SentimentLabel, want)
		}
	}
}

func TestChatCyclePersistenceFailureContinues(t *testing.T) {
	reg := &fakeRegistry{universe: []domain.RankedCoin{
		{Symbol: "BTC", FullName: "Bitcoin"},
		{Symbol: "ETH", FullName: "Ethereum"},
		{Symbol: "SOL", FullName: "Solana"},
	}}
	store := newFakeStore()
	store.failMentions[2] = true
	sources := []Source{
		&stubSource{name: domain.SourceReddit, mentions: []domain.RawMention{{Content: "steady volume"}}},
	}

	result := newChatCollector(reg, store, sources).RunChatCycle(context.Background())

	if result.CoinsProcessed != 3 {
		t.Fatalf("expected all 3 coins processed, got %d", result.CoinsProcessed)
	}
	if result.FailedBatches != 1 {
		t.Fatalf("expected 1 failed batch, got %d", result.FailedBatches)
	}
	if result.BatchesPersisted != 2 {
		t.Fatalf("expected 2 persisted batches, got %d", result.BatchesPersisted)
	}
	if len(store.batches[1]) != 1 || len(store.batches[3]) != 1 {
		t.Fatalf("expected batches for coins 1 and 3, got %v", store.batches)
	}
}

func TestChatCycleUniverseFailureAborts(t *testing.T) {
	reg := &fakeRegistry{universeErr: errors.New("rate limited")}
	store := newFakeStore()

	result := newChatCollector(reg, store, nil).RunChatCycle(context.Background())

	if result.CoinsProcessed != 0 || len(result.Errors) != 1 {
		t.Fatalf("expected aborted cycle, got %+v", result)
	}
}

func TestPriceCycleRegistersAndPersists(t *testing.T) {
	reg := &fakeRegistry{universe: []domain.RankedCoin{{Symbol: "ETH", FullName: "Ethereum"}}}
	store := newFakeStore()
	ticker := &stubTicker{ticker: &domain.Ticker{PriceUSD: 3120.5, Volume24h: 9000, PriceChange24h: 1.8}}
	c := New(testTracer(), reg, store, sentiment.NewScorer(), nil, allSourceIDs(),
		ticker, nil, progress.NopSink{}, 50)

	result := c.RunPriceCycle(context.Background())

	if reg.inserts != 1 {
		t.Fatalf("expected ETH registered once, got %d inserts", reg.inserts)
	}
	if result.RecordsAdded != 1 || len(store.prices) != 1 {
		t.Fatalf("expected one price row, got %+v", result)
	}
	sample := store.prices[0]
	if sample.DataSource != "binance" {
		t.Fatalf("expected data source binance, got %s", sample.DataSource)
	}
	if sample.PriceUSD != 3120.5 || sample.Volume24h != 9000 || sample.PriceChange24h != 1.8 {
		t.Fatalf("unexpected sample %+v", sample)
	}
}

func TestPriceCycleNilTickerPersistsZeroSample(t *testing.T) {
	reg := &fakeRegistry{universe: []domain.RankedCoin{{Symbol: "DOGE", FullName: "Dogecoin"}}}
	store := newFakeStore()
	ticker := &stubTicker{err: errors.New("binance API error 451")}
	c := New(testTracer(), reg, store, sentiment.NewScorer(), nil, allSourceIDs(),
		ticker, nil, progress.NopSink{}, 50)

	result := c.RunPriceCycle(context.Background())

	if result.RecordsAdded != 1 || len(store.prices) != 1 {
		t.Fatalf("expected zero-valued row persisted, got %+v", result)
	}
	sample := store.prices[0]
	if sample.PriceUSD != 0 || sample.Volume24h != 0 || sample.PriceChange24h != 0 {
		t.Fatalf("expected zero fields, got %+v", sample)
	}
}

func TestPriceCycleWriteFailureContinues(t *testing.T) {
	reg := &fakeRegistry{universe: []domain.RankedCoin{
		{Symbol: "BTC", FullName: "Bitcoin"},
		{Symbol: "ETH", FullName: "Ethereum"},
	}}
	store := newFakeStore()
	store.failPrice[1] = true
	ticker := &stubTicker{ticker: &domain.Ticker{PriceUSD: 1}}
	c := New(testTracer(), reg, store, sentiment.NewScorer(), nil, allSourceIDs(),
		ticker, nil, progress.NopSink{}, 50)

	result := c.RunPriceCycle(context.Background())

	if result.CoinsProcessed != 2 {
		t.Fatalf("expected both coins processed, got %d", result.CoinsProcessed)
	}
	if result.FailedCoins != 1 || result.RecordsAdded != 1 {
		t.Fatalf("unexpected counters %+v", result)
	}
	if store.prices[0].CoinID != 2 {
		t.Fatalf("expected surviving row for coin 2, got %+v", store.prices[0])
	}
}

type recordingCache struct {
	symbols []string
}

func (r *recordingCache) Set(ctx context.Context, symbol string, sample domain.PriceSample) error {
	r.symbols = append(r.symbols, symbol)
	return nil
}

func TestPriceCycleUpdatesCache(t *testing.T) {
	reg := &fakeRegistry{universe: []domain.RankedCoin{{Symbol: "BTC", FullName: "Bitcoin"}}}
	store := newFakeStore()
	cacheSink := &recordingCache{}
	ticker := &stubTicker{ticker: &domain.Ticker{PriceUSD: 64000}}
	c := New(testTracer(), reg, store, sentiment.NewScorer(), nil, allSourceIDs(),
		ticker, cacheSink, progress.NopSink{}, 50)

	c.RunPriceCycle(context.Background())

	if len(cacheSink.symbols) != 1 || cacheSink.symbols[0] != "BTC" {
		t.Fatalf("expected cache updated for BTC, got %v", cacheSink.symbols)
	}
}

func TestTruncateRunesKeepsMultibyteBoundaries(t *testing.T) {
	s := strings.Repeat("é", 510)
	got := truncateRunes(s, 500)
	if len([]rune(got)) != 500 {
		t.Fatalf("expected 500 runes, got %d", len([]rune(got)))
	}
	if !strings.HasPrefix(s, got) {
		t.Fatal("truncation must be a prefix of the original")
	}
}
