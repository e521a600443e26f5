package domain

import "time"

// Coin is a tracked asset. The id is assigned by Postgres on first
// registration; symbols are stored uppercase and unique.
type Coin struct {
	ID       int64
	Symbol   string
	FullName string
}

// ChatSource is a static lookup row loaded once at startup.
type ChatSource struct {
	ID   int64
	Name string
}

// RawMention is what a source adapter returns before identity and
// sentiment are attached.
type RawMention struct {
	Content string
	URL     string
}

// Mention is one persisted unit of sentiment-bearing text. Content is
// at most MaxContentRunes runes and never empty; the timestamp column
// is assigned by the database at write time.
type Mention struct {
	CoinID         int64
	SourceID       int64
	Content        string
	URL            string
	SentimentScore float64
	SentimentLabel string
}

const MaxContentRunes = 500

// PriceSample is one price observation for a coin. Fields missing
// upstream are zero, never null.
type PriceSample struct {
	CoinID         int64
	PriceUSD       float64
	Volume24h      float64
	PriceChange24h float64
	DataSource     string
	Timestamp      time.Time
}

// Ticker is the exchange 24h snapshot for a trading pair.
type Ticker struct {
	PriceUSD       float64
	Volume24h      float64
	PriceChange24h float64
}

// RankedCoin is one entry of the ranked-asset feed, before it has an
// identity in the store.
type RankedCoin struct {
	Symbol   string
	FullName string
}

// ChatRunResult summarises one chat-collection cycle.
type ChatRunResult struct {
	CoinsProcessed    int
	MentionsCollected int
	BatchesPersisted  int
	FailedBatches     int
	SkippedCoins      int
	Errors            []string
}

// PriceRunResult summarises one price-collection cycle.
type PriceRunResult struct {
	CoinsProcessed int
	RecordsAdded   int
	FailedCoins    int
	Errors         []string
}
