package repository

import (
	"context"
	"strings"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createTables = `
CREATE TABLE IF NOT EXISTS coins (
    coin_id   SERIAL PRIMARY KEY,
    symbol    TEXT   NOT NULL UNIQUE,
    full_name TEXT   NOT NULL
);

CREATE TABLE IF NOT EXISTS chat_source (
    source_id   SERIAL PRIMARY KEY,
    source_name TEXT   NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS chat_data (
    chat_id         SERIAL           PRIMARY KEY,
    coin_id         INT              NOT NULL REFERENCES coins(coin_id),
    source_id       INT              NOT NULL REFERENCES chat_source(source_id),
    content         TEXT             NOT NULL,
    sentiment_score DOUBLE PRECISION NOT NULL,
    sentiment_label TEXT             NOT NULL,
    url             TEXT,
    timestamp       TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_chat_data_coin_time
    ON chat_data (coin_id, timestamp DESC);

CREATE TABLE IF NOT EXISTS price_data (
    timestamp        TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    coin_id          INT              NOT NULL REFERENCES coins(coin_id),
    price_usd        DOUBLE PRECISION NOT NULL,
    volume_24h       DOUBLE PRECISION NOT NULL,
    price_change_24h DOUBLE PRECISION NOT NULL,
    data_source      TEXT             NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_price_data_coin_time
    ON price_data (coin_id, timestamp DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the persistence gateway. Mentions and price samples are
// written under a per-call transaction; timestamps come from the
// database, not the collector.
type Store struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewStore(pool PgxPool, tracer trace.Tracer) *Store {
	return &Store{pool: pool, tracer: tracer}
}

// RunMigrations creates the four tables and seeds the chat_source
// lookup. Safe to run on every startup.
func (s *Store) RunMigrations(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "store.run-migrations")
	defer span.End()

	if _, err := s.pool.Exec(ctx, createTables); err != nil {
		return err
	}
	for _, name := range domain.ChatSourceNames() {
		_, err := s.pool.Exec(ctx, `
INSERT INTO chat_source (source_name)
VALUES ($1)
ON CONFLICT (source_name) DO NOTHING`, name)
		if err != nil {
			return err
		}
	}
	return nil
}

// LoadCoins reads every known coin, for the registry's startup cache.
func (s *Store) LoadCoins(ctx context.Context) ([]domain.Coin, error) {
	_, span := s.tracer.Start(ctx, "store.load-coins")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
SELECT coin_id, symbol, full_name
FROM coins
ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var coins []domain.Coin
	for rows.Next() {
		var c domain.Coin
		if err := rows.Scan(&c.ID, &c.Symbol, &c.FullName); err != nil {
			return nil, err
		}
		coins = append(coins, c)
	}
	return coins, rows.Err()
}

// LoadSources returns the chat_source lookup keyed by source name.
func (s *Store) LoadSources(ctx context.Context) (map[string]int64, error) {
	_, span := s.tracer.Start(ctx, "store.load-sources")
	defer span.End()

	rows, err := s.pool.Query(ctx, `
SELECT source_id, source_name
FROM chat_source
ORDER BY source_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[name] = id
	}
	return out, rows.Err()
}

// InsertCoin registers a symbol and returns its stored identity. A
// repeat insert of the same symbol returns the existing row unchanged
// apart from a refreshed full name.
func (s *Store) InsertCoin(ctx context.Context, symbol, fullName string) (domain.Coin, error) {
	_, span := s.tracer.Start(ctx, "store.insert-coin")
	defer span.End()

	var c domain.Coin
	err := s.pool.QueryRow(ctx, `
INSERT INTO coins (symbol, full_name)
VALUES ($1, $2)
ON CONFLICT (symbol) DO UPDATE SET full_name = EXCLUDED.full_name
RETURNING coin_id, symbol, full_name`,
		strings.ToUpper(strings.TrimSpace(symbol)), strings.TrimSpace(fullName),
	).Scan(&c.ID, &c.Symbol, &c.FullName)
	if err != nil {
		return domain.Coin{}, err
	}
	return c, nil
}

// WriteMentions persists one coin's batch inside a single transaction.
// All rows commit together or none do.
func (s *Store) WriteMentions(ctx context.Context, coinID int64, batch []domain.Mention) error {
	if len(batch) == 0 {
		return nil
	}
	_, span := s.tracer.Start(ctx, "store.write-mentions")
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &domain.PersistenceError{CoinID: coinID, Op: "write mentions", Err: err}
	}
	defer tx.Rollback(ctx)

	for _, m := range batch {
		_, err := tx.Exec(ctx, `
INSERT INTO chat_data (coin_id, source_id, content, sentiment_score, sentiment_label, url, timestamp)
VALUES ($1, $2, $3, $4, $5, $6, NOW())`,
			coinID, m.SourceID, m.Content, m.SentimentScore, m.SentimentLabel, urlOrNull(m.URL))
		if err != nil {
			return &domain.PersistenceError{CoinID: coinID, Op: "write mentions", Err: err}
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return &domain.PersistenceError{CoinID: coinID, Op: "write mentions", Err: err}
	}
	return nil
}

// WritePrice persists one price sample in its own transaction.
func (s *Store) WritePrice(ctx context.Context, sample domain.PriceSample) error {
	_, span := s.tracer.Start(ctx, "store.write-price")
	defer span.End()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return &domain.PersistenceError{CoinID: sample.CoinID, Op: "write price", Err: err}
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO price_data (timestamp, coin_id, price_usd, volume_24h, price_change_24h, data_source)
VALUES (NOW(), $1, $2, $3, $4, $5)`,
		sample.CoinID, sample.PriceUSD, sample.Volume24h, sample.PriceChange24h, sample.DataSource)
	if err != nil {
		return &domain.PersistenceError{CoinID: sample.CoinID, Op: "write price", Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return &domain.PersistenceError{CoinID: sample.CoinID, Op: "write price", Err: err}
	}
	return nil
}

func urlOrNull(url string) any {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil
	}
	return url
}
