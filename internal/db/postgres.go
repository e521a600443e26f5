package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var (
	newPool = func(ctx context.Context, url string) (*pgxpool.Pool, error) {
		return pgxpool.New(ctx, url)
	}
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres connects the shared pool. An unreachable store at
// startup is fatal: the registry cannot load without it.
func InitPostgres(ctx context.Context) error {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		return fmt.Errorf("%w: DATABASE_URL not set", domain.ErrRegistryUnavailable)
	}

	pool, err := newPool(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
	}
	if err := pingPool(ctx, pool); err != nil {
		pool.Close()
		return fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
	}

	Pool = pool
	log.Println("Connected to Postgres")
	return nil
}
