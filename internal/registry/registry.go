package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/Rosssaab/CryptoDataLoader/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type store interface {
	LoadCoins(ctx context.Context) ([]domain.Coin, error)
	InsertCoin(ctx context.Context, symbol, fullName string) (domain.Coin, error)
}

type marketsFeed interface {
	FetchMarkets(ctx context.Context, limit int) ([]domain.RankedCoin, error)
}

// CoinRegistry owns the symbol-keyed coin cache and decides which
// assets are tracked. Stablecoins and wrapped assets never enter the
// universe.
type CoinRegistry struct {
	store    store
	markets  marketsFeed
	tracer   trace.Tracer
	denylist map[string]struct{}

	mu    sync.RWMutex
	coins map[string]domain.Coin
}

func New(store store, markets marketsFeed, denylist []string, tracer trace.Tracer) *CoinRegistry {
	deny := make(map[string]struct{}, len(denylist))
	for _, symbol := range denylist {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if symbol != "" {
			deny[symbol] = struct{}{}
		}
	}
	return &CoinRegistry{
		store:    store,
		markets:  markets,
		tracer:   tracer,
		denylist: deny,
		coins:    make(map[string]domain.Coin),
	}
}

// Load reads every known coin into the cache. A store failure here is
// fatal to startup: scheduling must not begin without the registry.
func (r *CoinRegistry) Load(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "registry.load")
	defer span.End()

	coins, err := r.store.LoadCoins(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRegistryUnavailable, err)
	}

	cache := make(map[string]domain.Coin, len(coins))
	for _, c := range coins {
		cache[strings.ToUpper(c.Symbol)] = c
	}

	r.mu.Lock()
	r.coins = cache
	r.mu.Unlock()
	return nil
}

// TrackedUniverse returns the ranked-asset feed with the stablecoin
// denylist and stable-name markers filtered out, preserving feed order.
func (r *CoinRegistry) TrackedUniverse(ctx context.Context, limit int) ([]domain.RankedCoin, error) {
	_, span := r.tracer.Start(ctx, "registry.tracked-universe")
	defer span.End()

	ranked, err := r.markets.FetchMarkets(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch ranked universe: %w", err)
	}

	out := make([]domain.RankedCoin, 0, len(ranked))
	for _, coin := range ranked {
		if r.excluded(coin) {
			continue
		}
		out = append(out, coin)
	}
	return out, nil
}

func (r *CoinRegistry) excluded(coin domain.RankedCoin) bool {
	if _, ok := r.denylist[strings.ToUpper(coin.Symbol)]; ok {
		return true
	}
	name := strings.ToUpper(coin.FullName)
	return strings.Contains(name, "USD") || strings.Contains(name, "STABLE")
}

// ResolveOrRegister returns the coin's stored identity, inserting a new
// row on first sighting. Idempotent: repeat calls with the same symbol
// return the cached identity without touching the store.
func (r *CoinRegistry) ResolveOrRegister(ctx context.Context, symbol, fullName string) (domain.Coin, error) {
	_, span := r.tracer.Start(ctx, "registry.resolve-or-register")
	defer span.End()

	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	r.mu.RLock()
	cached, ok := r.coins[symbol]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	coin, err := r.store.InsertCoin(ctx, symbol, fullName)
	if err != nil {
		return domain.Coin{}, &domain.RegistrationError{Symbol: symbol, Err: err}
	}

	r.mu.Lock()
	r.coins[symbol] = coin
	r.mu.Unlock()
	return coin, nil
}
