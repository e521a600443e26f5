package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rosssaab/CryptoDataLoader/internal/cache"
	"github.com/Rosssaab/CryptoDataLoader/internal/collector"
	"github.com/Rosssaab/CryptoDataLoader/internal/config"
	"github.com/Rosssaab/CryptoDataLoader/internal/db"
	"github.com/Rosssaab/CryptoDataLoader/internal/handler"
	"github.com/Rosssaab/CryptoDataLoader/internal/progress"
	"github.com/Rosssaab/CryptoDataLoader/internal/provider"
	"github.com/Rosssaab/CryptoDataLoader/internal/registry"
	"github.com/Rosssaab/CryptoDataLoader/internal/repository"
	"github.com/Rosssaab/CryptoDataLoader/internal/scheduler"
	"github.com/Rosssaab/CryptoDataLoader/internal/sentiment"
	"github.com/Rosssaab/CryptoDataLoader/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	loadEnvFunc        = godotenv.Load
	loadConfigFunc     = config.Load
	initPostgresFunc   = db.InitPostgres
	initRedisFunc      = cache.InitRedis
	initTracerFunc     = tracing.InitTracer
	newStoreFunc       = repository.NewStore
	runMigrationsFunc  = func(ctx context.Context, s *repository.Store) error { return s.RunMigrations(ctx) }
	loadSourcesFunc    = func(ctx context.Context, s *repository.Store) (map[string]int64, error) { return s.LoadSources(ctx) }
	loadRegistryFunc   = func(ctx context.Context, r *registry.CoinRegistry) error { return r.Load(ctx) }
	startSchedulerFunc = func(ctx context.Context, s *scheduler.Scheduler) {
		go func() {
			s.RunOnce(ctx)
			s.RunForever(ctx)
		}()
	}
	newRouterFunc          = gin.Default
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

func main() {
	loadEnvFunc()

	cfg := loadConfigFunc()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis. An unreachable store is fatal; Redis is
	// only the price cache and degrades to a no-op.
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	if err := initPostgresFunc(ctx); err != nil {
		log.Fatalf("startup: %v", err)
	}
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatalf("failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("error shutting down tracer provider: %v", err)
		}
	}()

	// Store, migrations, source lookup
	store := newStoreFunc(db.Pool, tracer)
	if err := runMigrationsFunc(ctx, store); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	sourceIDs, err := loadSourcesFunc(ctx, store)
	if err != nil {
		log.Fatalf("failed to load chat sources: %v", err)
	}

	// Registry: load the coin cache before any scheduling starts
	coingecko := provider.NewCoinGeckoClient(tracer)
	reg := registry.New(store, coingecko, cfg.StablecoinDenylist, tracer)
	if err := loadRegistryFunc(ctx, reg); err != nil {
		log.Fatalf("startup: %v", err)
	}

	// Progress sink: always the log, plus Telegram when configured
	var sink progress.Sink = progress.LogSink{}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != 0 {
		telegram, err := progress.NewTelegramSink(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("Warning: Telegram sink disabled: %v", err)
		} else {
			sink = progress.Multi(progress.LogSink{}, telegram)
		}
	}

	// Source adapters, in collection order
	sources := []collector.Source{
		collector.NewRedditSource(provider.NewRedditClient(cfg.RedditUserAgent, tracer), cfg.RedditSubreddits),
		collector.NewTwitterSource(provider.NewTwitterClient(cfg.TwitterBearer, tracer)),
		collector.NewNewsSource(provider.NewNewsClient(cfg.NewsAPIURL, cfg.NewsAPIKey, tracer)),
		collector.NewCryptoCompareSource(provider.NewCryptoCompareClient(cfg.CryptoCompareKey, tracer)),
		collector.NewCoinGeckoSource(coingecko),
		collector.NewCryptoPanicSource(provider.NewCryptoPanicClient(cfg.CryptoPanicURL, cfg.CryptoPanicKey, tracer)),
	}

	priceCache := cache.NewPriceCache(cache.Client)
	col := collector.New(
		tracer,
		reg,
		store,
		sentiment.NewScorer(),
		sources,
		sourceIDs,
		provider.NewBinanceClient(tracer),
		priceCache,
		sink,
		cfg.UniverseLimit,
	)

	// Scheduled jobs, in registration order. The prediction slot stays
	// a placeholder until a model service is attached.
	sched := scheduler.New(tracer)
	sched.Register("prices", time.Duration(cfg.PriceIntervalSecs)*time.Second, func(ctx context.Context) error {
		col.RunPriceCycle(ctx)
		return nil
	})
	sched.Register("chat", time.Duration(cfg.ChatIntervalSecs)*time.Second, func(ctx context.Context) error {
		col.RunChatCycle(ctx)
		return nil
	})
	sched.Register("predictions", time.Duration(cfg.PredictionIntervalSecs)*time.Second, func(ctx context.Context) error {
		sink.Progress("prediction run: no model attached")
		return nil
	})

	// Warm run, then the tick loop
	startSchedulerFunc(ctx, sched)

	h := handler.New(tracer, col, sched, priceCache)

	r := newRouterFunc()
	r.Use(otelgin.Middleware("crypto-data-loader"))
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Println("Shutting down server...")

	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
