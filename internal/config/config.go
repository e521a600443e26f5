package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL string
	RedisURL    string

	NewsAPIKey        string
	NewsAPIURL        string
	TwitterBearer     string
	CryptoCompareKey  string
	CryptoPanicKey    string
	CryptoPanicURL    string
	TelegramBotToken  string
	TelegramChatID    int64
	RedditUserAgent   string
	RedditSubreddits  []string

	UniverseLimit      int
	StablecoinDenylist []string

	PriceIntervalSecs      int
	ChatIntervalSecs       int
	PredictionIntervalSecs int

	HTTPAddr string
}

var defaultDenylist = []string{
	"USDT", "USDC", "BUSD", "DAI", "TUSD", "USDP", "USDD",
	"GUSD", "USDN", "USDS", "WBTC", "WETH", "FRAX",
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		NewsAPIKey:       os.Getenv("NEWS_API_KEY"),
		TwitterBearer:    os.Getenv("TWITTER_BEARER_TOKEN"),
		CryptoCompareKey: os.Getenv("CRYPTOCOMPARE_API_KEY"),
		CryptoPanicKey:   os.Getenv("CRYPTOPANIC_API_KEY"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}

	cfg.NewsAPIURL = strings.TrimSpace(os.Getenv("NEWS_API_URL"))
	if cfg.NewsAPIURL == "" {
		cfg.NewsAPIURL = "https://newsapi.org/v2/everything"
	}

	cfg.CryptoPanicURL = strings.TrimSpace(os.Getenv("CRYPTOPANIC_BASE_URL"))
	if cfg.CryptoPanicURL == "" {
		cfg.CryptoPanicURL = "https://cryptopanic.com/api/v1/"
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		}
	}

	cfg.RedditUserAgent = strings.TrimSpace(os.Getenv("REDDIT_USER_AGENT"))
	if cfg.RedditUserAgent == "" {
		cfg.RedditUserAgent = "CryptoSentimentBot/1.0"
	}

	cfg.RedditSubreddits = splitList(os.Getenv("REDDIT_SUBREDDITS"))
	if len(cfg.RedditSubreddits) == 0 {
		cfg.RedditSubreddits = []string{"cryptocurrency", "CryptoMarkets"}
	}

	cfg.UniverseLimit = 50
	if v := os.Getenv("UNIVERSE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.UniverseLimit = n
		}
	}

	cfg.StablecoinDenylist = splitList(os.Getenv("STABLECOIN_DENYLIST"))
	if len(cfg.StablecoinDenylist) == 0 {
		cfg.StablecoinDenylist = append([]string(nil), defaultDenylist...)
	}

	cfg.PriceIntervalSecs = 300
	if v := os.Getenv("PRICE_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PriceIntervalSecs = n
		}
	}

	cfg.ChatIntervalSecs = 900
	if v := os.Getenv("CHAT_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChatIntervalSecs = n
		}
	}

	cfg.PredictionIntervalSecs = 3600
	if v := os.Getenv("PREDICTION_INTERVAL_SECS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PredictionIntervalSecs = n
		}
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	return cfg
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
