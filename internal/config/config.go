package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	HTTPAddr    string
	APIKey      string
	LogLevel    string

	TelegramBotToken string
	TelegramChatID   int64

	TiingoAPIKeys    []string
	TiingoRatePerMin int
	SignalCacheTTL   time.Duration
	SignalWorkers    int
	IngestCron       string
	AlertCron        string
	IngestStartDate  time.Time
	RiskFreeRate     float64
	TracingEnabled   bool
	OTLPEndpoint     string
}

const dateLayout = "2006-01-02"

func Load() *Config {
	logger := zap.L()

	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		HTTPAddr:         strings.TrimSpace(os.Getenv("HTTP_ADDR")),
		APIKey:           os.Getenv("API_KEY"),
		LogLevel:         strings.TrimSpace(os.Getenv("LOG_LEVEL")),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OTLPEndpoint:     strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")),
	}

	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		logger.Warn("REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.APIKey == "" {
		logger.Warn("API_KEY not set, write endpoints are open")
	}
	if cfg.TelegramBotToken == "" {
		logger.Warn("TELEGRAM_BOT_TOKEN not set, bot and alerts disabled")
	}

	if v := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = n
		}
	}

	for _, key := range []string{"TIINGO_API_KEY", "TIINGO_API_KEY2"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			cfg.TiingoAPIKeys = append(cfg.TiingoAPIKeys, v)
		}
	}
	if len(cfg.TiingoAPIKeys) == 0 {
		logger.Warn("TIINGO_API_KEY not set, live signals will fall back to demo data")
	}

	cfg.TiingoRatePerMin = 40
	if v := strings.TrimSpace(os.Getenv("TIINGO_RATE_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TiingoRatePerMin = n
		}
	}

	cfg.SignalCacheTTL = time.Hour
	if v := strings.TrimSpace(os.Getenv("SIGNAL_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SignalCacheTTL = time.Duration(n) * time.Second
		}
	}

	cfg.SignalWorkers = 4
	if v := strings.TrimSpace(os.Getenv("SIGNAL_WORKERS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SignalWorkers = n
		}
	}

	cfg.IngestCron = strings.TrimSpace(os.Getenv("INGEST_CRON"))
	if cfg.IngestCron == "" {
		cfg.IngestCron = "0 30 22 * * 1-5"
	}
	cfg.AlertCron = strings.TrimSpace(os.Getenv("ALERT_CRON"))
	if cfg.AlertCron == "" {
		cfg.AlertCron = "0 0 23 * * 1-5"
	}

	cfg.IngestStartDate = time.Date(1995, time.January, 1, 0, 0, 0, 0, time.UTC)
	if v := strings.TrimSpace(os.Getenv("INGEST_START_DATE")); v != "" {
		if d, err := time.Parse(dateLayout, v); err == nil {
			cfg.IngestStartDate = d
		} else {
			logger.Warn("invalid INGEST_START_DATE, using default", zap.String("value", v))
		}
	}

	cfg.RiskFreeRate = 0.04
	if v := strings.TrimSpace(os.Getenv("RISK_FREE_RATE")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 && n < 1 {
			cfg.RiskFreeRate = n
		}
	}

	cfg.TracingEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("TRACING_ENABLED")), "true")

	return cfg
}
