package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taa-signals/internal/config"
	"taa-signals/internal/db"
	"taa-signals/internal/domain"
	"taa-signals/internal/logging"
	"taa-signals/internal/preferences"
	"taa-signals/internal/repository"
	"taa-signals/internal/service"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

var (
	loadEnvFunc    = godotenv.Load
	loadConfigFunc = config.Load
	openSourceFunc = func(ctx context.Context, dsn string, tracer trace.Tracer) (service.MonthlySource, func(), error) {
		if err := db.InitPostgres(ctx, dsn); err != nil {
			return nil, nil, err
		}
		return repository.NewPriceRepository(db.Pool, tracer), db.Close, nil
	}
)

func main() {
	_ = loadEnvFunc()
	logger := logging.Init(os.Getenv("LOG_LEVEL"))
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		logger.Fatal("backtest failed", zap.Error(err))
	}
}

// parseRequest turns command-line flags into a simulation request on top of
// the default preferences.
func parseRequest(args []string) (service.BacktestRequest, error) {
	prefs := preferences.Default()

	fs := flag.NewFlagSet("backtest", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	years := fs.Int("years", 0, "report window in years (0 for full history)")
	rebalance := fs.String("rebalance", string(prefs.Rebalance), "Monthly or Yearly")
	trendType := fs.String("type", string(prefs.TrendType), "SMA or EMA")
	period := fs.Int("period", prefs.Period, "moving average length in months")
	top := fs.Int("k", prefs.Concentration, "number of assets held")
	benchmark := fs.String("benchmark", prefs.Tickers.Benchmark, "benchmark symbol")
	tickers := fs.String("tickers", strings.Join(prefs.Symbols(), ","), "five basket symbols in slot order")
	if err := fs.Parse(args); err != nil {
		return service.BacktestRequest{}, err
	}

	symbols := strings.Split(strings.ToUpper(*tickers), ",")
	if len(symbols) != len(domain.BasketSlots) {
		return service.BacktestRequest{}, fmt.Errorf("tickers: want %d symbols, got %d", len(domain.BasketSlots), len(symbols))
	}
	for i, s := range symbols {
		symbols[i] = strings.TrimSpace(s)
	}
	prefs.Tickers = preferences.Tickers{
		USStocks:    symbols[0],
		IntlStocks:  symbols[1],
		Bonds:       symbols[2],
		RealEstate:  symbols[3],
		Commodities: symbols[4],
		Benchmark:   strings.ToUpper(strings.TrimSpace(*benchmark)),
	}
	prefs.TrendType = domain.TrendType(strings.ToUpper(*trendType))
	prefs.Period = *period
	prefs.Concentration = *top
	prefs.Rebalance = domain.RebalanceFrequency(*rebalance)

	if err := prefs.Validate(); err != nil {
		return service.BacktestRequest{}, err
	}
	if *years < 0 {
		return service.BacktestRequest{}, fmt.Errorf("years must not be negative, got %d", *years)
	}
	return service.BacktestRequest{Prefs: prefs, Years: *years}, nil
}

func run(ctx context.Context, args []string, out io.Writer, logger *zap.Logger) error {
	req, err := parseRequest(args)
	if err != nil {
		return err
	}

	cfg := loadConfigFunc()
	tracer := noop.NewTracerProvider().Tracer("backtest-cli")

	source, closeSource, err := openSourceFunc(ctx, cfg.DatabaseURL, tracer)
	if err != nil {
		return fmt.Errorf("open price warehouse: %w", err)
	}
	defer closeSource()

	svc := service.NewBacktestService(tracer, logger, source, nil, 0, cfg.RiskFreeRate, cfg.SignalWorkers)
	result := svc.Run(ctx, req)

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return err
	}
	if result.Error != "" {
		return errors.New(result.Error)
	}
	return nil
}
