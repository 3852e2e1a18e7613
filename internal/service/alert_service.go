package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"taa-signals/internal/domain"
	"taa-signals/internal/preferences"
	"taa-signals/internal/series"
	"taa-signals/internal/ta"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// DailyStore reads stored daily prices.
type DailyStore interface {
	GetDaily(ctx context.Context, symbol string, from time.Time) ([]domain.PricePoint, error)
}

// ConfigLister lists every stored preference blob.
type ConfigLister interface {
	ListAll(ctx context.Context) ([]domain.UserConfig, error)
}

// Notifier delivers a user's alerts.
type Notifier interface {
	Notify(ctx context.Context, userID string, alerts []domain.Alert) error
}

// AlertReport summarises one alert sweep.
type AlertReport struct {
	Users    int `json:"users"`
	Checked  int `json:"checked"`
	Alerts   int `json:"alerts"`
	Failures int `json:"failures"`
}

type AlertService struct {
	tracer   trace.Tracer
	logger   *zap.Logger
	prices   DailyStore
	configs  ConfigLister
	notifier Notifier
	now      func() time.Time
}

func NewAlertService(tracer trace.Tracer, logger *zap.Logger, prices DailyStore, configs ConfigLister, notifier Notifier) *AlertService {
	return &AlertService{
		tracer:   tracer,
		logger:   logger.With(zap.String("component", "alert-service")),
		prices:   prices,
		configs:  configs,
		notifier: notifier,
		now:      time.Now,
	}
}

// Evaluate checks one symbol against the user's threshold. The trend is the
// moving average of the period month-ends before the current month, and the
// price is the latest daily close.
func Evaluate(prefs preferences.Preferences, symbol string, daily []domain.PricePoint) (domain.Alert, bool, error) {
	monthly := series.MonthEnds(daily)
	if err := series.RequireMonths(symbol, monthly, prefs.Period+1); err != nil {
		return domain.Alert{}, false, err
	}
	prices := monthly.Prices()
	trend := ta.MovingAverage(prices[len(prices)-prefs.Period-1:len(prices)-1], prefs.TrendType, prefs.Period)
	price := prices[len(prices)-1]
	if price <= 0 || trend <= 0 {
		return domain.Alert{}, false, nil
	}
	buffer := ta.SafetyBuffer(price, trend)

	alert := domain.Alert{Symbol: symbol, Price: price, Trend: trend, Buffer: buffer}
	switch prefs.Notifications.ThresholdType {
	case preferences.ThresholdHardCross:
		if price > trend {
			return domain.Alert{}, false, nil
		}
		alert.Kind = domain.AlertHardCross
		alert.Message = fmt.Sprintf("%s CROSSOVER ALERT: Price ($%.2f) has dropped below the %d-Month %s ($%.2f).",
			symbol, price, prefs.Period, prefs.TrendType, trend)
	case preferences.ThresholdBuffer:
		threshold := prefs.Notifications.BufferPercent
		if threshold == 0 {
			threshold = preferences.Default().Notifications.BufferPercent
		}
		if math.Abs(buffer) >= threshold {
			return domain.Alert{}, false, nil
		}
		direction := "below"
		if buffer > 0 {
			direction = "above"
		}
		alert.Kind = domain.AlertBuffer
		alert.Message = fmt.Sprintf("%s BUFFER ALERT: Price ($%.2f) is %.2f%% %s the trend line (Threshold: %g%%).",
			symbol, price, math.Abs(buffer), direction, threshold)
	default:
		return domain.Alert{}, false, nil
	}
	return alert, true, nil
}

// Check evaluates the basket and benchmark of one user. Symbols without
// enough stored history are skipped and reported in the joined error.
func (s *AlertService) Check(ctx context.Context, userID string, prefs preferences.Preferences) ([]domain.Alert, error) {
	ctx, span := s.tracer.Start(ctx, "alert-service.check")
	defer span.End()

	from := s.now().UTC().AddDate(0, -(prefs.Period + 3), 0)
	symbols := append(prefs.Symbols(), prefs.Tickers.Benchmark)

	var (
		alerts []domain.Alert
		errs   []error
	)
	for _, sym := range symbols {
		daily, err := s.prices.GetDaily(ctx, sym, from)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sym, err))
			continue
		}
		alert, fired, err := Evaluate(prefs, sym, daily)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if fired {
			alert.UserID = userID
			alerts = append(alerts, alert)
		}
	}
	span.SetAttributes(attribute.Int("alerts", len(alerts)))
	return alerts, errors.Join(errs...)
}

// Run sweeps every stored user with notifications enabled.
func (s *AlertService) Run(ctx context.Context) (AlertReport, error) {
	ctx, span := s.tracer.Start(ctx, "alert-service.run")
	defer span.End()

	rows, err := s.configs.ListAll(ctx)
	if err != nil {
		return AlertReport{}, fmt.Errorf("list preferences: %w", err)
	}

	report := AlertReport{Users: len(rows)}
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		prefs, err := preferences.Decode(row.Config)
		if err != nil {
			s.logger.Warn("skipping unreadable preferences", zap.String("user_id", row.UserID), zap.Error(err))
			report.Failures++
			continue
		}
		if !prefs.Notifications.Enabled {
			continue
		}

		report.Checked++
		alerts, err := s.Check(ctx, row.UserID, prefs)
		if err != nil {
			s.logger.Warn("alert check incomplete", zap.String("user_id", row.UserID), zap.Error(err))
		}
		if len(alerts) == 0 {
			continue
		}
		report.Alerts += len(alerts)
		if s.notifier == nil {
			continue
		}
		if err := s.notifier.Notify(ctx, row.UserID, alerts); err != nil {
			s.logger.Error("alert delivery failed", zap.String("user_id", row.UserID), zap.Error(err))
			report.Failures++
		}
	}

	s.logger.Info("alert sweep finished",
		zap.Int("users", report.Users),
		zap.Int("checked", report.Checked),
		zap.Int("alerts", report.Alerts),
		zap.Int("failures", report.Failures),
	)
	return report, nil
}
