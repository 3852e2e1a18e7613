package job

import (
	"context"

	"taa-signals/internal/service"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type AlertRunner interface {
	Run(ctx context.Context) (service.AlertReport, error)
}

// AlertJob sweeps stored users for trend-break alerts.
type AlertJob struct {
	tracer trace.Tracer
	logger *zap.Logger
	runner AlertRunner
}

func NewAlertJob(tracer trace.Tracer, logger *zap.Logger, runner AlertRunner) *AlertJob {
	return &AlertJob{tracer: tracer, logger: logger.With(zap.String("job", "alerts")), runner: runner}
}

func (j *AlertJob) RunOnce(ctx context.Context) {
	if j.runner == nil {
		j.logger.Debug("alert job disabled: no runner")
		return
	}

	ctx, span := j.tracer.Start(ctx, "alert-job.run-once")
	defer span.End()

	report, err := j.runner.Run(ctx)
	if err != nil {
		span.RecordError(err)
		j.logger.Error("alert sweep failed", zap.Error(err))
		return
	}
	if report.Alerts > 0 {
		j.logger.Info("alerts delivered", zap.Int("alerts", report.Alerts), zap.Int("failures", report.Failures))
	}
}
