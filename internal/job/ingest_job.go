package job

import (
	"context"

	"taa-signals/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type IngestRunner interface {
	Run(ctx context.Context, universe []string) service.IngestReport
}

// IngestJob refreshes the price warehouse for the whole universe.
type IngestJob struct {
	tracer   trace.Tracer
	logger   *zap.Logger
	runner   IngestRunner
	universe func() []string
}

func NewIngestJob(tracer trace.Tracer, logger *zap.Logger, runner IngestRunner, universe func() []string) *IngestJob {
	return &IngestJob{
		tracer:   tracer,
		logger:   logger.With(zap.String("job", "ingest")),
		runner:   runner,
		universe: universe,
	}
}

func (j *IngestJob) RunOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "ingest-job.run-once")
	defer span.End()

	symbols := j.universe()
	if len(symbols) == 0 {
		j.logger.Warn("ingest skipped: empty universe")
		return
	}

	report := j.runner.Run(ctx, symbols)
	span.SetAttributes(
		attribute.Int("rows", report.Rows),
		attribute.Int("failed", len(report.Failed)),
	)
	if len(report.Failed) > 0 {
		j.logger.Warn("ingest cycle had failures",
			zap.Int("rows", report.Rows),
			zap.Int("failed", len(report.Failed)),
			zap.Any("errors", report.Failed),
		)
		return
	}
	j.logger.Info("ingest cycle complete", zap.Int("symbols", report.Symbols), zap.Int("rows", report.Rows))
}
