package job

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Scheduler runs named jobs on six-field cron specs (seconds first).
type Scheduler struct {
	cron   *cron.Cron
	tracer trace.Tracer
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(tracer trace.Tracer, logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		tracer: tracer,
		logger: logger.With(zap.String("component", "scheduler")),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register adds fn under spec. Runs of the same job never overlap.
func (s *Scheduler) Register(name, spec string, fn func(ctx context.Context)) error {
	skip := cron.SkipIfStillRunning(cron.DiscardLogger)
	_, err := s.cron.AddJob(spec, skip(cron.FuncJob(func() {
		ctx, span := s.tracer.Start(s.ctx, "scheduler."+name)
		defer span.End()
		s.logger.Info("job started", zap.String("job", name))
		fn(ctx)
	})))
	if err != nil {
		return fmt.Errorf("register %s job: %w", name, err)
	}
	s.logger.Info("job registered", zap.String("job", name), zap.String("spec", spec))
	return nil
}

// Start runs the registered jobs until ctx is cancelled, then waits for
// running jobs to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))

	<-ctx.Done()
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
