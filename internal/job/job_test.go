package job

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"taa-signals/internal/service"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

type ingestRunnerStub struct {
	calls    int32
	universe []string
	report   service.IngestReport
}

func (s *ingestRunnerStub) Run(ctx context.Context, universe []string) service.IngestReport {
	atomic.AddInt32(&s.calls, 1)
	s.universe = universe
	return s.report
}

type alertRunnerStub struct {
	calls int32
	err   error
}

func (s *alertRunnerStub) Run(ctx context.Context) (service.AlertReport, error) {
	atomic.AddInt32(&s.calls, 1)
	return service.AlertReport{Alerts: 2}, s.err
}

func TestIngestJobRunOnce(t *testing.T) {
	runner := &ingestRunnerStub{report: service.IngestReport{Symbols: 2, Failed: map[string]string{"DBC": "boom"}}}
	job := NewIngestJob(testTracer, zap.NewNop(), runner, func() []string { return []string{"VTI", "DBC"} })

	job.RunOnce(context.Background())
	if runner.calls != 1 || len(runner.universe) != 2 {
		t.Fatalf("unexpected run: calls=%d universe=%v", runner.calls, runner.universe)
	}
}

func TestIngestJobSkipsEmptyUniverse(t *testing.T) {
	runner := &ingestRunnerStub{}
	job := NewIngestJob(testTracer, zap.NewNop(), runner, func() []string { return nil })

	job.RunOnce(context.Background())
	if runner.calls != 0 {
		t.Fatal("empty universe must not run ingestion")
	}
}

func TestAlertJobRunOnce(t *testing.T) {
	runner := &alertRunnerStub{err: errors.New("db down")}
	NewAlertJob(testTracer, zap.NewNop(), runner).RunOnce(context.Background())
	if runner.calls != 1 {
		t.Fatalf("expected one run, got %d", runner.calls)
	}

	// A nil runner is a disabled job.
	NewAlertJob(testTracer, zap.NewNop(), nil).RunOnce(context.Background())
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(testTracer, zap.NewNop())
	if err := s.Register("bad", "0 0 * *", func(context.Context) {}); err == nil {
		t.Fatal("expected error for five-field spec")
	}
	if err := s.Register("ok", "0 30 22 * * 1-5", func(context.Context) {}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSchedulerRunsUntilCancelled(t *testing.T) {
	t.Parallel()

	var calls int32
	s := NewScheduler(testTracer, zap.NewNop())
	if err := s.Register("tick", "* * * * * *", func(ctx context.Context) {
		atomic.AddInt32(&calls, 1)
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	eventually(t, func() bool { return atomic.LoadInt32(&calls) > 0 })
	cancel()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
