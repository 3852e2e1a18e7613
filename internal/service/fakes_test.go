package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"taa-signals/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	testTracer = trace.NewNoopTracerProvider().Tracer("test")
	testLogger = zap.NewNop()
	errBoom    = errors.New("boom")
	fixedNow   = time.Date(2024, time.June, 14, 12, 0, 0, 0, time.UTC)
)

func fixedClock() time.Time { return fixedNow }

// monthEnds returns n month-end points ending in May 2024 with prices
// p(i).
func monthEnds(n int, p func(i int) float64) []domain.PricePoint {
	start := time.Date(2024, time.May, 28, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1), 0)
	out := make([]domain.PricePoint, n)
	for i := range out {
		v := p(i)
		out[i] = domain.PricePoint{Date: start.AddDate(0, i, 0), AdjClose: v, Close: v}
	}
	return out
}

func linear(base, step float64) func(int) float64 {
	return func(i int) float64 { return base + step*float64(i) }
}

type fakeSource struct {
	mu     sync.Mutex
	daily  map[string][]domain.PricePoint
	errs   map[string]error
	calls  map[string]int
	lastTo time.Time
	from   map[string]time.Time
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		daily: make(map[string][]domain.PricePoint),
		errs:  make(map[string]error),
		calls: make(map[string]int),
		from:  make(map[string]time.Time),
	}
}

func (f *fakeSource) FetchDaily(ctx context.Context, symbol string, from, to time.Time) ([]domain.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[symbol]++
	f.from[symbol] = from
	f.lastTo = to
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	if pts, ok := f.daily[symbol]; ok {
		return pts, nil
	}
	return nil, fmt.Errorf("%w: unknown symbol %s", domain.ErrProviderFailure, symbol)
}

func (f *fakeSource) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeWarehouse struct {
	mu       sync.Mutex
	daily    map[string][]domain.PricePoint
	latest   map[string]time.Time
	counts   map[string]int64
	upserted map[string]int
	getErr   error
	upErr    map[string]error
}

func newFakeWarehouse() *fakeWarehouse {
	return &fakeWarehouse{
		daily:    make(map[string][]domain.PricePoint),
		latest:   make(map[string]time.Time),
		counts:   make(map[string]int64),
		upserted: make(map[string]int),
		upErr:    make(map[string]error),
	}
}

func (f *fakeWarehouse) GetDaily(ctx context.Context, symbol string, from time.Time) ([]domain.PricePoint, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.daily[symbol], nil
}

func (f *fakeWarehouse) GetMonthEnds(ctx context.Context, symbol string) (domain.MonthlySeries, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return domain.MonthlySeries(f.daily[symbol]), nil
}

func (f *fakeWarehouse) UpsertPrices(ctx context.Context, symbol string, points []domain.PricePoint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.upErr[symbol]; err != nil {
		return err
	}
	f.upserted[symbol] += len(points)
	return nil
}

func (f *fakeWarehouse) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.latest[symbol]
	return d, ok, nil
}

func (f *fakeWarehouse) CountBySymbol(ctx context.Context) (map[string]int64, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.counts, nil
}

type fakePrefStore struct {
	rows    map[string][]byte
	getErr  error
	saveErr error
	listErr error
}

func newFakePrefStore() *fakePrefStore {
	return &fakePrefStore{rows: make(map[string][]byte)}
}

func (f *fakePrefStore) Get(ctx context.Context, userID string) (domain.UserConfig, bool, error) {
	if f.getErr != nil {
		return domain.UserConfig{}, false, f.getErr
	}
	blob, ok := f.rows[userID]
	if !ok {
		return domain.UserConfig{}, false, nil
	}
	return domain.UserConfig{UserID: userID, Config: blob}, true, nil
}

func (f *fakePrefStore) Save(ctx context.Context, userID string, config []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.rows[userID] = append([]byte(nil), config...)
	return nil
}

func (f *fakePrefStore) ListAll(ctx context.Context) ([]domain.UserConfig, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []domain.UserConfig
	for id, blob := range f.rows {
		out = append(out, domain.UserConfig{UserID: id, Config: blob})
	}
	return out, nil
}

type fakeNotifier struct {
	err  error
	sent map[string][]domain.Alert
}

func (f *fakeNotifier) Notify(ctx context.Context, userID string, alerts []domain.Alert) error {
	if f.err != nil {
		return f.err
	}
	if f.sent == nil {
		f.sent = make(map[string][]domain.Alert)
	}
	f.sent[userID] = append(f.sent[userID], alerts...)
	return nil
}

type fakeQuoter struct {
	quotes map[string]float64
	asked  []string
}

func (f *fakeQuoter) SpotPrices(ctx context.Context, symbols []string) map[string]float64 {
	f.asked = append(f.asked, symbols...)
	out := make(map[string]float64)
	for _, s := range symbols {
		if q, ok := f.quotes[s]; ok {
			out[s] = q
		}
	}
	return out
}

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string][]byte
	setErr error
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string][]byte)}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = append([]byte(nil), v...)
	case string:
		f.data[key] = []byte(v)
	default:
		bytes, _ := json.Marshal(v)
		f.data[key] = bytes
	}
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(string(v), nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}
