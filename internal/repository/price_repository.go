package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"taa-signals/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const upsertPriceSQL = `INSERT INTO market_prices (symbol, date, adj_close, close, volume)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (symbol, date) DO UPDATE SET
    adj_close = EXCLUDED.adj_close,
    close = EXCLUDED.close,
    volume = EXCLUDED.volume`

// upsertChunk bounds the size of a single pgx batch.
const upsertChunk = 1000

// PriceRepository stores daily adjusted closes in market_prices.
type PriceRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewPriceRepository(pool PgxPool, tracer trace.Tracer) *PriceRepository {
	return &PriceRepository{pool: pool, tracer: tracer}
}

// UpsertPrices writes points for symbol, replacing existing dates.
func (r *PriceRepository) UpsertPrices(ctx context.Context, symbol string, points []domain.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	ctx, span := r.tracer.Start(ctx, "price-repo.upsert-prices")
	defer span.End()
	span.SetAttributes(attribute.String("symbol", symbol), attribute.Int("points", len(points)))

	symbol = normalizeSymbol(symbol)
	for start := 0; start < len(points); start += upsertChunk {
		chunk := points[start:min(start+upsertChunk, len(points))]

		batch := &pgx.Batch{}
		for _, p := range chunk {
			batch.Queue(upsertPriceSQL, symbol, dateOnly(p.Date), p.AdjClose, p.Close, p.Volume)
		}
		if err := execBatch(ctx, r.pool, batch, len(chunk)); err != nil {
			return err
		}
	}
	return nil
}

func execBatch(ctx context.Context, pool PgxPool, batch *pgx.Batch, n int) error {
	br := pool.SendBatch(ctx, batch)
	defer br.Close()

	for range n {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// GetDaily returns every stored point for symbol on or after from, oldest
// first.
func (r *PriceRepository) GetDaily(ctx context.Context, symbol string, from time.Time) ([]domain.PricePoint, error) {
	ctx, span := r.tracer.Start(ctx, "price-repo.get-daily")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT date, adj_close, close, volume
		 FROM market_prices
		 WHERE symbol = $1 AND date >= $2
		 ORDER BY date ASC`,
		normalizeSymbol(symbol), dateOnly(from),
	)
	if err != nil {
		return nil, err
	}
	return scanPoints(rows)
}

// GetMonthEnds returns the last stored point of every calendar month.
func (r *PriceRepository) GetMonthEnds(ctx context.Context, symbol string) (domain.MonthlySeries, error) {
	ctx, span := r.tracer.Start(ctx, "price-repo.get-month-ends")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT ON (date_trunc('month', date)) date, adj_close, close, volume
		 FROM market_prices
		 WHERE symbol = $1 AND adj_close > 0
		 ORDER BY date_trunc('month', date) ASC, date DESC`,
		normalizeSymbol(symbol),
	)
	if err != nil {
		return nil, err
	}
	points, err := scanPoints(rows)
	if err != nil {
		return nil, err
	}
	return domain.MonthlySeries(points), nil
}

// LatestDate reports the most recent stored date for symbol.
func (r *PriceRepository) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	ctx, span := r.tracer.Start(ctx, "price-repo.latest-date")
	defer span.End()

	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(date) FROM market_prices WHERE symbol = $1`,
		normalizeSymbol(symbol),
	).Scan(&latest)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && latest == nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return latest.UTC(), true, nil
}

// CountBySymbol returns the number of stored points per symbol.
func (r *PriceRepository) CountBySymbol(ctx context.Context) (map[string]int64, error) {
	ctx, span := r.tracer.Start(ctx, "price-repo.count-by-symbol")
	defer span.End()

	rows, err := r.pool.Query(ctx, `SELECT symbol, COUNT(*) FROM market_prices GROUP BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var symbol string
		var n int64
		if err := rows.Scan(&symbol, &n); err != nil {
			return nil, err
		}
		counts[symbol] = n
	}
	return counts, rows.Err()
}

func scanPoints(rows pgx.Rows) ([]domain.PricePoint, error) {
	defer rows.Close()

	var points []domain.PricePoint
	for rows.Next() {
		var p domain.PricePoint
		if err := rows.Scan(&p.Date, &p.AdjClose, &p.Close, &p.Volume); err != nil {
			return nil, err
		}
		p.Date = p.Date.UTC()
		points = append(points, p)
	}
	return points, rows.Err()
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
