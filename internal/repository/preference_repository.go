package repository

import (
	"context"
	"errors"

	"taa-signals/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

// PreferenceRepository stores the encoded preference blob of each user in
// user_signals.
type PreferenceRepository struct {
	pool   PgxPool
	tracer trace.Tracer
	newID  func() uuid.UUID
}

func NewPreferenceRepository(pool PgxPool, tracer trace.Tracer) *PreferenceRepository {
	return &PreferenceRepository{pool: pool, tracer: tracer, newID: uuid.New}
}

// Get returns the stored blob for userID, or false when none exists.
func (r *PreferenceRepository) Get(ctx context.Context, userID string) (domain.UserConfig, bool, error) {
	ctx, span := r.tracer.Start(ctx, "preference-repo.get")
	defer span.End()

	c, err := scanUserConfig(r.pool.QueryRow(ctx,
		`SELECT id, user_id, config, updated_at FROM user_signals WHERE user_id = $1`,
		userID,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserConfig{}, false, nil
	}
	if err != nil {
		return domain.UserConfig{}, false, err
	}
	return c, true, nil
}

// Save inserts or replaces the blob for userID.
func (r *PreferenceRepository) Save(ctx context.Context, userID string, config []byte) error {
	ctx, span := r.tracer.Start(ctx, "preference-repo.save")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_signals (id, user_id, config)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET
		     config = EXCLUDED.config,
		     updated_at = NOW()`,
		r.newID(), userID, string(config),
	)
	return err
}

// ListAll returns every stored blob, for jobs that fan out per user.
func (r *PreferenceRepository) ListAll(ctx context.Context) ([]domain.UserConfig, error) {
	ctx, span := r.tracer.Start(ctx, "preference-repo.list-all")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, config, updated_at FROM user_signals ORDER BY user_id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.UserConfig
	for rows.Next() {
		c, err := scanUserConfig(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanUserConfig(s interface{ Scan(dest ...any) error }) (domain.UserConfig, error) {
	var (
		c   domain.UserConfig
		id  uuid.UUID
		raw string
	)
	if err := s.Scan(&id, &c.UserID, &raw, &c.UpdatedAt); err != nil {
		return domain.UserConfig{}, err
	}
	c.ID = id.String()
	c.Config = []byte(raw)
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}
