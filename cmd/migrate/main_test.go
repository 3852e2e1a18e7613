package main

import (
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		t.Fatalf("unexpected error loading embedded migrations: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[0].Name != "market_prices" {
		t.Fatalf("unexpected first migration %d %s", migrations[0].Version, migrations[0].Name)
	}
	if migrations[1].Version != 2 || migrations[1].Name != "user_signals" {
		t.Fatalf("unexpected second migration %d %s", migrations[1].Version, migrations[1].Name)
	}
	if !strings.Contains(migrations[0].UpSQL, "PRIMARY KEY (symbol, date)") {
		t.Fatal("market_prices must be keyed on symbol and date")
	}
	if !strings.Contains(migrations[1].UpSQL, "user_id     TEXT NOT NULL UNIQUE") {
		t.Fatal("user_signals must have a unique user_id")
	}
}

func TestLoadMigrationsErrors(t *testing.T) {
	file := func(s string) *fstest.MapFile { return &fstest.MapFile{Data: []byte(s)} }
	cases := map[string]fstest.MapFS{
		"no files":     {},
		"bad name":     {"migrations/one.up.sql": file("SELECT 1")},
		"empty":        {"migrations/001_a.up.sql": file("  "), "migrations/001_a.down.sql": file("SELECT 1")},
		"missing down": {"migrations/001_a.up.sql": file("SELECT 1")},
		"name clash":   {"migrations/001_a.up.sql": file("SELECT 1"), "migrations/001_b.down.sql": file("SELECT 1")},
	}
	for name, fsys := range cases {
		if _, err := loadMigrations(fsys); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestPending(t *testing.T) {
	all := []migration{{Version: 1}, {Version: 2}, {Version: 3}}
	got := pending(all, map[int64]struct{}{1: {}, 3: {}})
	if len(got) != 1 || got[0].Version != 2 {
		t.Fatalf("unexpected pending set %+v", got)
	}
}

func TestRunRejectsBadArgs(t *testing.T) {
	logger := zap.NewNop()
	for _, tc := range []struct {
		args []string
		dsn  string
		want string
	}{
		{nil, "postgres://x", "usage"},
		{[]string{"sideways"}, "postgres://x", "unknown command"},
		{[]string{"down", "0"}, "postgres://x", "invalid down steps"},
		{[]string{"up"}, " ", "DATABASE_URL is required"},
	} {
		err := run(context.Background(), tc.args, tc.dsn, logger)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%v: expected %q, got %v", tc.args, tc.want, err)
		}
	}
}

type fakeDB struct {
	applied []int64
	execs   []string
	failSQL string
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return &fakeRows{values: f.applied}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{err: pgx.ErrNoRows}
}

func (f *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	return &fakeTx{db: f}, nil
}

type fakeTx struct {
	pgx.Tx
	db        *fakeDB
	committed bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.db.failSQL != "" && strings.Contains(sql, t.db.failSQL) {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	t.db.execs = append(t.db.execs, sql)
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

type fakeRows struct {
	pgx.Rows
	values []int64
	i      int
}

func (r *fakeRows) Next() bool {
	r.i++
	return r.i <= len(r.values)
}

func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*int64) = r.values[r.i-1]
	return nil
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error { return r.err }

func withFakeDB(t *testing.T, db *fakeDB) {
	t.Helper()
	orig := openDB
	openDB = func(context.Context, string) (schemaDB, func(), error) { return db, func() {}, nil }
	t.Cleanup(func() { openDB = orig })
}

func TestRunUpAppliesPending(t *testing.T) {
	db := &fakeDB{applied: []int64{1}}
	withFakeDB(t, db)

	if err := run(context.Background(), []string{"up"}, "postgres://x", zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := strings.Join(db.execs, "\n")
	if strings.Contains(joined, "market_prices (") {
		t.Fatal("applied migration must not run again")
	}
	if !strings.Contains(joined, "CREATE TABLE IF NOT EXISTS user_signals") {
		t.Fatal("pending migration was not applied")
	}
}

func TestRunUpStopsOnFailure(t *testing.T) {
	db := &fakeDB{failSQL: "market_prices"}
	withFakeDB(t, db)

	err := run(context.Background(), []string{"up"}, "postgres://x", zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "version 1 up failed") {
		t.Fatalf("expected version 1 failure, got %v", err)
	}
}

func TestRunVersionEmpty(t *testing.T) {
	withFakeDB(t, &fakeDB{})
	if err := run(context.Background(), []string{"version"}, "postgres://x", zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunDownRollsBackLatest(t *testing.T) {
	db := &fakeDB{applied: []int64{2}}
	withFakeDB(t, db)

	if err := run(context.Background(), []string{"down"}, "postgres://x", zap.NewNop()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := strings.Join(db.execs, "\n")
	if !strings.Contains(joined, "DROP TABLE IF EXISTS user_signals") || !strings.Contains(joined, "DELETE FROM schema_migrations") {
		t.Fatalf("expected user_signals rollback, got %s", joined)
	}
}
