package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is the subset of *pgxpool.Pool used by the stores.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Settings struct {
	DSN      string
	MaxConns int32
}

const UsersTableSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL,
		role TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (lower(email));
`

const SavedPredictionsTableSchema = `
	CREATE TABLE IF NOT EXISTS saved_predictions (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		company_name TEXT NOT NULL,
		marketing_spend DOUBLE PRECISION NOT NULL,
		rd_spend DOUBLE PRECISION NOT NULL,
		admin_costs DOUBLE PRECISION NOT NULL,
		num_employees INTEGER NOT NULL,
		region TEXT NOT NULL,
		predicted_revenue DOUBLE PRECISION NOT NULL,
		r2_score DOUBLE PRECISION NOT NULL,
		mae DOUBLE PRECISION NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_saved_predictions_owner
	ON saved_predictions (owner_id, created_at);
`

// NewPool opens a pgx pool and applies the schema.
func NewPool(ctx context.Context, settings Settings) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(settings.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	if settings.MaxConns > 0 {
		cfg.MaxConns = settings.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func Migrate(ctx context.Context, pool Pool) error {
	for _, schema := range []string{UsersTableSchema, SavedPredictionsTableSchema} {
		if _, err := pool.Exec(ctx, schema); err != nil {
			return fmt.Errorf("postgres: migrate: %w", err)
		}
	}
	return nil
}
