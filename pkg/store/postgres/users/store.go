package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/revenuecast/pkg/models/store"
	"github.com/de-tools/revenuecast/pkg/store/postgres"
	"github.com/de-tools/revenuecast/pkg/store/users"
	"github.com/jackc/pgx/v5"
)

type pgStore struct {
	pool postgres.Pool
}

func NewStore(pool postgres.Pool) (users.Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	return &pgStore{pool: pool}, nil
}

const userColumns = `id, email, name, role, password_hash, created_at`

func (s *pgStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	var u store.User
	err := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *pgStore) Upsert(ctx context.Context, u *store.User) error {
	query := `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			role = excluded.role,
			password_hash = excluded.password_hash`

	if _, err := s.pool.Exec(ctx, query, u.ID, u.Email, u.Name, u.Role, u.PasswordHash); err != nil {
		return fmt.Errorf("upsert user %s: %w", u.Email, err)
	}
	return nil
}
