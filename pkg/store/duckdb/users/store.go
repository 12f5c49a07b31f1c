package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/de-tools/revenuecast/pkg/models/store"
	"github.com/de-tools/revenuecast/pkg/store/duckdb"
	"github.com/de-tools/revenuecast/pkg/store/users"
)

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (users.Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{db: db}, nil
}

func (s *defaultStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `
		SELECT id, email, name, role, password_hash, created_at
		FROM users
		WHERE lower(email) = lower(?)`

	var u store.User
	err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

func (s *defaultStore) Upsert(ctx context.Context, u *store.User) error {
	query := `
		INSERT INTO users (id, email, name, role, password_hash)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			name = excluded.name,
			role = excluded.role,
			password_hash = excluded.password_hash`

	if _, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, query,
		u.ID, u.Email, u.Name, u.Role, u.PasswordHash); err != nil {
		return fmt.Errorf("upsert user %s: %w", u.Email, err)
	}
	return nil
}
