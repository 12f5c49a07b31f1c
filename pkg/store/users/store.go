package users

import (
	"context"

	"github.com/de-tools/revenuecast/pkg/models/store"
)

type Store interface {
	// GetByEmail returns nil when no user matches.
	GetByEmail(ctx context.Context, email string) (*store.User, error)
	Upsert(ctx context.Context, user *store.User) error
}
