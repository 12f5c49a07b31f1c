package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/revenuecast/pkg/adapters"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/store/users"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// dummyHash keeps unknown-email sign-ins as slow as wrong-password ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("revenuecast"), bcrypt.DefaultCost)

type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal domain.Principal
}

type Authenticator struct {
	users   users.Store
	tokens  *Tokens
	revoked RevocationList
	now     func() time.Time
}

func NewAuthenticator(users users.Store, tokens *Tokens, revoked RevocationList) *Authenticator {
	if revoked == nil {
		revoked = NewMemoryRevocationList()
	}
	return &Authenticator{
		users:   users,
		tokens:  tokens,
		revoked: revoked,
		now:     time.Now,
	}
}

func (a *Authenticator) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	record, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if record == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, domain.ErrInvalidCredentials
	}

	user := adapters.MapStoreUserToDomain(record)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		zerolog.Ctx(ctx).Warn().Str("email", email).Msg("sign-in rejected")
		return nil, domain.ErrInvalidCredentials
	}

	session, err := a.tokens.Issue(user.Principal())
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Str("user_id", user.ID).Msg("signed in")
	return session, nil
}

// Authenticate resolves a session token to its principal. Invalid, expired
// and revoked tokens all yield domain.ErrUnauthorized.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	if token == "" {
		return domain.Principal{}, domain.ErrUnauthorized
	}

	principal, _, err := a.tokens.Parse(token)
	if err != nil {
		return domain.Principal{}, err
	}

	revoked, err := a.revoked.IsRevoked(ctx, principal.TokenID)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return domain.Principal{}, fmt.Errorf("%w: token revoked", domain.ErrUnauthorized)
	}
	return principal, nil
}

// SignOut revokes the token until its natural expiry.
func (a *Authenticator) SignOut(ctx context.Context, token string) error {
	principal, expiresAt, err := a.tokens.Parse(token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil
		}
		return err
	}

	if err := a.revoked.Revoke(ctx, principal.TokenID, expiresAt.Sub(a.now())); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("user_id", principal.UserID).Msg("signed out")
	return nil
}
