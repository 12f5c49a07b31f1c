package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	DefaultTokenTTL = 24 * time.Hour
	issuer          = "revenuecast"
)

type claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *Tokens) Issue(p domain.Principal) (*Session, error) {
	now := t.now()
	p.TokenID = uuid.NewString()
	expiresAt := now.Add(t.ttl).Truncate(time.Second)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   p.UserID,
			ID:        p.TokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email: p.Email,
		Name:  p.Name,
		Role:  string(p.Role),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(t.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Session{Token: signed, ExpiresAt: expiresAt, Principal: p}, nil
}

// Parse verifies the signature and expiry and returns the token's principal.
func (t *Tokens) Parse(token string) (domain.Principal, time.Time, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return domain.Principal{}, time.Time{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if c.Subject == "" || c.ID == "" {
		return domain.Principal{}, time.Time{}, fmt.Errorf("%w: incomplete claims", domain.ErrUnauthorized)
	}

	return domain.Principal{
		UserID:  c.Subject,
		Email:   c.Email,
		Name:    c.Name,
		Role:    domain.Role(c.Role),
		TokenID: c.ID,
	}, c.ExpiresAt.Time, nil
}
