package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/services/auth"
	"github.com/rs/zerolog"
)

// SessionCookie carries the session token for browser clients.
const SessionCookie = "revenuecast_session"

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// SessionToken returns the bearer token, falling back to the session cookie.
func SessionToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate attaches the request's Principal to the context when a valid
// session token is present. Requests without one pass through anonymously;
// handlers decide whether a Principal is required.
func Authenticate(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			principal, err := a.Authenticate(ctx, token)
			switch {
			case err == nil:
				logger := zerolog.Ctx(ctx).With().Str("user_id", principal.UserID).Logger()
				ctx = logger.WithContext(auth.WithPrincipal(ctx, principal))
				r = r.WithContext(ctx)
			case errors.Is(err, domain.ErrUnauthorized):
				zerolog.Ctx(ctx).Debug().Err(err).Msg("ignoring invalid session token")
			default:
				zerolog.Ctx(ctx).Error().Err(err).Msg("session lookup failed")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// SetSessionCookie writes the session cookie; an empty token clears it.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	c := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	if token == "" {
		c.Expires = time.Unix(0, 0)
		c.MaxAge = -1
	}
	http.SetCookie(w, c)
}
