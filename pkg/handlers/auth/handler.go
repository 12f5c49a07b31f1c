package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/de-tools/revenuecast/pkg/adapters"
	"github.com/de-tools/revenuecast/pkg/handlers/respond"
	"github.com/de-tools/revenuecast/pkg/models/api"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/server/middleware"
	authsvc "github.com/de-tools/revenuecast/pkg/services/auth"
	"github.com/rs/zerolog"
)

type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*authsvc.Session, error)
	SignOut(ctx context.Context, token string) error
}

type Handler struct {
	auth         Authenticator
	secureCookie bool
}

func NewHandler(a Authenticator, secureCookie bool) *Handler {
	return &Handler{auth: a, secureCookie: secureCookie}
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req api.SignInRequest
	if err := respond.Decode(r, &req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, respond.MsgBodyNotObject)
		return
	}

	session, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "Invalid email or password")
		return
	case err != nil:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign-in failed")
		respond.Error(w, r, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.SetSessionCookie(w, session.Token, session.ExpiresAt, h.secureCookie)
	respond.JSON(w, r, http.StatusOK, api.SignInResponse{
		Token:     session.Token,
		ExpiresAt: adapters.FormatTimestamp(session.ExpiresAt),
		User:      adapters.MapDomainPrincipalToAPI(session.Principal),
		Status:    api.StatusSuccess,
	})
}

func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if token := middleware.SessionToken(r); token != "" {
		if err := h.auth.SignOut(r.Context(), token); err != nil {
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("sign-out failed")
			respond.Error(w, r, http.StatusInternalServerError, "Internal server error")
			return
		}
	}

	middleware.SetSessionCookie(w, "", time.Time{}, h.secureCookie)
	respond.JSON(w, r, http.StatusOK, api.MessageResponse{
		Message: "Signed out successfully",
		Status:  api.StatusSuccess,
	})
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	principal, ok := authsvc.PrincipalFrom(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respond.JSON(w, r, http.StatusOK, api.SessionResponse{
		User:   adapters.MapDomainPrincipalToAPI(principal),
		Status: api.StatusSuccess,
	})
}
