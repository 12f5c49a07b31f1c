package adapters

import (
	"github.com/de-tools/revenuecast/pkg/models/api"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/models/store"
)

func MapStoreUserToDomain(u *store.User) *domain.User {
	if u == nil {
		return nil
	}

	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         domain.Role(u.Role),
		PasswordHash: u.PasswordHash,
	}
}

func MapDomainUserToStore(u domain.User) *store.User {
	return &store.User{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
	}
}

func MapDomainPrincipalToAPI(p domain.Principal) api.SessionUser {
	return api.SessionUser{
		ID:    p.UserID,
		Email: p.Email,
		Name:  p.Name,
		Role:  string(p.Role),
	}
}
