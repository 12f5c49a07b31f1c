package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/de-tools/revenuecast/pkg/adapters"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/store/users"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/ini.v1"
)

// DemoCredentials are used when no credentials file is configured.
const DemoCredentials = `
[demo@revenuecast.com]
id       = 1
name     = Demo User
role     = user
password = demo123

[admin@revenuecast.com]
id       = 2
name     = Admin User
role     = admin
password = admin123
`

type Registry interface {
	GetEmails(ctx context.Context) ([]string, error)
	GetUser(ctx context.Context, email string) (*domain.User, error)
}

type cfgRegistry struct {
	cfg  *ini.File
	cost int
}

// NewRegistry loads a credentials file. An empty path loads DemoCredentials.
func NewRegistry(path string) (Registry, error) {
	var source any = []byte(DemoCredentials)
	if path != "" {
		source = path
	}

	cfg, err := ini.Load(source)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	return &cfgRegistry{cfg: cfg, cost: bcrypt.DefaultCost}, nil
}

func (cr *cfgRegistry) GetEmails(_ context.Context) ([]string, error) {
	var emails []string
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			emails = append(emails, section.Name())
		}
	}
	return emails, nil
}

func (cr *cfgRegistry) GetUser(_ context.Context, email string) (*domain.User, error) {
	section, err := cr.cfg.GetSection(email)
	if err != nil {
		return nil, fmt.Errorf("user %s not found", email)
	}

	role := domain.Role(section.Key("role").MustString(string(domain.RoleUser)))
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("user %s: unknown role %q", email, role)
	}

	id := section.Key("id").String()
	if id == "" {
		return nil, fmt.Errorf("user %s: id is required", email)
	}

	hash := section.Key("password_hash").String()
	if hash == "" {
		password := section.Key("password").String()
		if password == "" {
			return nil, fmt.Errorf("user %s: password or password_hash is required", email)
		}
		b, err := bcrypt.GenerateFromPassword([]byte(password), cr.cost)
		if err != nil {
			return nil, fmt.Errorf("user %s: hash password: %w", email, err)
		}
		hash = string(b)
	}

	return &domain.User{
		ID:           id,
		Email:        strings.ToLower(email),
		Name:         section.Key("name").MustString(email),
		Role:         role,
		PasswordHash: hash,
	}, nil
}

// SeedUsers copies every registry entry into the user store.
func SeedUsers(ctx context.Context, registry Registry, store users.Store) (int, error) {
	emails, err := registry.GetEmails(ctx)
	if err != nil {
		return 0, err
	}

	for _, email := range emails {
		u, err := registry.GetUser(ctx, email)
		if err != nil {
			return 0, err
		}
		if err := store.Upsert(ctx, adapters.MapDomainUserToStore(*u)); err != nil {
			return 0, fmt.Errorf("seed user %s: %w", email, err)
		}
	}
	return len(emails), nil
}
