package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/models/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*store.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Upsert(ctx context.Context, u *store.User) error {
	return m.Called(ctx, u).Error(0)
}

func writeCredentials(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "credentials.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewRegistry_Demo(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)
	ctx := context.Background()

	emails, err := r.GetEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"demo@revenuecast.com", "admin@revenuecast.com"}, emails)

	admin, err := r.GetUser(ctx, "admin@revenuecast.com")
	require.NoError(t, err)
	assert.Equal(t, "2", admin.ID)
	assert.Equal(t, "Admin User", admin.Name)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("admin123")))
}

func TestNewRegistry_MissingFile(t *testing.T) {
	_, err := NewRegistry(filepath.Join(t.TempDir(), "nope.ini"))
	assert.Error(t, err)
}

func TestRegistry_GetUser(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	path := writeCredentials(t, `
[Analyst@Example.com]
id            = 10
password_hash = `+string(hash)+`

[bad-role@example.com]
id       = 11
role     = root
password = x

[no-id@example.com]
password = x

[no-password@example.com]
id = 12
`)
	r, err := NewRegistry(path)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("precomputed hash and defaults", func(t *testing.T) {
		u, err := r.GetUser(ctx, "Analyst@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "analyst@example.com", u.Email)
		assert.Equal(t, "Analyst@Example.com", u.Name)
		assert.Equal(t, domain.RoleUser, u.Role)
		assert.Equal(t, string(hash), u.PasswordHash)
	})

	tests := []struct {
		email string
		want  string
	}{
		{"bad-role@example.com", "unknown role"},
		{"no-id@example.com", "id is required"},
		{"no-password@example.com", "password or password_hash is required"},
		{"ghost@example.com", "not found"},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			_, err := r.GetUser(ctx, tt.email)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSeedUsers(t *testing.T) {
	r, err := NewRegistry("")
	require.NoError(t, err)

	st := &mockUserStore{}
	st.On("Upsert", mock.Anything, mock.MatchedBy(func(u *store.User) bool {
		return u.ID == "1" && u.Email == "demo@revenuecast.com" && u.Role == "user"
	})).Return(nil).Once()
	st.On("Upsert", mock.Anything, mock.MatchedBy(func(u *store.User) bool {
		return u.ID == "2" && u.Role == "admin"
	})).Return(nil).Once()

	n, err := SeedUsers(context.Background(), r, st)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	st.AssertExpectations(t)
}
