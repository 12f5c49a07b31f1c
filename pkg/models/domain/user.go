package domain

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string
	Email        string
	Name         string
	Role         Role
	PasswordHash string
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	UserID  string
	Email   string
	Name    string
	Role    Role
	TokenID string
}

func (u User) Principal() Principal {
	return Principal{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role,
	}
}
