package api

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type SignInResponse struct {
	Token     string      `json:"token"`
	ExpiresAt string      `json:"expires_at"`
	User      SessionUser `json:"user"`
	Status    string      `json:"status"`
}

type SessionResponse struct {
	User   SessionUser `json:"user"`
	Status string      `json:"status"`
}
