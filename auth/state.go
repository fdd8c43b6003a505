package auth

// User identifies the authenticated account.
type User struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
}

// SessionState is the single source of truth the presentation layer observes.
type SessionState struct {
	Authenticated bool
	User          *User
	Loading       bool
	LastError     string
}

// Request and response shapes for the authentication endpoints.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is the backend's reply to login, signup, and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         *User  `json:"user,omitempty"`
}
