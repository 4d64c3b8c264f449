package domain

// User is the authenticated MalangEE profile returned by /users/me.
type User struct {
	ID        int64      `json:"id"`
	LoginID   string     `json:"login_id"`
	Nickname  *string    `json:"nickname,omitempty"`
	IsActive  *bool      `json:"is_active,omitempty"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
	UpdatedAt *Timestamp `json:"updated_at,omitempty"`
}

// DisplayName returns the nickname, falling back to the login id when the
// profile has none.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Nickname != nil && *u.Nickname != "" {
		return *u.Nickname
	}
	return u.LoginID
}

// Token is the OAuth2 password-grant response of /auth/login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignupRequest is the payload for /auth/signup.
type SignupRequest struct {
	LoginID  string `json:"login_id"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
	IsActive bool   `json:"is_active"`
}

// UserUpdate is a partial update for PUT /users/me. Nil fields are left untouched.
type UserUpdate struct {
	Nickname *string `json:"nickname,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Availability is the response of the duplicate-check endpoints.
type Availability struct {
	IsAvailable bool `json:"is_available"`
}

// ServerInfo is the "info" object of the backend's OpenAPI document.
type ServerInfo struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}
