package auth

import "time"

// User represents a stored account. PasswordHash never leaves the package boundary
// in responses; use Public for anything client-facing.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string `json:"-"`
	CreatedAt    time.Time
}

// PublicUser is the client-facing view of a User.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips credential material from the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Session is the result of a successful signup or login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      PublicUser
}

// ClientInfo carries request metadata recorded with auth events.
type ClientInfo struct {
	RemoteAddr string
	UserAgent  string
}

// SignupInput holds signup credentials as submitted.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Client   ClientInfo
}

// LoginInput holds login credentials as submitted.
type LoginInput struct {
	Email    string
	Password string
	Client   ClientInfo
}
