package dto

import (
	"time"

	domainuser "freebie/internal/domain/user"
)

// User is the public profile payload.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewUser maps the domain entity, omitting credentials.
func NewUser(u domainuser.User) User {
	return User{
		ID:        string(u.ID),
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse pairs a profile with its session token.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// NewAuthResponse builds the login/register payload.
func NewAuthResponse(u domainuser.User, token string) AuthResponse {
	return AuthResponse{User: NewUser(u), Token: token}
}
