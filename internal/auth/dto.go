package auth

import "github.com/angelmondragon/wishboard-backend/internal/users"

// GoogleSignInRequest carries the ID token obtained by the client from Google.
type GoogleSignInRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// SessionResponse contains the tokens and user produced by a successful sign-in.
type SessionResponse struct {
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
	User         *users.UserDTO `json:"user"`
}
