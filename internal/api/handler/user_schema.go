package handler

import "time"

// --- Request / Response types ---

type createUserRequest struct {
	Email    string `json:"email"     validate:"required,email,max=254"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Password string `json:"password"  validate:"required,max=72"`
}

// tokenRequest is the OAuth2 password-flow form; username carries the email.
type tokenRequest struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}
