package domain

import (
	"time"
)

// Credential binds an account id (an e-mail address) to its password hash and
// to the bearer token issued at registration.
type Credential struct {
	AccountID    string    `json:"accountId"`
	PasswordHash string    `json:"-"` // never sent to clients
	Token        string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	AccountID string `json:"accountId" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
}

type LoginRequest struct {
	AccountID string `json:"accountId" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
}
