package auth

import (
	"time"

	"github.com/minhnguyen-io/lenscraft-backend/pkg/db/models"
)

// RegisterInput carries a new account request.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// LoginInput carries a credential check request.
type LoginInput struct {
	Email    string
	Password string
}

// TokenResult is a freshly minted access token plus its subject.
type TokenResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *models.User
}
