package ports

import (
	"context"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// RegisterInput carries a new user's credentials and any extra profile fields.
type RegisterInput struct {
	Email    string
	Password string
	Profile  map[string]any
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	UserID string
	Token  string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Profile returns userID's public profile. Only the user itself may read it.
	Profile(ctx context.Context, userID, requesterID string) (*domain.PublicProfile, error)
}

// TokenVerifier validates a bearer token and returns the subject user id.
type TokenVerifier interface {
	Verify(raw string) (string, error)
}
