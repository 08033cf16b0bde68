package ports

import (
	"context"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// UserRepository persists identity records.
type UserRepository interface {
	// Create stores user and returns its new id. Returns domain.ErrUserExists
	// when the email is already registered.
	Create(ctx context.Context, user *domain.User) (string, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
