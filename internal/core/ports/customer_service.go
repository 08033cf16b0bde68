package ports

import (
	"context"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// CustomerService is the customer registry. Fields are the raw client payload;
// phone and trustScore are validated, everything else is profile data.
type CustomerService interface {
	Create(ctx context.Context, ownerID string, fields map[string]any) (string, error)
	Update(ctx context.Context, id, ownerID string, fields map[string]any) error
	Delete(ctx context.Context, id, ownerID string) error
	Get(ctx context.Context, id, ownerID string) (*domain.Customer, error)
}
