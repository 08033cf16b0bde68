package ports

import (
	"context"
	"time"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// CustomerRepository persists customers. Writes that target an existing record
// are conditional on both the id and the owner, so ownership is re-checked
// atomically by the store.
type CustomerRepository interface {
	// Create inserts c and returns its id. Returns domain.ErrPhoneTaken when
	// the phone already belongs to another customer.
	Create(ctx context.Context, c *domain.Customer) (string, error)
	FindByID(ctx context.Context, id string) (*domain.Customer, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	// Update applies patch to the customer matching id and ownerID. Returns
	// domain.ErrCustomerNotFound when nothing matched.
	Update(ctx context.Context, id, ownerID string, patch domain.CustomerPatch, now time.Time) error
	// Delete removes the customer matching id and ownerID. Returns
	// domain.ErrCustomerNotFound when nothing matched.
	Delete(ctx context.Context, id, ownerID string) error
}
