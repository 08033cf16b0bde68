package memory

import (
	"context"
	"time"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

type CustomerRepository struct {
	s *Store
}

func cloneCustomer(c *domain.Customer) *domain.Customer {
	out := *c
	out.Profile = copyMap(c.Profile)
	return &out
}

// Create enforces phone uniqueness inside the same critical section as the
// insert.
func (r *CustomerRepository) Create(_ context.Context, c *domain.Customer) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.customers {
		if existing.Phone == c.Phone {
			return "", domain.ErrPhoneTaken
		}
	}

	stored := cloneCustomer(c)
	stored.ID = domain.NewID()
	r.s.customers[stored.ID] = stored
	return stored.ID, nil
}

func (r *CustomerRepository) FindByID(_ context.Context, id string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	return cloneCustomer(c), nil
}

func (r *CustomerRepository) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, c := range r.s.customers {
		if c.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *CustomerRepository) Update(_ context.Context, id, ownerID string, patch domain.CustomerPatch, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.customers[id]
	if !ok || c.CreatedBy != ownerID {
		return domain.ErrCustomerNotFound
	}

	if patch.TrustScore != nil {
		c.TrustScore = *patch.TrustScore
	}
	if len(patch.Profile) > 0 {
		if c.Profile == nil {
			c.Profile = make(map[string]any, len(patch.Profile))
		}
		for k, v := range patch.Profile {
			c.Profile[k] = v
		}
	}
	c.UpdatedAt = now
	return nil
}

func (r *CustomerRepository) Delete(_ context.Context, id, ownerID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.customers[id]
	if !ok || c.CreatedBy != ownerID {
		return domain.ErrCustomerNotFound
	}
	delete(r.s.customers, id)
	return nil
}
