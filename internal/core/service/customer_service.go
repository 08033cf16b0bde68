package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/lendingledger/ledger-service/internal/core/domain"
	"github.com/lendingledger/ledger-service/internal/core/ports"
	"github.com/lendingledger/ledger-service/internal/pkg/metrics"
)

// CustomerService is the customer registry. Callers are expected to have run
// the ownership guard for id-scoped operations; the repository re-checks
// ownership in the same conditional write.
type CustomerService struct {
	repo ports.CustomerRepository
	log  zerolog.Logger
	now  func() time.Time
}

func NewCustomerService(repo ports.CustomerRepository, log zerolog.Logger) *CustomerService {
	return &CustomerService{repo: repo, log: log, now: time.Now}
}

// Create validates and stores a new customer owned by ownerID.
func (s *CustomerService) Create(ctx context.Context, ownerID string, fields map[string]any) (string, error) {
	phone, err := domain.ParsePhone(fields["phone"])
	if err != nil {
		return "", err
	}
	trustScore, err := domain.ParseTrustScore(fields["trustScore"])
	if err != nil {
		return "", err
	}

	// Fast path only; the unique index on phone closes the race between two
	// concurrent creates.
	exists, err := s.repo.ExistsByPhone(ctx, phone)
	if err != nil {
		return "", err
	}
	if exists {
		return "", domain.ErrPhoneTaken
	}

	now := s.now().UTC()
	c := &domain.Customer{
		Phone:      phone,
		TrustScore: trustScore,
		CreatedBy:  ownerID,
		Profile:    profileFields(fields),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	id, err := s.repo.Create(ctx, c)
	if err != nil {
		return "", err
	}

	metrics.CustomersCreatedTotal.Inc()
	s.log.Info().Str("customer_id", id).Str("owner_id", ownerID).Msg("customer created")
	return id, nil
}

// Update merges fields into the customer. Phone is silently dropped.
func (s *CustomerService) Update(ctx context.Context, id, ownerID string, fields map[string]any) error {
	if !domain.IsValidID(id) {
		return domain.ErrInvalidCustomerID
	}

	var patch domain.CustomerPatch
	if raw, ok := fields["trustScore"]; ok {
		score, err := domain.ParseTrustScore(raw)
		if err != nil {
			return err
		}
		patch.TrustScore = &score
	}
	patch.Profile = profileFields(fields)

	if err := s.repo.Update(ctx, id, ownerID, patch, s.now().UTC()); err != nil {
		return err
	}

	s.log.Info().Str("customer_id", id).Msg("customer updated")
	return nil
}

// Delete removes the customer. Loans recorded against it are left in place.
func (s *CustomerService) Delete(ctx context.Context, id, ownerID string) error {
	if !domain.IsValidID(id) {
		return domain.ErrInvalidCustomerID
	}
	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.log.Info().Str("customer_id", id).Msg("customer deleted")
	return nil
}

func (s *CustomerService) Get(ctx context.Context, id, ownerID string) (*domain.Customer, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidCustomerID
	}
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.CreatedBy != ownerID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// profileFields returns the free-form part of a customer payload.
func profileFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if domain.IsReservedCustomerField(k) {
			continue
		}
		out[k] = v
	}
	return out
}
