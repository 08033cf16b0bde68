package memory

import (
	"context"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

type UserRepository struct {
	s *Store
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	c.Profile = copyMap(u.Profile)
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return "", domain.ErrUserExists
		}
	}

	c := cloneUser(user)
	c.ID = domain.NewID()
	r.s.users[c.ID] = c
	return c.ID, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}
