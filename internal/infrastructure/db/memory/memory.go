// Package memory is an in-process implementation of the repository ports. It
// enforces the same uniqueness and conditional-write semantics as the MongoDB
// adapter and backs STORE=memory as well as the tests.
package memory

import (
	"sync"

	"github.com/lendingledger/ledger-service/internal/core/domain"
)

// Store holds every collection behind one lock, which makes each repository
// call atomic.
type Store struct {
	mu        sync.RWMutex
	users     map[string]*domain.User
	customers map[string]*domain.Customer
	loans     map[string]*domain.Loan
	loanOrder []string
}

func NewStore() *Store {
	return &Store{
		users:     make(map[string]*domain.User),
		customers: make(map[string]*domain.Customer),
		loans:     make(map[string]*domain.Loan),
	}
}

func (s *Store) Users() *UserRepository         { return &UserRepository{s: s} }
func (s *Store) Customers() *CustomerRepository { return &CustomerRepository{s: s} }
func (s *Store) Loans() *LoanRepository         { return &LoanRepository{s: s} }

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
