// Package memory keeps accounts for the lifetime of the process only.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/jmanzanog/paper-trader/internal/domain"
)

type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts: make(map[string]*domain.Account),
	}
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	if account == nil || account.ID == "" {
		return fmt.Errorf("save account: missing id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.accounts[account.ID] = account
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}

	return account, nil
}

// FindAll returns the accounts oldest first.
func (r *AccountRepository) FindAll(ctx context.Context) ([]*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accounts := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if accounts[i].CreatedAt.Equal(accounts[j].CreatedAt) {
			return accounts[i].ID < accounts[j].ID
		}
		return accounts[i].CreatedAt.Before(accounts[j].CreatedAt)
	})

	return accounts, nil
}
