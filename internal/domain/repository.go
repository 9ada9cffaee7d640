package domain

import "context"

// AccountRepository defines the interface for account storage.
// All methods accept context.Context so a slower backing store can honor
// cancellation and timeouts.
type AccountRepository interface {
	Save(ctx context.Context, account *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindAll(ctx context.Context) ([]*Account, error)
}
