package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/user-accounts/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no account matches the lookup.
	ErrNotFound = errors.New("account not found")
	// ErrDuplicateEmail is returned when the store rejects a write on its email uniqueness constraint.
	ErrDuplicateEmail = errors.New("email already registered")
)

// AccountRepository defines read access to accounts and opens units of work for writes.
// Email arguments are expected to be normalized already.
type AccountRepository interface {
	GetAll(ctx context.Context) ([]entity.Account, error)
	GetByID(ctx context.Context, id int64) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork stages writes until Commit makes them durable.
// Rollback after a successful Commit is a no-op, so it is safe to defer.
type UnitOfWork interface {
	// Add inserts the account and assigns its ID.
	Add(ctx context.Context, a *entity.Account) error
	// Update persists the account in place by ID.
	Update(ctx context.Context, a *entity.Account) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
