// Package memory is a process-local account store with the same contract as the
// Postgres repository, including the email uniqueness constraint.
package memory

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/oksasatya/user-accounts/internal/domain/entity"
	"github.com/oksasatya/user-accounts/internal/domain/repository"
)

var errClosed = errors.New("unit of work already closed")

type AccountRepository struct {
	mu     sync.RWMutex
	rows   map[int64]*entity.Account
	emails map[string]int64
	nextID int64
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		rows:   map[int64]*entity.Account{},
		emails: map[string]int64{},
	}
}

func (r *AccountRepository) GetAll(ctx context.Context) ([]entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(r.rows))
	out := make([]entity.Account, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.rows[id].Clone())
	}
	return out, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.rows[id].Clone(), nil
}

func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.emails[email]
	return ok, nil
}

func (r *AccountRepository) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &unitOfWork{repo: r}, nil
}

// Ping always succeeds; it lets the memory store back the health check.
func (r *AccountRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

type stagedWrite struct {
	insert  bool
	account *entity.Account
}

type unitOfWork struct {
	repo    *AccountRepository
	pending []stagedWrite
	closed  bool
}

// Add reserves the next id immediately; ids of rolled back inserts are not reused.
func (u *unitOfWork) Add(ctx context.Context, a *entity.Account) error {
	if err := u.usable(ctx); err != nil {
		return err
	}
	u.repo.mu.Lock()
	u.repo.nextID++
	a.ID = u.repo.nextID
	u.repo.mu.Unlock()

	u.pending = append(u.pending, stagedWrite{insert: true, account: a.Clone()})
	return nil
}

func (u *unitOfWork) Update(ctx context.Context, a *entity.Account) error {
	if err := u.usable(ctx); err != nil {
		return err
	}
	u.pending = append(u.pending, stagedWrite{account: a.Clone()})
	return nil
}

// Commit applies every staged write atomically or none of them.
func (u *unitOfWork) Commit(ctx context.Context) error {
	if err := u.usable(ctx); err != nil {
		return err
	}
	r := u.repo
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := maps.Clone(r.rows)
	emails := maps.Clone(r.emails)
	for _, w := range u.pending {
		a := w.account
		prev, exists := rows[a.ID]
		if !w.insert && !exists {
			return repository.ErrNotFound
		}
		if owner, taken := emails[a.Email]; taken && owner != a.ID {
			return repository.ErrDuplicateEmail
		}
		if exists {
			delete(emails, prev.Email)
		}
		rows[a.ID] = a
		emails[a.Email] = a.ID
	}

	r.rows = rows
	r.emails = emails
	u.closed = true
	u.pending = nil
	return nil
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	u.closed = true
	u.pending = nil
	return nil
}

func (u *unitOfWork) usable(ctx context.Context) error {
	if u.closed {
		return errClosed
	}
	return ctx.Err()
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
