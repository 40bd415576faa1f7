package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/user-accounts/internal/domain/entity"
	"github.com/oksasatya/user-accounts/internal/domain/repository"
)

func newAccount(email string) *entity.Account {
	return &entity.Account{
		Name:      "Ana Silva",
		Email:     email,
		Password:  "secret",
		BirthDate: entity.NewDate(1990, time.May, 20),
		Active:    true,
		CreatedAt: time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
	}
}

func add(t *testing.T, r *AccountRepository, a *entity.Account) {
	t.Helper()
	ctx := context.Background()
	uow, err := r.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Add(ctx, a))
	require.NoError(t, uow.Commit(ctx))
}

func TestAddAndRead(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()
	a := newAccount("ana@example.com")
	add(t, r, a)
	assert.Equal(t, int64(1), a.ID)

	got, err := r.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, a, got)

	byEmail, err := r.GetByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), byEmail.ID)

	exists, err := r.EmailExists(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = r.GetByID(ctx, 2)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.GetByEmail(ctx, "bruno@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReadsReturnCopies(t *testing.T) {
	r := NewAccountRepository()
	add(t, r, newAccount("ana@example.com"))

	got, err := r.GetByID(context.Background(), 1)
	require.NoError(t, err)
	got.Name = "mutated"

	again, err := r.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", again.Name)
}

func TestNothingVisibleBeforeCommit(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()

	uow, err := r.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Add(ctx, newAccount("ana@example.com")))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	require.NoError(t, uow.Rollback(ctx))
	all, err = r.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.Error(t, uow.Commit(ctx), "closed unit of work cannot commit")
}

func TestRollbackAfterCommitIsNoop(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()

	uow, err := r.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Add(ctx, newAccount("ana@example.com")))
	require.NoError(t, uow.Commit(ctx))
	require.NoError(t, uow.Rollback(ctx))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestCommitRejectsDuplicateEmail(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()
	add(t, r, newAccount("ana@example.com"))

	uow, err := r.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Add(ctx, newAccount("bruno@example.com")))
	require.NoError(t, uow.Add(ctx, newAccount("ana@example.com")))
	assert.ErrorIs(t, uow.Commit(ctx), repository.ErrDuplicateEmail)

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "a failed commit applies nothing")
}

func TestUpdateMovesEmail(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()
	a := newAccount("ana@example.com")
	add(t, r, a)

	changed := a.Clone()
	changed.Email = "ana.souza@example.com"
	uow, err := r.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Update(ctx, changed))
	require.NoError(t, uow.Commit(ctx))

	exists, err := r.EmailExists(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	got, err := r.GetByEmail(ctx, "ana.souza@example.com")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
}

func TestUpdateKeepingOwnEmail(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()
	a := newAccount("ana@example.com")
	add(t, r, a)

	changed := a.Clone()
	changed.Active = false
	uow, err := r.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Update(ctx, changed))
	require.NoError(t, uow.Commit(ctx))

	got, err := r.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)
}

func TestUpdateUnknownIDFailsAtCommit(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()

	ghost := newAccount("ghost@example.com")
	ghost.ID = 5
	uow, err := r.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Update(ctx, ghost))
	assert.ErrorIs(t, uow.Commit(ctx), repository.ErrNotFound)
}

func TestCancelledContext(t *testing.T) {
	r := NewAccountRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.GetAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, err = r.Begin(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, r.Ping(ctx), context.Canceled)
}

func TestConcurrentAddsWithSameEmail(t *testing.T) {
	r := NewAccountRepository()
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uow, err := r.Begin(ctx)
			if err != nil {
				return
			}
			defer func() { _ = uow.Rollback(ctx) }()
			if err := uow.Add(ctx, newAccount("race@example.com")); err != nil {
				return
			}
			if uow.Commit(ctx) == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
