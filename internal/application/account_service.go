package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-accounts/internal/domain/entity"
	repo "github.com/oksasatya/user-accounts/internal/domain/repository"
)

// Service orchestrates the account workflows over the repository.
// Cache and Events are optional; when nil those side effects are skipped.
type Service struct {
	Repo   repo.AccountRepository
	Cache  ViewCache
	Events EventPublisher
	Logger *logrus.Logger
	Now    func() time.Time
}

func NewService(repo repo.AccountRepository, cache ViewCache, events EventPublisher, logger *logrus.Logger) *Service {
	return &Service{
		Repo:   repo,
		Cache:  cache,
		Events: events,
		Logger: logger,
		Now:    time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

// List returns every account, active or not.
func (s *Service) List(ctx context.Context) ([]AccountView, error) {
	accounts, err := s.Repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]AccountView, 0, len(accounts))
	for i := range accounts {
		out = append(out, toView(&accounts[i]))
	}
	return out, nil
}

// Get returns the account view for id. found is false when no such account exists.
func (s *Service) Get(ctx context.Context, id int64) (view AccountView, found bool, err error) {
	if s.Cache != nil {
		v, ok, cErr := s.Cache.Get(ctx, id)
		if cErr != nil {
			s.warn(cErr, id, "account cache read failed")
		} else if ok {
			return v, true, nil
		}
	}

	a, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return AccountView{}, false, nil
	}
	if err != nil {
		return AccountView{}, false, fmt.Errorf("get account %d: %w", id, err)
	}
	view = toView(a)

	// The row may predate a concurrent write; Fill leaves a writer's entry alone.
	if s.Cache != nil {
		if _, cErr := s.Cache.Fill(ctx, view); cErr != nil {
			s.warn(cErr, id, "account cache fill failed")
		}
	}
	return view, true, nil
}

// Create persists a new active account. The payload must already be validated
// and its email checked with EmailRegistered.
func (s *Service) Create(ctx context.Context, in CreatePayload) (AccountView, error) {
	a := &entity.Account{
		Name:      strings.TrimSpace(in.Name),
		Email:     NormalizeEmail(in.Email),
		Password:  in.Password,
		BirthDate: in.BirthDate,
		Phone:     trimPhone(in.Phone),
		Active:    true,
		CreatedAt: s.now(),
	}

	err := s.inUnitOfWork(ctx, func(uow repo.UnitOfWork) error {
		return uow.Add(ctx, a)
	})
	if err != nil {
		return AccountView{}, err
	}

	view := toView(a)
	s.publish(ctx, EventAccountCreated, view)
	return view, nil
}

// Update overwrites the mutable fields of account id. The payload must already be
// validated and its email checked with EmailTakenByOther.
func (s *Service) Update(ctx context.Context, id int64, in UpdatePayload) (AccountView, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return AccountView{}, notFound(id)
	}
	if err != nil {
		return AccountView{}, fmt.Errorf("get account %d: %w", id, err)
	}

	a := current.Clone()
	a.Name = strings.TrimSpace(in.Name)
	a.Email = NormalizeEmail(in.Email)
	a.BirthDate = in.BirthDate
	a.Phone = trimPhone(in.Phone)
	if in.Active != nil {
		a.Active = *in.Active
	}
	s.touch(a)

	err = s.inUnitOfWork(ctx, func(uow repo.UnitOfWork) error {
		return uow.Update(ctx, a)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return AccountView{}, notFound(id)
	}
	if err != nil {
		return AccountView{}, err
	}

	view := toView(a)
	s.storeView(ctx, view)
	s.publish(ctx, EventAccountUpdated, view)
	return view, nil
}

// SoftDelete marks account id inactive. It returns false when the account does not
// exist and true otherwise, including when the account was already inactive.
func (s *Service) SoftDelete(ctx context.Context, id int64) (bool, error) {
	current, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get account %d: %w", id, err)
	}

	a := current.Clone()
	a.Active = false
	s.touch(a)

	err = s.inUnitOfWork(ctx, func(uow repo.UnitOfWork) error {
		return uow.Update(ctx, a)
	})
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	view := toView(a)
	s.storeView(ctx, view)
	s.publish(ctx, EventAccountDeactivated, view)
	return true, nil
}

// touch stamps UpdatedAt, never earlier than CreatedAt.
func (s *Service) touch(a *entity.Account) {
	now := s.now()
	if now.Before(a.CreatedAt) {
		now = a.CreatedAt
	}
	a.UpdatedAt = &now
}

// inUnitOfWork runs fn and commits. Nothing is persisted unless Commit succeeds.
func (s *Service) inUnitOfWork(ctx context.Context, fn func(repo.UnitOfWork) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uow, err := s.Repo.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unit of work: %w", err)
	}
	defer func() { _ = uow.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(uow); err != nil {
		return writeError(err)
	}
	if err := uow.Commit(ctx); err != nil {
		return writeError(err)
	}
	return nil
}

func writeError(err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicateEmail):
		return conflict("email already registered")
	case errors.Is(err, repo.ErrNotFound):
		return err
	default:
		return fmt.Errorf("persist account: %w", err)
	}
}

// storeView writes the committed view through to the cache. If that fails the
// entry is dropped so readers fall back to the store.
func (s *Service) storeView(ctx context.Context, view AccountView) {
	if s.Cache == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	err := s.Cache.Set(ctx, view)
	if err == nil {
		return
	}
	s.warn(err, view.ID, "account cache write failed")
	if err := s.Cache.Delete(ctx, view.ID); err != nil {
		s.warn(err, view.ID, "account cache invalidation failed")
	}
}

func (s *Service) publish(ctx context.Context, eventType string, view AccountView) {
	if s.Events == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	evt := AccountEvent{Type: eventType, Account: view, OccurredAt: s.now()}
	if err := s.Events.PublishJSON(c, evt); err != nil {
		s.warn(err, view.ID, "publish account event failed")
	}
}

func (s *Service) warn(err error, id int64, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", id).Warn(msg)
	}
}
