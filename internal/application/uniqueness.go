package application

import (
	"context"
	"errors"

	repo "github.com/oksasatya/user-accounts/internal/domain/repository"
)

// EmailRegistered reports whether any account, active or not, already holds email.
func (s *Service) EmailRegistered(ctx context.Context, email string) (bool, error) {
	return s.Repo.EmailExists(ctx, NormalizeEmail(email))
}

// EmailTakenByOther reports whether email belongs to an account other than id.
// Used before an update so an account may keep its own address.
func (s *Service) EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error) {
	owner, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner.ID != id, nil
}
