package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/user-accounts/internal/domain/repository"
)

func TestMapErrorUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_email_key"})
	assert.ErrorIs(t, mapError(err), repository.ErrDuplicateEmail)
}

func TestMapErrorPassesOthersThrough(t *testing.T) {
	fk := &pgconn.PgError{Code: "23503"}
	assert.Same(t, error(fk), mapError(fk))

	plain := errors.New("connection reset")
	assert.Same(t, plain, mapError(plain))
	assert.NoError(t, mapError(nil))
}
