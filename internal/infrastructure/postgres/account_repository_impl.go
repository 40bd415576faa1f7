package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/user-accounts/internal/domain/entity"
	"github.com/oksasatya/user-accounts/internal/domain/repository"
)

const uniqueViolation = "23505"

const selectAccount = `
	SELECT id, name, email, password, birth_date, phone, active, created_at, updated_at
	FROM accounts
`

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) GetAll(ctx context.Context) ([]entity.Account, error) {
	rows, err := r.pool.Query(ctx, selectAccount+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *AccountRepository) GetByID(ctx context.Context, id int64) (*entity.Account, error) {
	return r.getOne(ctx, selectAccount+` WHERE id = $1`, id)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.getOne(ctx, selectAccount+` WHERE email = $1`, email)
}

func (r *AccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *AccountRepository) Begin(ctx context.Context) (repository.UnitOfWork, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &unitOfWork{tx: tx}, nil
}

// Ping checks that the pool can reach the database.
func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg any) (*entity.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func scanAccount(row pgx.Row) (*entity.Account, error) {
	var (
		a     entity.Account
		birth time.Time
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Password, &birth, &a.Phone,
		&a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	a.BirthDate = entity.DateOf(birth)
	return &a, nil
}

// unitOfWork stages writes inside a single transaction.
type unitOfWork struct {
	tx pgx.Tx
}

func (u *unitOfWork) Add(ctx context.Context, a *entity.Account) error {
	row := u.tx.QueryRow(ctx, `
		INSERT INTO accounts (name, email, password, birth_date, phone, active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, a.Name, a.Email, a.Password, a.BirthDate.Time, a.Phone, a.Active, a.CreatedAt)

	return mapError(row.Scan(&a.ID))
}

func (u *unitOfWork) Update(ctx context.Context, a *entity.Account) error {
	res, err := u.tx.Exec(ctx, `
		UPDATE accounts
		SET name = $1, email = $2, birth_date = $3, phone = $4, active = $5, updated_at = $6
		WHERE id = $7
	`, a.Name, a.Email, a.BirthDate.Time, a.Phone, a.Active, a.UpdatedAt, a.ID)
	if err != nil {
		return mapError(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	return mapError(u.tx.Commit(ctx))
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	err := u.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// mapError turns a violation of the email unique constraint into ErrDuplicateEmail.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicateEmail
	}
	return err
}

var _ repository.AccountRepository = (*AccountRepository)(nil)
