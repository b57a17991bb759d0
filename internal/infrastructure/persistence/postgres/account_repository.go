package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrDNightCore/warden/internal/application/ports"
	"github.com/MrDNightCore/warden/internal/domain"
	domerrors "github.com/MrDNightCore/warden/internal/domain/errors"
	"github.com/MrDNightCore/warden/internal/infrastructure/persistence/db"
)

const accountColumns = `id, username, email, password_hash, failed_login_attempts, last_failed_at, locked_until, last_login, is_active, created_at, updated_at`

const (
	createAccountSQL = `INSERT INTO accounts (` + accountColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	getAccountByUsernameSQL = `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	getAccountByEmailSQL    = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	getAccountByIDSQL       = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	listAccountsSQL         = `SELECT ` + accountColumns + ` FROM accounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	// Increment and lock decision happen in one statement so concurrent
	// failures cannot lose updates.
	recordFailedLoginSQL = `UPDATE accounts SET
	failed_login_attempts = failed_login_attempts + 1,
	last_failed_at = NOW(),
	locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN NOW() + make_interval(secs => $3) ELSE locked_until END,
	updated_at = NOW()
WHERE username = $1
RETURNING failed_login_attempts, locked_until`

	recordSuccessfulLoginSQL = `UPDATE accounts SET
	failed_login_attempts = 0,
	last_failed_at = NULL,
	locked_until = NULL,
	last_login = NOW(),
	updated_at = NOW()
WHERE username = $1`

	unlockAccountSQL = `UPDATE accounts SET
	failed_login_attempts = 0,
	last_failed_at = NULL,
	locked_until = NULL,
	updated_at = NOW()
WHERE id = $1
RETURNING ` + accountColumns

	setAccountActiveSQL = `UPDATE accounts SET is_active = $2, updated_at = NOW() WHERE id = $1 RETURNING ` + accountColumns
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Create(ctx context.Context, acct *domain.Account) error {
	_, err := r.pool.Exec(ctx, createAccountSQL,
		acct.ID.UUID, acct.Username, acct.Email, acct.PasswordHash,
		int32(acct.FailedLoginAttempts), acct.LastFailedAt, acct.LockedUntil, acct.LastLogin,
		acct.IsActive, acct.CreatedAt, acct.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// A racing registration slipped in between the duplicate check
			// and this insert.
			if pgErr.ConstraintName == "accounts_email_key" {
				return domerrors.ErrEmailTaken
			}
			return domerrors.ErrUsernameTaken
		}
		return err
	}
	return nil
}

func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	return r.getOne(ctx, getAccountByUsernameSQL, username)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.getOne(ctx, getAccountByEmailSQL, email)
}

func (r *AccountRepository) GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	return r.getOne(ctx, getAccountByIDSQL, id.UUID)
}

func (r *AccountRepository) getOne(ctx context.Context, sql string, arg any) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, sql, arg)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return acct, nil
}

func (r *AccountRepository) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := r.pool.Query(ctx, listAccountsSQL, int32(limit), int32(offset))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, acct)
	}
	return out, rows.Err()
}

func (r *AccountRepository) RecordFailedLogin(ctx context.Context, username string, threshold int, lockFor time.Duration) (int, *time.Time, error) {
	var attempts int32
	var lockedUntil *time.Time
	err := r.pool.QueryRow(ctx, recordFailedLoginSQL, username, int32(threshold), lockFor.Seconds()).
		Scan(&attempts, &lockedUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil, domerrors.ErrAccountNotFound
		}
		return 0, nil, err
	}
	if lockedUntil != nil && !lockedUntil.After(time.Now()) {
		// Stale lock left over from an expired lockout; only a live one is
		// worth reporting.
		lockedUntil = nil
	}
	return int(attempts), lockedUntil, nil
}

func (r *AccountRepository) RecordSuccessfulLogin(ctx context.Context, username string) error {
	tag, err := r.pool.Exec(ctx, recordSuccessfulLoginSQL, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domerrors.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Unlock(ctx context.Context, id domain.AccountID) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, unlockAccountSQL, id.UUID)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domerrors.ErrAccountNotFound
		}
		return nil, err
	}
	return acct, nil
}

func (r *AccountRepository) SetActive(ctx context.Context, id domain.AccountID, active bool) (*domain.Account, error) {
	row := r.pool.QueryRow(ctx, setAccountActiveSQL, id.UUID, active)
	acct, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domerrors.ErrAccountNotFound
		}
		return nil, err
	}
	return acct, nil
}

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a db.Account
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash,
		&a.FailedLoginAttempts, &a.LastFailedAt, &a.LockedUntil, &a.LastLogin,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a.ToDomain(), nil
}

var _ ports.AccountRepository = (*AccountRepository)(nil)
