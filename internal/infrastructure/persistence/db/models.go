package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/MrDNightCore/warden/internal/domain"
)

// Account is the row shape of the accounts table.
type Account struct {
	ID                  uuid.UUID
	Username            string
	Email               string
	PasswordHash        string
	FailedLoginAttempts int32
	LastFailedAt        pgtype.Timestamptz
	LockedUntil         pgtype.Timestamptz
	LastLogin           pgtype.Timestamptz
	IsActive            bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (a Account) ToDomain() *domain.Account {
	out := &domain.Account{
		ID:                  domain.NewAccountID(a.ID),
		Username:            a.Username,
		Email:               a.Email,
		PasswordHash:        a.PasswordHash,
		FailedLoginAttempts: int(a.FailedLoginAttempts),
		IsActive:            a.IsActive,
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
	if a.LastFailedAt.Valid {
		t := a.LastFailedAt.Time
		out.LastFailedAt = &t
	}
	if a.LockedUntil.Valid {
		t := a.LockedUntil.Time
		out.LockedUntil = &t
	}
	if a.LastLogin.Valid {
		t := a.LastLogin.Time
		out.LastLogin = &t
	}
	return out
}
