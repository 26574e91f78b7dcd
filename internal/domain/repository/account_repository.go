package repository

import (
	"context"
	"errors"
	"time"

	"github.com/satriajagad/portfolio-backend/internal/domain/entity"
)

// ErrNotFound is returned when no account matches the given predicate.
var ErrNotFound = errors.New("account not found")

// AccountRepository defines the persistence operations the account service
// needs against the accounts collection.
type AccountRepository interface {
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	Update(ctx context.Context, a *entity.Account) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	// SetResetToken stores the reset token hash and its absolute expiry,
	// replacing any previous pending token.
	SetResetToken(ctx context.Context, id, tokenHash string, expires time.Time) error

	// ClearResetToken unsets both reset fields (rollback after a failed
	// email delivery).
	ClearResetToken(ctx context.Context, id string) error

	// ConsumeResetToken atomically matches a pending token hash whose expiry
	// is strictly after now, sets the new password hash and clears the reset
	// fields in the same conditional write. Returns the updated account, or
	// a not-found error when no row matches (bad token, expired, or already
	// consumed).
	ConsumeResetToken(ctx context.Context, tokenHash string, now time.Time, passwordHash string) (*entity.Account, error)
}
