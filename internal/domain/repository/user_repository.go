package repository

import (
	"context"
	"time"

	"github.com/oksasatya/quizhub/internal/domain/entity"
)

// UserRepository is the credential store: a durable mapping from the
// normalized email to the account row.
type UserRepository interface {
	// Create inserts a new account. The insert is atomic with respect to the
	// unique email constraint: a concurrent duplicate signup surfaces as
	// ErrDuplicateEmail rather than a second row.
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	// SetOTP overwrites the pending OTP slot with a fresh code, expiry and a
	// reset attempt counter.
	SetOTP(ctx context.Context, id string, code string, expiresAt time.Time) error
	// ClearOTP nulls the pending OTP slot.
	ClearOTP(ctx context.Context, id string) error
	// IncrementOTPAttempts bumps the failed-attempt counter and returns the
	// new value.
	IncrementOTPAttempts(ctx context.Context, id string) (int, error)
	SetVerified(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
