package users

import (
	"context"
	"time"

	"github.com/linkt-app/linkt/internal/server/models"
)

// Repository is the identity store consumed by the auth flow and the scan
// validator. Implementations must make the Consume* operations atomic
// check-and-clear updates, or concurrent requests could redeem the same
// code twice inside its validity window.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// SetVerificationCode stores a fresh email-verification code and expiry,
	// superseding any previous one.
	SetVerificationCode(ctx context.Context, userID int64, code string, expiry time.Time) error

	// ConsumeVerificationCode marks the user verified and clears the code,
	// but only if the stored code matches and has not expired as of now.
	// It reports whether the update happened.
	ConsumeVerificationCode(ctx context.Context, email, code string, now time.Time) (bool, error)

	// SetTwoFactorCode stores a fresh 2FA code and expiry, superseding any
	// previous one.
	SetTwoFactorCode(ctx context.Context, userID int64, code string, expiry time.Time) error

	// ConsumeTwoFactorCode clears the stored 2FA code, but only if it
	// matches and has not expired as of now. It reports whether the update
	// happened.
	ConsumeTwoFactorCode(ctx context.Context, email, code string, now time.Time) (bool, error)
}
