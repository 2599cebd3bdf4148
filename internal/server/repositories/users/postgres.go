package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/linkt-app/linkt/internal/common"
	"github.com/linkt-app/linkt/internal/dbx"
	"github.com/linkt-app/linkt/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX (satisfied by
// *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, phone, password_hash, user_role,
	email_verified, verification_code, verification_code_expiry,
	two_factor_code, two_factor_code_expiry,
	organization_name, is_approved, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var phone, orgName sql.NullString
	var approved sql.NullBool
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &phone, &u.PasswordHash, &u.Role,
		&u.EmailVerified, &u.VerificationCode, &u.VerificationCodeExpiry,
		&u.TwoFactorCode, &u.TwoFactorCodeExpiry,
		&orgName, &approved, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	u.Phone = phone.String
	u.OrganizationName = orgName.String
	u.IsApproved = approved.Bool
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (email, first_name, last_name, phone, password_hash, user_role,
			email_verified, verification_code, verification_code_expiry,
			organization_name, is_approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.Phone, user.PasswordHash, user.Role,
		user.EmailVerified, user.VerificationCode, user.VerificationCodeExpiry,
		nullIfEmpty(user.OrganizationName), user.IsApproved).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) SetVerificationCode(ctx context.Context, userID int64, code string, expiry time.Time) error {
	query := `
		UPDATE users
		SET verification_code = $2, verification_code_expiry = $3
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, code, expiry); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ConsumeVerificationCode is a single conditional UPDATE so that the
// code-matches/not-expired check and the clear happen atomically. Two
// concurrent attempts with the same code see exactly one row updated.
func (r *PostgresRepository) ConsumeVerificationCode(ctx context.Context, email, code string, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET email_verified = TRUE, verification_code = NULL, verification_code_expiry = NULL
		WHERE email = $1
		  AND NOT email_verified
		  AND verification_code = $2
		  AND verification_code_expiry >= $3
	`
	res, err := r.db.ExecContext(ctx, query, email, code, now)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) SetTwoFactorCode(ctx context.Context, userID int64, code string, expiry time.Time) error {
	query := `
		UPDATE users
		SET two_factor_code = $2, two_factor_code_expiry = $3
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, userID, code, expiry); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// ConsumeTwoFactorCode mirrors ConsumeVerificationCode for the login flow.
func (r *PostgresRepository) ConsumeTwoFactorCode(ctx context.Context, email, code string, now time.Time) (bool, error) {
	query := `
		UPDATE users
		SET two_factor_code = NULL, two_factor_code_expiry = NULL
		WHERE email = $1
		  AND two_factor_code = $2
		  AND two_factor_code_expiry >= $3
	`
	res, err := r.db.ExecContext(ctx, query, email, code, now)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return n == 1, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
