package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/linkt-app/linkt/internal/common"
	"github.com/linkt-app/linkt/internal/logging"
	"github.com/linkt-app/linkt/internal/server/models"
	"github.com/linkt-app/linkt/internal/server/monitoring"
	"github.com/linkt-app/linkt/internal/server/repositories/repomanager"
	"github.com/linkt-app/linkt/internal/server/verification"
)

// minPasswordLength is the registration password policy.
const minPasswordLength = 7

// AuthService orchestrates registration → email verification → login →
// (conditional) 2FA → token issuance.
//
// State is observable only through the persisted user record, one Notifier
// call per code issuance, and one TokenIssuer call per successful terminal
// transition.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	issuer      *verification.Issuer
	notifier    Notifier
	tokens      TokenIssuer
	logger      logging.Logger
	now         func() time.Time
}

// NewAuthService constructs an AuthService from its collaborators.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, issuer *verification.Issuer,
	notifier Notifier, tokens TokenIssuer, logger logging.Logger) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		issuer:      issuer,
		notifier:    notifier,
		tokens:      tokens,
		logger:      logger,
		now:         time.Now,
	}
}

// Register creates an unverified account, stores a fresh verification code,
// and notifies the user. No session token is issued until the email is
// verified.
func (s *AuthService) Register(ctx context.Context, p models.RegisterParams) (*models.AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	exists, err := repo.ExistsByEmail(ctx, p.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if exists {
		return nil, common.ErrDuplicateEmail
	}

	if len(p.Password) < minPasswordLength {
		return nil, common.ErrWeakPassword
	}

	switch p.Role {
	case models.RoleStudent:
	case models.RoleOrganizer:
		if strings.TrimSpace(p.OrganizationName) == "" {
			return nil, common.ErrMissingOrganizationName
		}
	default:
		// Administrators are provisioned out of band, never via Register.
		return nil, common.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	code := s.issuer.Generate()
	expiry := s.issuer.ExpiryFrom(s.now())

	user := &models.User{
		Email:                  p.Email,
		FirstName:              p.FirstName,
		LastName:               p.LastName,
		Phone:                  p.Phone,
		PasswordHash:           string(hash),
		Role:                   p.Role,
		EmailVerified:          false,
		VerificationCode:       &code,
		VerificationCodeExpiry: &expiry,
		OrganizationName:       p.OrganizationName,
	}

	user, err = repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	monitoring.TrackCodeIssued("verification")
	if err := s.notifier.SendVerificationCode(ctx, user.Email, user.FirstName, code); err != nil {
		s.logger.Warn(ctx, "verification code delivery failed", "email", user.Email, "error", err.Error())
	}

	return &models.AuthResult{
		UserID: user.ID,
		Email:  user.Email,
		Status: models.StatusEmailVerificationRequired,
	}, nil
}

// VerifyEmail redeems a verification code, activates the account, and
// issues the first session token. The stored code is cleared atomically
// with the validity check so a code is never accepted twice.
func (s *AuthService) VerifyEmail(ctx context.Context, email, code string) (*models.AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if user.EmailVerified {
		return nil, common.ErrAlreadyVerified
	}

	now := s.now()
	if !verification.IsValid(user.VerificationCode, user.VerificationCodeExpiry, code, now) {
		return nil, common.ErrInvalidOrExpiredCode
	}

	// Re-check and clear in one conditional update; a concurrent request
	// presenting the same code finds zero rows here.
	ok, err := repo.ConsumeVerificationCode(ctx, email, code, now)
	if err != nil {
		return nil, fmt.Errorf("error consuming verification code: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidOrExpiredCode
	}

	token, err := s.tokens.Issue(user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	s.logger.Info(ctx, "email verified", "email", user.Email)
	return s.authenticated(user, token), nil
}

// Login verifies primary credentials. Administrators receive a token
// immediately; everyone else must have a verified email and is handed a
// fresh 2FA code instead of a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			monitoring.TrackLogin("bad_credentials")
			return nil, common.ErrBadCredentials
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		monitoring.TrackLogin("bad_credentials")
		return nil, common.ErrBadCredentials
	}

	if user.Role == models.RoleAdministrator {
		token, err := s.tokens.Issue(user.Email, string(user.Role))
		if err != nil {
			return nil, fmt.Errorf("error issuing token: %w", err)
		}
		monitoring.TrackLogin("success")
		return s.authenticated(user, token), nil
	}

	if !user.EmailVerified {
		monitoring.TrackLogin("unverified")
		return nil, common.ErrEmailNotVerified
	}

	code := s.issuer.Generate()
	expiry := s.issuer.ExpiryFrom(s.now())
	if err := repo.SetTwoFactorCode(ctx, user.ID, code, expiry); err != nil {
		return nil, fmt.Errorf("error storing 2fa code: %w", err)
	}

	monitoring.TrackCodeIssued("2fa")
	monitoring.TrackLogin("2fa_required")
	if err := s.notifier.Send2FACode(ctx, user.Email, user.FirstName, code); err != nil {
		s.logger.Warn(ctx, "2fa code delivery failed", "email", user.Email, "error", err.Error())
	}

	return &models.AuthResult{
		UserID: user.ID,
		Email:  user.Email,
		Status: models.Status2FARequired,
	}, nil
}

// Verify2FA redeems a login code and issues a session token. As with email
// verification, the code check and clear are a single conditional update.
func (s *AuthService) Verify2FA(ctx context.Context, email, code string) (*models.AuthResult, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	now := s.now()
	if !verification.IsValid(user.TwoFactorCode, user.TwoFactorCodeExpiry, code, now) {
		return nil, common.ErrInvalidOrExpiredCode
	}

	ok, err := repo.ConsumeTwoFactorCode(ctx, email, code, now)
	if err != nil {
		return nil, fmt.Errorf("error consuming 2fa code: %w", err)
	}
	if !ok {
		return nil, common.ErrInvalidOrExpiredCode
	}

	token, err := s.tokens.Issue(user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("error issuing token: %w", err)
	}

	monitoring.TrackLogin("success")
	s.logger.Info(ctx, "2fa verified", "email", user.Email)
	return s.authenticated(user, token), nil
}

func (s *AuthService) authenticated(user *models.User, token string) *models.AuthResult {
	return &models.AuthResult{
		Token:     token,
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		Role:      user.Role,
		Status:    models.StatusAuthenticated,
	}
}
