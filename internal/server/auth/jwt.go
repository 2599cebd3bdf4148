// Package auth issues and parses the opaque session tokens returned by the
// authentication flow. Tokens are HS256 JWTs carrying the account email and
// role.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/linkt-app/linkt/internal/common"
)

// Claims extends the registered JWT claims with the account email (as
// subject duplicate for convenience) and role.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// JWTManager signs and verifies session tokens with a shared HMAC secret.
type JWTManager struct {
	secret   []byte
	validity time.Duration
}

// NewJWTManager constructs a manager with the given secret and token lifetime.
func NewJWTManager(secret []byte, validity time.Duration) *JWTManager {
	return &JWTManager{secret: secret, validity: validity}
}

// Issue returns a signed token for the given email and role.
func (m *JWTManager) Issue(email, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.validity)),
		},
		Email: email,
		Role:  role,
	})
	return token.SignedString(m.secret)
}

// ParseClaims verifies the signature and expiry of tokenString and returns
// its claims. Expired tokens yield common.ErrTokenExpired; anything else
// invalid yields common.ErrInvalidToken.
func (m *JWTManager) ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}
