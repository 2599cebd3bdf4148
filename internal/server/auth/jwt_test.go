package auth

import (
	"testing"
	"time"

	"github.com/linkt-app/linkt/internal/common"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewJWTManager([]byte("secret"), time.Hour)

	token, err := m.Issue("org@x.com", "organizer")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ParseClaims(token)
	require.NoError(t, err)
	require.Equal(t, "org@x.com", claims.Email)
	require.Equal(t, "organizer", claims.Role)
	require.Equal(t, "org@x.com", claims.Subject)
}

func TestParseClaims_Expired(t *testing.T) {
	m := NewJWTManager([]byte("secret"), -time.Minute)

	token, err := m.Issue("a@x.com", "student")
	require.NoError(t, err)

	_, err = m.ParseClaims(token)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestParseClaims_WrongSecret(t *testing.T) {
	issued, err := NewJWTManager([]byte("one"), time.Hour).Issue("a@x.com", "student")
	require.NoError(t, err)

	_, err = NewJWTManager([]byte("two"), time.Hour).ParseClaims(issued)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParseClaims_Garbage(t *testing.T) {
	m := NewJWTManager([]byte("secret"), time.Hour)
	_, err := m.ParseClaims("not-a-token")
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
