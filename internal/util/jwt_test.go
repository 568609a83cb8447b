package util

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return s
}

func TestDecodeToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{
		"user_id": 42,
		"email":   "ada@example.com",
		"name":    "Ada",
		"exp":     exp.Unix(),
	})

	claims, err := DecodeToken(tok)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(exp.Add(time.Minute)))
}

func TestDecodeTokenFallsBackToSubject(t *testing.T) {
	claims, err := DecodeToken(signed(t, jwt.MapClaims{"sub": "7"}))
	require.NoError(t, err)
	assert.Equal(t, 7, claims.UserID)
	assert.False(t, claims.Expired(time.Now()))
}

func TestDecodeTokenOpaque(t *testing.T) {
	_, err := DecodeToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrOpaqueToken)
}
