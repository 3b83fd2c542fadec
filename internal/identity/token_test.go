package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims *Claims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestFromToken_Empty(t *testing.T) {
	id, err := FromToken("", nil)
	require.NoError(t, err)
	assert.Equal(t, None(), id)
}

func TestFromToken_UserIDClaim(t *testing.T) {
	tok := signToken(t, &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}, "secret")

	id, err := FromToken(tok, nil)
	require.NoError(t, err)
	assert.Equal(t, Present("u1"), id)

	id, err = FromToken(tok, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, Present("u1"), id)
}

func TestFromToken_FallsBackToSub(t *testing.T) {
	tok := signToken(t, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "u7"},
	}, "secret")

	id, err := FromToken(tok, nil)
	require.NoError(t, err)
	assert.Equal(t, Present("u7"), id)
}

func TestFromToken_ExpiredIsNone(t *testing.T) {
	tok := signToken(t, &Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}, "secret")

	id, err := FromToken(tok, nil)
	require.NoError(t, err)
	assert.Equal(t, None(), id)

	id, err = FromToken(tok, []byte("secret"))
	require.NoError(t, err)
	assert.Equal(t, None(), id)
}

func TestFromToken_WrongSecret(t *testing.T) {
	tok := signToken(t, &Claims{UserID: "u1"}, "secret")

	_, err := FromToken(tok, []byte("other"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token")
}

func TestFromToken_Malformed(t *testing.T) {
	_, err := FromToken("not-a-jwt", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed token")
}

func TestFromToken_NoSubject(t *testing.T) {
	tok := signToken(t, &Claims{}, "secret")
	_, err := FromToken(tok, nil)
	assert.Error(t, err)
}
