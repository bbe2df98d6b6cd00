package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := Parse(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	require.NotNil(t, claims.IssuedAt)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestTokensAreUnique(t *testing.T) {
	a, err := GenerateToken("user-1", "secret", time.Hour)
	require.NoError(t, err)
	b, err := GenerateToken("user-1", "secret", time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", time.Hour)
	require.NoError(t, err)
	_, err = Parse(token, "other")
	assert.ErrorIs(t, err, jwtlib.ErrTokenSignatureInvalid)
}

func TestParseRejectsExpired(t *testing.T) {
	token, err := generateAt("user-1", "secret", time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = Parse(token, "secret")
	assert.ErrorIs(t, err, jwtlib.ErrTokenExpired)
}

func TestParseRejectsTampered(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", time.Hour)
	require.NoError(t, err)
	tampered := token[:len(token)-2] + "xx"
	if tampered == token {
		tampered = token[:len(token)-2] + "yy"
	}
	_, err = Parse(tampered, "secret")
	assert.Error(t, err)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, claims).SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = Parse(unsigned, "secret")
	assert.Error(t, err)
}

func TestParseRequiresExpiry(t *testing.T) {
	claims := Claims{UserID: "user-1", RegisteredClaims: jwtlib.RegisteredClaims{Issuer: issuer}}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = Parse(token, "secret")
	assert.ErrorIs(t, err, jwtlib.ErrTokenRequiredClaimMissing)
}

func TestGenerateRequiresUser(t *testing.T) {
	_, err := GenerateToken("", "secret", time.Hour)
	assert.Error(t, err)
}
