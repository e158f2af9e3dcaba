package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func TestGenerateToken(t *testing.T) {
	t.Run("generate valid token", func(t *testing.T) {
		token, err := GenerateToken(123, 7, "admin", testSecret, 24)

		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, int64(123), claims.UserID)
		assert.Equal(t, int64(7), claims.CompanyID)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("different users get different tokens", func(t *testing.T) {
		token1, err := GenerateToken(1, 7, "manager", testSecret, 24)
		require.NoError(t, err)

		token2, err := GenerateToken(2, 7, "manager", testSecret, 24)
		require.NoError(t, err)

		assert.NotEqual(t, token1, token2)
	})

	t.Run("role round-trips", func(t *testing.T) {
		for _, role := range []string{"admin", "manager", "employee"} {
			token, err := GenerateToken(1, 1, role, testSecret, 24)
			require.NoError(t, err)

			claims, err := ParseToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, role, claims.Role)
		}
	})
}

func TestParseToken(t *testing.T) {
	t.Run("wrong secret rejected", func(t *testing.T) {
		token, err := GenerateToken(1, 1, "admin", testSecret, 24)
		require.NoError(t, err)

		_, err = ParseToken(token, "wrong-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := ParseToken("not-a-token", testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		claims := Claims{
			UserID:    1,
			CompanyID: 1,
			Role:      "admin",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		signed, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = ParseToken(signed, testSecret)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong signing method rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = ParseToken(signed, testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
