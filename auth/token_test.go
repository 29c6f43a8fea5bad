package auth

import (
	"strings"
	"testing"
	"time"

	"notes-api/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSecret = []byte("test_secret_for_testing_only")

func testUser() *models.User {
	return &models.User{ID: primitive.NewObjectID(), Username: "root", Name: "Superuser"}
}

func TestIssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)
	user := testUser()

	token, err := svc.Issue(user)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "root", claims.Username)

	subject, err := claims.Subject()
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestVerifyFailures(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	t.Run("empty token", func(t *testing.T) {
		_, err := svc.Verify("")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		claims := Claims{
			UserID: primitive.NewObjectID().Hex(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong signature", func(t *testing.T) {
		token, err := svc.Issue(testUser())
		require.NoError(t, err)

		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		other, err := NewTokenService([]byte("another secret"), time.Hour).Issue(testUser())
		require.NoError(t, err)
		tampered := parts[0] + "." + parts[1] + "." + strings.Split(other, ".")[2]

		_, err = svc.Verify(tampered)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		claims := Claims{UserID: primitive.NewObjectID().Hex()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testSecret)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token without user id", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Username: "root"}).SignedString(testSecret)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, ErrMissingToken)
	})
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("Bearer "))
	assert.Equal(t, "", BearerToken(""))
}
