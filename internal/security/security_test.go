package security

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"pomodoro/internal/apperror"
	"pomodoro/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *tokenManager {
	return NewTokenManager(config.JWT{
		Secret:     "test-secret",
		Algorithm:  "HS256",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	}).(*tokenManager)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", hash)
	assert.True(t, CheckPasswordHash("secret123", hash))
	assert.False(t, CheckPasswordHash("secret124", hash))
}

func TestHashPasswordTooLongIsValidation(t *testing.T) {
	_, err := HashPassword(strings.Repeat("é", 40))
	require.Error(t, err)

	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, e.Status)
	assert.Equal(t, apperror.CodeValidation, e.Code)
}

func TestIssueAndParsePair(t *testing.T) {
	m := testManager()

	pair, err := m.IssuePair("user-1")
	require.NoError(t, err)
	assert.Equal(t, 7*24*time.Hour, pair.RefreshTTL)

	id, err := m.ParseAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	id, err = m.ParseRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	m := testManager()

	pair, err := m.IssuePair("user-1")
	require.NoError(t, err)

	_, err = m.ParseAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ParseRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredToken(t *testing.T) {
	m := testManager()
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	pair, err := m.IssuePair("user-1")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRejectsForeignSignatureAndAlgorithm(t *testing.T) {
	m := testManager()

	other := NewTokenManager(config.JWT{Secret: "other", Algorithm: "HS256", AccessTTL: time.Minute, RefreshTTL: time.Minute})
	pair, err := other.IssuePair("user-1")
	require.NoError(t, err)
	_, err = m.ParseAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims := Claims{Type: TypeAccess, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.ParseAccess(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseAccess(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingExpiryRejected(t *testing.T) {
	m := testManager()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Type:             TypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ParseAccess("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
