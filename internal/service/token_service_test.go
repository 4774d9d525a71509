package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/college-catalog/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "college-catalog", Expiration: time.Hour})

	token, expiresAt, err := svc.Issue(" user-1 ")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "college-catalog", claims.Issuer)
}

func TestTokenServiceRejectsForeignSecretAndExpiry(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "other", Expiration: time.Hour})
	token, _, err := issuer.Issue("user-1")
	require.NoError(t, err)

	svc := NewTokenService(TokenConfig{Secret: "secret", Expiration: time.Hour})
	_, err = svc.ValidateToken(token)
	assert.True(t, appErrors.IsAuth(err))

	expired := NewTokenService(TokenConfig{Secret: "secret", Expiration: time.Minute})
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.Issue("user-1")
	require.NoError(t, err)
	_, err = svc.ValidateToken(old)
	assert.True(t, appErrors.IsAuth(err))
}

func TestTokenServiceRequiresUser(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	_, _, err := svc.Issue("  ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
