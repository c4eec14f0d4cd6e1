package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairRoundTrip(t *testing.T) {
	issuer := NewIssuer("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	userID := uuid.New()

	pair, err := issuer.Pair(userID)
	require.NoError(t, err)

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	claims, err = issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestKindsAreNotInterchangeable(t *testing.T) {
	issuer := NewIssuer("same", "same", time.Hour, time.Hour)
	userID := uuid.New()

	pair, err := issuer.Pair(userID)
	require.NoError(t, err)
	reset, err := issuer.Purpose(userID, PurposePasswordReset, time.Minute)
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrWrongPurpose)
	_, err = issuer.VerifyAccess(reset)
	assert.ErrorIs(t, err, ErrWrongPurpose)
	_, err = issuer.VerifyPurpose(pair.AccessToken, PurposePasswordReset)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	claims, err := issuer.VerifyPurpose(reset, PurposePasswordReset)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestVerifyFailures(t *testing.T) {
	issuer := NewIssuer("secret", "refresh", time.Minute, time.Minute)
	pair, err := issuer.Pair(uuid.New())
	require.NoError(t, err)

	other := NewIssuer("different", "refresh", time.Minute, time.Minute)
	_, err = other.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = issuer.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}
