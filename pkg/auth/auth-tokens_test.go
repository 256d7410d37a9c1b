package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "an-adequately-long-testing-secret-phrase"

func TestNewTokenManager_RejectsShortSecrets(t *testing.T) {
	_, err := NewTokenManager("short", time.Hour)
	assert.Error(t, err)
}

func TestTokens_RoundTrip(t *testing.T) {
	manager, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	signed, err := manager.Grant(42)
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	userId, err := manager.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userId)
}

func TestTokens_ExpiredRejected(t *testing.T) {
	manager, err := NewTokenManager(testSecret, -time.Minute)
	require.NoError(t, err)

	signed, err := manager.Grant(42)
	require.NoError(t, err)

	_, err = manager.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_TamperingRejected(t *testing.T) {
	manager, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)

	signed, err := manager.Grant(42)
	require.NoError(t, err)

	// flip the final signature character
	var tampered = signed[:len(signed)-1]
	if signed[len(signed)-1] == 'A' {
		tampered += "B"
	} else {
		tampered += "A"
	}

	_, err = manager.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_ForeignSecretRejected(t *testing.T) {
	granting, err := NewTokenManager(testSecret, time.Hour)
	require.NoError(t, err)
	validating, err := NewTokenManager("a-wholly-different-signing-secret-phrase", time.Hour)
	require.NoError(t, err)

	signed, err := granting.Grant(42)
	require.NoError(t, err)

	_, err = validating.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashes_RoundTrip(t *testing.T) {
	hash, err := GeneratePasswordHash("correct horse battery staple")
	require.NoError(t, err)

	matched, err := ComparePasswordHash("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, matched)

	matched, err = ComparePasswordHash("incorrect horse", hash)
	require.NoError(t, err)
	assert.False(t, matched)
}
