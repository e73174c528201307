package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTemporaryToken(t *testing.T) {
	unhashed, hashed, expiry, err := GenerateTemporaryToken()
	require.NoError(t, err)

	// 20 random bytes hex encoded
	assert.Len(t, unhashed, 40)
	assert.NotEqual(t, unhashed, hashed)

	// Only the digest is meant to be stored
	assert.Equal(t, hashed, HashToken(unhashed))

	assert.WithinDuration(t, time.Now().Add(TemporaryTokenExpiry), expiry, 5*time.Second)
}

func TestGenerateTemporaryTokenUnique(t *testing.T) {
	first, _, _, err := GenerateTemporaryToken()
	require.NoError(t, err)
	second, _, _, err := GenerateTemporaryToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashTokenDeterministic(t *testing.T) {
	assert.Equal(t, HashToken("sometoken"), HashToken("sometoken"))
	assert.NotEqual(t, HashToken("sometoken"), HashToken("othertoken"))
}
