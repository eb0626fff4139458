package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPasswordAsBcrypt("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, CheckPasswordHash(hash, "password123"))
	assert.False(t, CheckPasswordHash(hash, "password124"))
	assert.False(t, CheckPasswordHash("not-a-hash", "password123"))
}

func TestLongPasswordsAreAccepted(t *testing.T) {
	long := make([]byte, 120)
	for i := range long {
		long[i] = 'p'
	}
	hash, err := HashPasswordAsBcrypt(string(long))
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash(hash, string(long)))
}
