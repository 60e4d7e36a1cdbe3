// internal/membership/password_test.go
package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, salt, err := hashPassword("SecurePass123!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	require.NotEmpty(t, salt)

	ok, err := verifyPassword("SecurePass123!", salt, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifyPassword("WrongPass", salt, hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHashUsesFreshSalt(t *testing.T) {
	hash1, salt1, err := hashPassword("same")
	require.NoError(t, err)
	hash2, salt2, err := hashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}
