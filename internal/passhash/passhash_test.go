package passhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	t.Run("Round trip verifies", func(t *testing.T) {
		hash, err := Hash("secret")
		require.NoError(t, err)
		assert.NotEmpty(t, hash)
		assert.True(t, Verify("secret", hash))
	})

	t.Run("Wrong password does not verify", func(t *testing.T) {
		hash, err := Hash("secret")
		require.NoError(t, err)
		assert.False(t, Verify("other", hash))
	})

	t.Run("Same plaintext hashes differently but both verify", func(t *testing.T) {
		first, err := Hash("secret")
		require.NoError(t, err)
		second, err := Hash("secret")
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
		assert.True(t, Verify("secret", first))
		assert.True(t, Verify("secret", second))
	})

	t.Run("Malformed hash is a mismatch, not an error", func(t *testing.T) {
		assert.False(t, Verify("secret", "not-a-bcrypt-hash"))
		assert.False(t, Verify("secret", ""))
	})
}
