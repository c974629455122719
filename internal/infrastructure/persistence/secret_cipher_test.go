package persistence

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestNewSecretCipher(t *testing.T) {
	t.Run("empty key disables encryption", func(t *testing.T) {
		c, err := NewSecretCipher("  ")
		require.NoError(t, err)
		assert.Nil(t, c)

		out, err := c.Encrypt("cs_secret")
		require.NoError(t, err)
		assert.Equal(t, "cs_secret", out)
	})

	t.Run("accepts base64 keys", func(t *testing.T) {
		key := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("k", 32)))
		c, err := NewSecretCipher(key)
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	t.Run("rejects short keys", func(t *testing.T) {
		_, err := NewSecretCipher("deadbeef")
		assert.ErrorIs(t, err, ErrInvalidEncryptionKey)
	})
}

func TestSecretCipher_RoundTrip(t *testing.T) {
	c, err := NewSecretCipher(testEncryptionKey)
	require.NoError(t, err)

	sealed, err := c.Encrypt("cs_4f2a9b")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(sealed, encryptedPrefix))
	assert.NotContains(t, sealed, "cs_4f2a9b")

	again, err := c.Encrypt("cs_4f2a9b")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per call")

	plain, err := c.Decrypt(sealed)
	require.NoError(t, err)
	assert.Equal(t, "cs_4f2a9b", plain)

	empty, err := c.Encrypt("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSecretCipher_Decrypt(t *testing.T) {
	c, err := NewSecretCipher(testEncryptionKey)
	require.NoError(t, err)
	sealed, err := c.Encrypt("token")
	require.NoError(t, err)

	t.Run("plain text passes through", func(t *testing.T) {
		out, err := c.Decrypt("legacy-token")
		require.NoError(t, err)
		assert.Equal(t, "legacy-token", out)
	})

	t.Run("tampered ciphertext fails", func(t *testing.T) {
		tampered := sealed[:len(sealed)-2] + "AA"
		if tampered == sealed {
			tampered = sealed[:len(sealed)-2] + "BB"
		}
		_, err := c.Decrypt(tampered)
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})

	t.Run("ciphertext without key fails", func(t *testing.T) {
		var none *SecretCipher
		_, err := none.Decrypt(sealed)
		assert.ErrorIs(t, err, ErrDecryptFailed)
	})
}
