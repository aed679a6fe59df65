package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestCipherRoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	enc, err := c.Encrypt("user@example.com")
	require.NoError(t, err)
	assert.NotContains(t, enc, "user@example.com")

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", dec)
}

func TestCipherFreshIVPerEncrypt(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	a, err := c.Encrypt("same input")
	require.NoError(t, err)
	b, err := c.Encrypt("same input")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCipherRejectsBadKey(t *testing.T) {
	_, err := NewCipher("deadbeef")
	assert.Error(t, err)

	_, err = NewCipher("not hex at all")
	assert.Error(t, err)
}

func TestCipherRejectsTamperedCiphertext(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	_, err = c.Decrypt("nocolon")
	assert.Error(t, err)

	_, err = c.Decrypt("00ff:zzzz")
	assert.Error(t, err)
}

func TestHashEmailCaseInsensitive(t *testing.T) {
	a := HashEmail("User@Example.COM")
	b := HashEmail("  user@example.com ")
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.False(t, strings.Contains(a, "@"))
}
