package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	ct, nonce, err := c.Seal("today was hard but I went for a walk")
	require.NoError(t, err)
	assert.NotEmpty(t, ct)
	assert.NotEmpty(t, nonce)

	got, err := c.Open(ct, nonce)
	require.NoError(t, err)
	assert.Equal(t, "today was hard but I went for a walk", got)
}

func TestCipher_EmptyTextHasNoCiphertext(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	ct, nonce, err := c.Seal("")
	require.NoError(t, err)
	assert.Nil(t, ct)
	assert.Nil(t, nonce)

	got, err := c.Open(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestCipher_TamperedCiphertextFails(t *testing.T) {
	c, err := NewCipher(testKey)
	require.NoError(t, err)

	ct, nonce, err := c.Seal("secret")
	require.NoError(t, err)
	ct[0] ^= 0xff

	_, err = c.Open(ct, nonce)
	assert.Error(t, err)
}

func TestNewCipher_RejectsBadKeys(t *testing.T) {
	_, err := NewCipher("not-hex")
	assert.Error(t, err)

	_, err = NewCipher(strings.Repeat("ab", 16)) // 16 bytes, too short
	assert.Error(t, err)
}
