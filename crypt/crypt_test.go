package crypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRC4EncryptDecryptRoundTrip(t *testing.T) {
	fileID := []byte("0123456789abcdef")
	h, err := NewForEncrypting("", "owner-secret", 3, 16, -4, true, fileID)
	require.NoError(t, err)

	plain := []byte("hello, encrypted PDF world")
	cipher, err := h.Encrypt(7, 0, plain)
	require.NoError(t, err)
	assert.NotEqual(t, plain, cipher)

	decrypted, err := h.Decrypt(7, 0, cipher)
	require.NoError(t, err)
	assert.Equal(t, plain, decrypted)
}

func TestAuthenticateRC4WithUserPassword(t *testing.T) {
	fileID := []byte("0123456789abcdef")
	enc, err := NewForEncrypting("user-pw", "owner-pw", 3, 16, -4, true, fileID)
	require.NoError(t, err)

	h, ok := AuthenticateRC4("user-pw", "", 3, 16, enc.O, enc.U, enc.P, enc.EncryptMetadata, fileID)
	require.True(t, ok)

	cipher, err := enc.Encrypt(3, 0, []byte("secret"))
	require.NoError(t, err)
	plain, err := h.Decrypt(3, 0, cipher)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), plain)
}

func TestAuthenticateRC4WrongPasswordFails(t *testing.T) {
	fileID := []byte("0123456789abcdef")
	enc, err := NewForEncrypting("user-pw", "owner-pw", 3, 16, -4, true, fileID)
	require.NoError(t, err)

	_, ok := AuthenticateRC4("not-the-password", "", 3, 16, enc.O, enc.U, enc.P, enc.EncryptMetadata, fileID)
	assert.False(t, ok)
}

func TestNewForEncryptingRejectsOutOfRangeRevision(t *testing.T) {
	_, err := NewForEncrypting("", "owner", 6, 32, -4, true, []byte("id"))
	assert.Error(t, err)
}

func TestAES256EncryptDecryptRoundTrip(t *testing.T) {
	h, _, _, _, err := NewAES256ForEncrypting("", "owner-secret", 6, -4, true)
	require.NoError(t, err)

	plain := []byte("another secret payload, long enough to span a block boundary")
	cipher, err := h.Encrypt(2, 0, plain)
	require.NoError(t, err)

	decrypted, err := h.Decrypt(2, 0, cipher)
	require.NoError(t, err)
	assert.Equal(t, plain, decrypted)
}
