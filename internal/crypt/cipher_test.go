package crypt

import (
	"crypto/aes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		key     []byte
		wantErr bool
	}{
		{name: "valid key", key: []byte("field-cipher-key"), wantErr: false},
		{name: "short key is folded", key: []byte("x"), wantErr: false},
		{name: "empty key", key: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc, err := New(tt.key)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, fc)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, fc)
		})
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	fc, err := New([]byte("field-cipher-key"))
	require.NoError(t, err)

	for _, plain := range []string{
		"https://cdn.example.com/videos/inception.m3u8",
		"a",
		"with spaces and юникод",
	} {
		ct, iv, err := fc.Encrypt(plain)
		require.NoError(t, err)
		assert.Len(t, iv, aes.BlockSize)
		assert.NotEqual(t, []byte(plain), ct)

		got, err := fc.Decrypt(ct, iv)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	}
}

func TestEncryptFreshIVPerCall(t *testing.T) {
	fc, err := New([]byte("field-cipher-key"))
	require.NoError(t, err)

	_, iv1, err := fc.Encrypt("same value")
	require.NoError(t, err)
	_, iv2, err := fc.Encrypt("same value")
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
}

func TestDecryptWrongIVYieldsGarbage(t *testing.T) {
	fc, err := New([]byte("field-cipher-key"))
	require.NoError(t, err)

	ct, iv, err := fc.Encrypt("https://cdn.example.com/videos/inception.m3u8")
	require.NoError(t, err)

	wrong := make([]byte, len(iv))
	copy(wrong, iv)
	wrong[0] ^= 0xff

	got, err := fc.Decrypt(ct, wrong)
	require.NoError(t, err)
	assert.NotEqual(t, "https://cdn.example.com/videos/inception.m3u8", got)
}

func TestDecryptInvalidInput(t *testing.T) {
	fc, err := New([]byte("field-cipher-key"))
	require.NoError(t, err)

	ct, iv, err := fc.Encrypt("value")
	require.NoError(t, err)

	_, err = fc.Decrypt(nil, iv)
	assert.Error(t, err)

	_, err = fc.Decrypt(ct, nil)
	assert.Error(t, err)

	_, _, err = fc.Encrypt("")
	assert.Error(t, err)
}

func TestDifferentKeysDoNotInterop(t *testing.T) {
	a, err := New([]byte("key-a"))
	require.NoError(t, err)
	b, err := New([]byte("key-b"))
	require.NoError(t, err)

	ct, iv, err := a.Encrypt("secret url")
	require.NoError(t, err)

	got, err := b.Decrypt(ct, iv)
	require.NoError(t, err)
	assert.NotEqual(t, "secret url", got)
}
