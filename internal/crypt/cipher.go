// Package crypt encrypts individual string fields (asset URLs, photos)
// before they reach the database. This is obfuscation-at-rest, not a
// security boundary: the key is static process configuration, the point is
// only that a database dump alone does not leak playable links.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/streamapp/stream-platform/internal/apperr"
)

// FieldCipher encrypts and decrypts individual fields with AES-CTR under a
// single process-lifetime key. Every Encrypt call draws a fresh random IV
// which the caller persists next to the ciphertext.
type FieldCipher struct {
	key []byte
}

// New builds a cipher from the configured key. Keys of any length are
// folded through SHA-256 so the block cipher always gets 32 bytes.
func New(key []byte) (*FieldCipher, error) {
	if len(key) == 0 {
		return nil, apperr.Validation("key", "encryption key must not be empty")
	}
	sum := sha256.Sum256(key)
	return &FieldCipher{key: sum[:]}, nil
}

// Encrypt encrypts plaintext and returns the ciphertext together with the
// random IV used. The IV is not derived from the key and must be stored
// alongside the ciphertext.
func (fc *FieldCipher) Encrypt(plaintext string) (ciphertext, iv []byte, err error) {
	if plaintext == "" {
		return nil, nil, apperr.Validation("plaintext", "value to encrypt must not be empty")
	}
	block, err := aes.NewCipher(fc.key)
	if err != nil {
		return nil, nil, err
	}
	iv = make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, nil, err
	}
	ciphertext = make([]byte, len(plaintext))
	cipher.NewCTR(block, iv).XORKeyStream(ciphertext, []byte(plaintext))
	return ciphertext, iv, nil
}

// Decrypt reverses Encrypt. Empty ciphertext or IV is rejected as invalid
// input; a wrong IV does not fail but yields garbage, never the original
// string.
func (fc *FieldCipher) Decrypt(ciphertext, iv []byte) (string, error) {
	if len(ciphertext) == 0 {
		return "", apperr.Validation("ciphertext", "ciphertext must not be empty")
	}
	if len(iv) != aes.BlockSize {
		return "", apperr.Validation("iv", "iv must be one AES block")
	}
	block, err := aes.NewCipher(fc.key)
	if err != nil {
		return "", err
	}
	plaintext := make([]byte, len(ciphertext))
	cipher.NewCTR(block, iv).XORKeyStream(plaintext, ciphertext)
	return string(plaintext), nil
}
