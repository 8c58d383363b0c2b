// Package journal encrypts free-text journal entries before they reach the
// store. Plaintext exists only inside a check-in cycle.
package journal

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Cipher seals and opens journal text with AES-256-GCM.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher builds a Cipher from a hex-encoded 32-byte key.
func NewCipher(keyHex string) (*Cipher, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("journal key is not valid hex: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("journal key must be 32 bytes, got %d", len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Cipher{aead: aead}, nil
}

// Seal encrypts text and returns (ciphertext, nonce). Empty text yields
// nil/nil so entries without a journal carry no ciphertext at all.
func (c *Cipher) Seal(text string) (ciphertext, nonce []byte, err error) {
	if text == "" {
		return nil, nil, nil
	}
	nonce = make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}
	ciphertext = c.aead.Seal(nil, nonce, []byte(text), nil)
	return ciphertext, nonce, nil
}

// Open decrypts a sealed journal. nil ciphertext round-trips to "".
func (c *Cipher) Open(ciphertext, nonce []byte) (string, error) {
	if len(ciphertext) == 0 {
		return "", nil
	}
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("journal decrypt: %w", err)
	}
	return string(plain), nil
}
