package persistence

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// encryptedPrefix marks ciphertext columns. Values without it are read as
// plain text, so enabling encryption does not break existing rows.
const encryptedPrefix = "enc:v1:"

var (
	ErrInvalidEncryptionKey = errors.New("persistence: encryption key must be 32 bytes, hex or base64 encoded")
	ErrDecryptFailed        = errors.New("persistence: failed to decrypt secret")
)

// SecretCipher encrypts tenant secrets (SOURCE access token, TARGET consumer
// secret) at rest with XChaCha20-Poly1305. A nil *SecretCipher stores plain text.
type SecretCipher struct {
	aead cipher.AEAD
}

// NewSecretCipher parses a 32-byte key given as hex or base64. An empty key
// returns a nil cipher.
func NewSecretCipher(key string) (*SecretCipher, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	raw, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEncryptionKey, err)
	}
	return &SecretCipher{aead: aead}, nil
}

func decodeKey(key string) ([]byte, error) {
	if raw, err := hex.DecodeString(key); err == nil && len(raw) == chacha20poly1305.KeySize {
		return raw, nil
	}
	if raw, err := base64.StdEncoding.DecodeString(key); err == nil && len(raw) == chacha20poly1305.KeySize {
		return raw, nil
	}
	return nil, ErrInvalidEncryptionKey
}

// Encrypt returns the sealed value. Empty strings stay empty.
func (c *SecretCipher) Encrypt(plain string) (string, error) {
	if c == nil || plain == "" {
		return plain, nil
	}
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return encryptedPrefix + base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt. Plain text passes through.
func (c *SecretCipher) Decrypt(value string) (string, error) {
	if !strings.HasPrefix(value, encryptedPrefix) {
		return value, nil
	}
	if c == nil {
		return "", fmt.Errorf("%w: no encryption key configured", ErrDecryptFailed)
	}
	sealed, err := base64.RawStdEncoding.DecodeString(strings.TrimPrefix(value, encryptedPrefix))
	if err != nil || len(sealed) < c.aead.NonceSize() {
		return "", ErrDecryptFailed
	}
	nonce, ciphertext := sealed[:c.aead.NonceSize()], sealed[c.aead.NonceSize():]
	plain, err := c.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plain), nil
}
