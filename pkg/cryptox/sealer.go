package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrCiphertext is returned when sealed data cannot be opened.
var ErrCiphertext = errors.New("cryptox: invalid ciphertext")

// Sealer encrypts small secrets at rest (MFA secrets, SSNs) with AES-256-GCM.
// Output format is base64([12-byte nonce][ciphertext][16-byte tag]).
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a 32-byte key from keyMaterial with SHA-256.
func NewSealer(keyMaterial []byte) (*Sealer, error) {
	if len(keyMaterial) == 0 {
		return nil, errors.New("cryptox: empty master key")
	}

	key := sha256.Sum256(keyMaterial)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("cryptox: create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cryptox: create GCM: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// LoadOrGenerateSealer builds a Sealer from the master key stored at path,
// generating the key file on first start.
func LoadOrGenerateSealer(path string) (*Sealer, error) {
	secret, err := loadOrGenerateSecret(path, TokenSize256)
	if err != nil {
		return nil, fmt.Errorf("cryptox: master key: %w", err)
	}
	return NewSealer([]byte(secret))
}

// Seal encrypts plaintext with a random nonce.
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("cryptox: generate nonce: %w", err)
	}

	out := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawStdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	data, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", ErrCiphertext
	}

	n := s.aead.NonceSize()
	if len(data) < n {
		return "", ErrCiphertext
	}

	plaintext, err := s.aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", ErrCiphertext
	}
	return string(plaintext), nil
}
