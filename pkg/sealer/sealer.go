package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const separator = "|"

var ErrInvalidToken = errors.New("invalid token")

// Sealer turns a tuple of strings into an opaque, tamper-proof token (AES-GCM)
// that can be handed to a chat user and parsed back later.
type Sealer struct {
	aead cipher.AEAD
}

// New expects a standard base64 key of 16, 24 or 32 bytes.
func New(base64Key string) (*Sealer, error) {
	key, err := base64.StdEncoding.DecodeString(base64Key)
	if err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aead}, nil
}

// GenerateKey returns a fresh base64 AES-256 key.
func GenerateKey() (string, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

func (s *Sealer) Seal(parts ...string) (string, error) {
	for _, p := range parts {
		if strings.Contains(p, separator) {
			return "", fmt.Errorf("part %q contains %q", p, separator)
		}
	}

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := s.aead.Seal(nonce, nonce, []byte(strings.Join(parts, separator)), nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// Open reverses Seal and checks the token carries exactly n parts.
func (s *Sealer) Open(token string, n int) ([]string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrInvalidToken
	}

	pt, err := s.aead.Open(nil, data[:nonceSize], data[nonceSize:], nil)
	if err != nil {
		return nil, ErrInvalidToken
	}

	parts := strings.Split(string(pt), separator)
	if len(parts) != n {
		return nil, ErrInvalidToken
	}
	return parts, nil
}
