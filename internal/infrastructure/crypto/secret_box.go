package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SecretBox seals short secrets for storage. The associated data binds a sealed
// value to its owning row so it cannot be copied onto another one.
type SecretBox interface {
	Seal(plaintext, associatedData string) (string, error)
	Open(sealed, associatedData string) (string, error)
}

type AESSecretBox struct {
	aead cipher.AEAD
}

func NewAESSecretBox(hexKey string) (*AESSecretBox, error) {
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.New("invalid encryption key format")
	}
	if len(key) != 32 {
		return nil, errors.New("encryption key must be 32 bytes (64 hex chars)")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &AESSecretBox{aead: gcm}, nil
}

// Seal returns "nonce.ciphertext", both base64 encoded.
func (b *AESSecretBox) Seal(plaintext, associatedData string) (string, error) {
	nonce := make([]byte, b.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := b.aead.Seal(nil, nonce, []byte(plaintext), []byte(associatedData))

	return base64.StdEncoding.EncodeToString(nonce) + "." + base64.StdEncoding.EncodeToString(ciphertext), nil
}

func (b *AESSecretBox) Open(sealed, associatedData string) (string, error) {
	nonceB64, ciphertextB64, ok := strings.Cut(sealed, ".")
	if !ok {
		return "", errors.New("malformed sealed value")
	}

	nonce, err := base64.StdEncoding.DecodeString(nonceB64)
	if err != nil {
		return "", fmt.Errorf("decode nonce: %w", err)
	}
	if len(nonce) != b.aead.NonceSize() {
		return "", errors.New("invalid nonce size")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}

	plaintext, err := b.aead.Open(nil, nonce, ciphertext, []byte(associatedData))
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}
