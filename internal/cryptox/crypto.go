// Package cryptox seals values persisted on disk (access and refresh tokens,
// the cached identity) so that a copied database file is useless without the
// storage secret.
package cryptox

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// SaltSize is the length of the random salt fed to DeriveKey.
const SaltSize = 16

// Sealer encrypts and authenticates values before they are written to disk.
type Sealer interface {
	Seal(plaintext []byte) ([]byte, error)
	Open(sealed []byte) ([]byte, error)
}

// DeriveKey stretches a secret into a 32-byte key with Argon2id.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, chacha20poly1305.KeySize)
}

// AEADSealer is a Sealer backed by XChaCha20-Poly1305. Sealed values are
// laid out as nonce || ciphertext.
type AEADSealer struct {
	aead cipher.AEAD
}

// NewSealer derives a key from secret and salt and returns a ready Sealer.
func NewSealer(secret []byte, salt []byte) (*AEADSealer, error) {
	aead, err := chacha20poly1305.NewX(DeriveKey(secret, salt))
	if err != nil {
		return nil, fmt.Errorf("init aead: %w", err)
	}
	return &AEADSealer{aead: aead}, nil
}

func (s *AEADSealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Open reverses Seal. Truncated or tampered input yields
// common.ErrCorruptedValue.
func (s *AEADSealer) Open(sealed []byte) ([]byte, error) {
	ns := s.aead.NonceSize()
	if len(sealed) < ns+s.aead.Overhead() {
		return nil, common.ErrCorruptedValue
	}
	plaintext, err := s.aead.Open(nil, sealed[:ns], sealed[ns:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrCorruptedValue, err)
	}
	return plaintext, nil
}

// Plain stores values as-is. Used when no storage secret is configured.
type Plain struct{}

func (Plain) Seal(plaintext []byte) ([]byte, error) { return plaintext, nil }
func (Plain) Open(sealed []byte) ([]byte, error)    { return sealed, nil }

// RandomSalt returns SaltSize random bytes.
func RandomSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}
