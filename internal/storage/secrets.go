package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrSealedValue is returned when a sealed value cannot be opened, usually
// because the device key file was replaced after the value was written.
var ErrSealedValue = errors.New("storage: cannot open sealed value")

// secretBox seals values at rest under a per-install device key. The key
// lives next to the database file with owner-only permissions; it is not a
// substitute for an OS keystore, it only keeps the bearer token out of plain
// sqlite pages.
type secretBox struct {
	aead cipher.AEAD
}

func openSecretBox(dbPath string) (*secretBox, error) {
	var key []byte
	var err error
	if dbPath == ":memory:" {
		key, err = randomBytes(chacha20poly1305.KeySize)
	} else {
		key, err = loadOrCreateKey(dbPath + ".key")
	}
	if err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &secretBox{aead: aead}, nil
}

func loadOrCreateKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("device key %s has wrong size %d", path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key, err = randomBytes(chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, key, 0o600); err != nil {
		return nil, err
	}
	return key, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}

// seal returns nonce || ciphertext.
func (b *secretBox) seal(plain []byte) ([]byte, error) {
	nonce, err := randomBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	return b.aead.Seal(nonce, nonce, plain, nil), nil
}

func (b *secretBox) open(sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, ErrSealedValue
	}
	nonce, ciphertext := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	plain, err := b.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedValue, err)
	}
	return plain, nil
}
