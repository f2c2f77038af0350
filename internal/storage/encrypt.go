// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// =============================================================================
// ENCRYPTION AT REST
// =============================================================================

// Encrypted value format: ENC:base64(salt | nonce | ciphertext+tag).
const encryptedPrefix = "ENC:"

const (
	keySize    = 32 // AES-256
	nonceSize  = 12 // GCM standard nonce
	saltSize   = 16
	iterations = 600_000 // PBKDF2-SHA-256, OWASP 2023 recommendation
)

var (
	// ErrDecryptionFailed indicates a wrong passphrase or tampered data.
	ErrDecryptionFailed = errors.New("storage: decryption failed")
	// ErrInvalidCiphertext indicates a malformed encrypted value.
	ErrInvalidCiphertext = errors.New("storage: invalid ciphertext format")
)

// EncryptedKV wraps another KV, transparently encrypting values with
// AES-256-GCM under a key derived from a passphrase. Keys (names) are
// stored in the clear; only values are protected.
type EncryptedKV struct {
	inner      KV
	passphrase []byte
}

// NewEncryptedKV wraps inner with passphrase-based value encryption.
func NewEncryptedKV(inner KV, passphrase string) *EncryptedKV {
	return &EncryptedKV{inner: inner, passphrase: []byte(passphrase)}
}

// Get decrypts and returns the value for key. Plaintext values written
// before encryption was enabled are passed through unchanged.
func (e *EncryptedKV) Get(key string) (string, bool, error) {
	raw, ok, err := e.inner.Get(key)
	if err != nil || !ok {
		return "", ok, err
	}
	if !strings.HasPrefix(raw, encryptedPrefix) {
		return raw, true, nil
	}
	plain, err := e.decrypt(raw)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

// Set encrypts value and stores it under key.
func (e *EncryptedKV) Set(key, value string) error {
	sealed, err := e.encrypt(value)
	if err != nil {
		return err
	}
	return e.inner.Set(key, sealed)
}

// Delete removes key.
func (e *EncryptedKV) Delete(key string) error {
	return e.inner.Delete(key)
}

// Close closes the underlying store and zeros the passphrase.
func (e *EncryptedKV) Close() error {
	for i := range e.passphrase {
		e.passphrase[i] = 0
	}
	return e.inner.Close()
}

func (e *EncryptedKV) encrypt(plain string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	aead, err := newAEAD(e.passphrase, salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := aead.Seal(nil, nonce, []byte(plain), nil)

	packed := make([]byte, 0, saltSize+nonceSize+len(sealed))
	packed = append(packed, salt...)
	packed = append(packed, nonce...)
	packed = append(packed, sealed...)

	return encryptedPrefix + base64.StdEncoding.EncodeToString(packed), nil
}

func (e *EncryptedKV) decrypt(raw string) (string, error) {
	packed, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(raw, encryptedPrefix))
	if err != nil {
		return "", ErrInvalidCiphertext
	}
	if len(packed) < saltSize+nonceSize {
		return "", ErrInvalidCiphertext
	}

	salt := packed[:saltSize]
	nonce := packed[saltSize : saltSize+nonceSize]
	sealed := packed[saltSize+nonceSize:]

	aead, err := newAEAD(e.passphrase, salt)
	if err != nil {
		return "", err
	}

	plain, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}
	return string(plain), nil
}

func newAEAD(passphrase, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key(passphrase, salt, iterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
