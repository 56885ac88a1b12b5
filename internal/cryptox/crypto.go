// Package cryptox implements the symmetric encryption used for OTP codes at
// rest: AES-256-CBC with a random per-call IV and PKCS#7 padding. Ciphertext
// and IV are hex-encoded for storage in text columns.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
)

// KeySize is the required key length (AES-256).
const KeySize = 32

var (
	ErrInvalidKeySize    = errors.New("encryption key must be 32 bytes")
	ErrMalformedPayload  = errors.New("malformed encrypted payload")
	ErrInvalidPadding    = errors.New("invalid padding")
	ErrEmptyPlaintext    = errors.New("nothing to encrypt")
	ErrCiphertextTooLong = errors.New("ciphertext not a multiple of block size")
)

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system randomness source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("rand.Read: %v", err))
	}
	return b
}

// Encrypt encrypts text with AES-256-CBC under key, generating a fresh
// random 16-byte IV for every call. It returns the hex-encoded ciphertext
// and the hex-encoded IV.
func Encrypt(text string, key []byte) (encrypted string, iv string, err error) {
	if len(key) != KeySize {
		return "", "", ErrInvalidKeySize
	}
	if text == "" {
		return "", "", ErrEmptyPlaintext
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", "", err
	}

	rawIV := GenerateRandByteArray(aes.BlockSize)
	plaintext := pad([]byte(text), aes.BlockSize)

	ciphertext := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, rawIV).CryptBlocks(ciphertext, plaintext)

	return hex.EncodeToString(ciphertext), hex.EncodeToString(rawIV), nil
}

// Decrypt reverses Encrypt given the same key and the stored IV. Corrupt
// or truncated input yields an error, never a panic.
func Decrypt(encrypted string, iv string, key []byte) (string, error) {
	if len(key) != KeySize {
		return "", ErrInvalidKeySize
	}

	ciphertext, err := hex.DecodeString(encrypted)
	if err != nil {
		return "", ErrMalformedPayload
	}
	rawIV, err := hex.DecodeString(iv)
	if err != nil {
		return "", ErrMalformedPayload
	}
	if len(rawIV) != aes.BlockSize {
		return "", ErrMalformedPayload
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", ErrCiphertextTooLong
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, rawIV).CryptBlocks(plaintext, ciphertext)

	plaintext, err = unpad(plaintext, aes.BlockSize)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrInvalidPadding
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize || n > len(b) {
		return nil, ErrInvalidPadding
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrInvalidPadding
		}
	}
	return b[:len(b)-n], nil
}
