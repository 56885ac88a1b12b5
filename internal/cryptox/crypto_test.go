package cryptox

import (
	"bytes"
	"strings"
	"testing"
)

func testKey() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := testKey()

	for _, text := range []string{"483920", "1", strings.Repeat("x", 100)} {
		enc, iv, err := Encrypt(text, key)
		if err != nil {
			t.Fatalf("Encrypt(%q) error: %v", text, err)
		}

		got, err := Decrypt(enc, iv, key)
		if err != nil {
			t.Fatalf("Decrypt error: %v", err)
		}
		if got != text {
			t.Fatalf("round trip mismatch: got %q want %q", got, text)
		}
	}
}

func TestEncrypt_FreshIVPerCall(t *testing.T) {
	key := testKey()

	enc1, iv1, err := Encrypt("123456", key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}
	enc2, iv2, err := Encrypt("123456", key)
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	if iv1 == iv2 {
		t.Fatal("expected different IVs for two calls")
	}
	if enc1 == enc2 {
		t.Fatal("expected different ciphertexts for two calls")
	}
}

func TestEncrypt_Errors(t *testing.T) {
	if _, _, err := Encrypt("123456", []byte("short")); err != ErrInvalidKeySize {
		t.Fatalf("expected ErrInvalidKeySize, got %v", err)
	}
	if _, _, err := Encrypt("", testKey()); err != ErrEmptyPlaintext {
		t.Fatalf("expected ErrEmptyPlaintext, got %v", err)
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	enc, iv, err := Encrypt("123456", testKey())
	if err != nil {
		t.Fatalf("Encrypt error: %v", err)
	}

	other := bytes.Repeat([]byte("k"), KeySize)
	got, err := Decrypt(enc, iv, other)
	// CBC with a wrong key either fails padding validation or yields garbage;
	// it must never return the original code.
	if err == nil && got == "123456" {
		t.Fatal("decrypt with wrong key recovered the plaintext")
	}
}

func TestDecrypt_CorruptInput(t *testing.T) {
	key := testKey()

	tests := []struct {
		name string
		enc  string
		iv   string
	}{
		{"non-hex ciphertext", "zzzz", strings.Repeat("00", 16)},
		{"non-hex iv", strings.Repeat("00", 16), "zz"},
		{"short iv", strings.Repeat("00", 16), "00ff"},
		{"odd length ciphertext", strings.Repeat("00", 15), strings.Repeat("00", 16)},
		{"empty ciphertext", "", strings.Repeat("00", 16)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decrypt(tc.enc, tc.iv, key); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
