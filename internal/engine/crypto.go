package engine

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

// sessionKeyBytes parses the 64-hex session key into its 32 raw bytes,
// used as both the AES-256 key and the HMAC-SHA256 key for the
// session's lifetime.
func sessionKeyBytes(key string) ([]byte, error) {
	b, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("engine: session key is not valid hex: %w", err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("engine: session key decodes to %d bytes, want 32", len(b))
	}
	return b, nil
}

// sessionIV derives the AES IV from the first 32 hex characters of
// the session key, parsed as 16 raw bytes.
func sessionIV(key string) ([]byte, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("engine: session key too short to derive an IV")
	}
	b, err := hex.DecodeString(key[:32])
	if err != nil {
		return nil, fmt.Errorf("engine: session key prefix is not valid hex: %w", err)
	}
	return b, nil
}

// EncryptFingerprint AES-256-CBC/PKCS7-encrypts plaintext under the
// session key and returns base64 ciphertext.
func EncryptFingerprint(sessionKey, plaintext string) (string, error) {
	key, err := sessionKeyBytes(sessionKey)
	if err != nil {
		return "", err
	}
	iv, err := sessionIV(sessionKey)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("engine: building AES cipher: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), block.BlockSize())
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptFingerprint is the inverse of EncryptFingerprint, used by
// tests to pin the AES round-trip.
func DecryptFingerprint(sessionKey, ciphertextB64 string) (string, error) {
	key, err := sessionKeyBytes(sessionKey)
	if err != nil {
		return "", err
	}
	iv, err := sessionIV(sessionKey)
	if err != nil {
		return "", err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ciphertextB64)
	if err != nil {
		return "", fmt.Errorf("engine: decoding ciphertext: %w", err)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("engine: ciphertext is not a multiple of the block size")
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("engine: building AES cipher: %w", err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	unpadded, err := pkcs7Unpad(plain, block.BlockSize())
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	n := len(data)
	if n == 0 || n%blockSize != 0 {
		return nil, fmt.Errorf("engine: padded data length %d is not a multiple of %d", n, blockSize)
	}
	padLen := int(data[n-1])
	if padLen == 0 || padLen > blockSize || padLen > n {
		return nil, fmt.Errorf("engine: invalid PKCS7 padding")
	}
	for _, b := range data[n-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("engine: invalid PKCS7 padding")
		}
	}
	return data[:n-padLen], nil
}

// SignRecord computes HMAC-SHA256 over record using the session key's
// 32 raw bytes and returns lowercase hex.
func SignRecord(sessionKey, record string) (string, error) {
	key, err := sessionKeyBytes(sessionKey)
	if err != nil {
		return "", err
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(record))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// GenerateNonce returns "<timestamp>-<8 random base36 chars>", using
// crypto/rand rather than base64 so the nonce stays URL- and
// header-safe without escaping.
func GenerateNonce(timestampMs int64) (string, error) {
	suffix, err := randomBase36(8)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%s", timestampMs, suffix), nil
}

func randomBase36(n int) (string, error) {
	var b strings.Builder
	base := big.NewInt(int64(len(base36Alphabet)))
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, base)
		if err != nil {
			return "", fmt.Errorf("engine: generating nonce: %w", err)
		}
		b.WriteByte(base36Alphabet[idx.Int64()])
	}
	return b.String(), nil
}
