package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SecretKeySize is the raw ed25519 keypair secret size used by the network.
	SecretKeySize = 64

	MinPasswordLength = 8

	pbkdf2Iterations = 100_000
	vaultKeyLen      = 32 // AES-256
	vaultSaltLen     = 16
	vaultIVLen       = aes.BlockSize
)

var (
	ErrInvalidKeyFormat = errors.New("vault: secret key must be exactly 64 bytes")
	ErrWeakPassword     = errors.New("vault: password must be at least 8 characters")
	ErrDecryptionFailed = errors.New("vault: decryption failed (wrong password or corrupted record)")
)

// Sealed is the persistable output of EncryptPrivateKey. All fields are base64.
type Sealed struct {
	Ciphertext string
	Salt       string
	IV         string
}

// EncryptPrivateKey encrypts a raw 64-byte secret key under password.
// A fresh salt and IV are drawn for every call.
// password must be []byte for security (caller should zero it after use)
func EncryptPrivateKey(secretKey []byte, password []byte) (*Sealed, error) {
	if len(secretKey) != SecretKeySize {
		return nil, ErrInvalidKeyFormat
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	salt := make([]byte, vaultSaltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	iv := make([]byte, vaultIVLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	key := deriveVaultKey(password, salt)
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	// The hex form of the key is what gets encrypted
	plaintext := make([]byte, hex.EncodedLen(len(secretKey)))
	hex.Encode(plaintext, secretKey)
	defer clear(plaintext)

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	defer clear(padded)

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return &Sealed{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		IV:         base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// DecryptPrivateKey reverses EncryptPrivateKey. Any mismatch between the
// recovered payload and a hex encoded 64-byte key is reported as
// ErrDecryptionFailed. Caller should zero the returned key after use.
func DecryptPrivateKey(ciphertext string, password []byte, salt, iv string) ([]byte, error) {
	rawCipher, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext", ErrDecryptionFailed)
	}
	rawSalt, err := base64.StdEncoding.DecodeString(salt)
	if err != nil || len(rawSalt) == 0 {
		return nil, fmt.Errorf("%w: malformed salt", ErrDecryptionFailed)
	}
	rawIV, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(rawIV) != vaultIVLen {
		return nil, fmt.Errorf("%w: malformed iv", ErrDecryptionFailed)
	}
	if len(rawCipher) == 0 || len(rawCipher)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block aligned", ErrDecryptionFailed)
	}

	key := deriveVaultKey(password, rawSalt)
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	padded := make([]byte, len(rawCipher))
	cipher.NewCBCDecrypter(block, rawIV).CryptBlocks(padded, rawCipher)
	defer clear(padded)

	plaintext, ok := pkcs7Unpad(padded, aes.BlockSize)
	if !ok || len(plaintext) != hex.EncodedLen(SecretKeySize) {
		return nil, ErrDecryptionFailed
	}

	secretKey := make([]byte, SecretKeySize)
	if _, err := hex.Decode(secretKey, plaintext); err != nil {
		clear(secretKey)
		return nil, ErrDecryptionFailed
	}
	return secretKey, nil
}

func deriveVaultKey(password, salt []byte) []byte {
	return pbkdf2.Key(password, salt, pbkdf2Iterations, vaultKeyLen, sha256.New)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	copy(out[len(data):], bytes.Repeat([]byte{byte(n)}, n))
	return out
}

// pkcs7Unpad returns a subslice of data; ok is false on malformed padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
