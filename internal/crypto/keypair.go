package crypto

import (
	"bytes"
	"crypto/ed25519"
	"errors"
)

// ErrKeypairMismatch means the public half of a secret key is not the one
// its seed derives.
var ErrKeypairMismatch = errors.New("vault: public half does not match the key seed")

// DerivePublicKey derives the public key from the seed half of a 64-byte
// secret key. The stored public half is ignored.
func DerivePublicKey(secretKey []byte) (ed25519.PublicKey, error) {
	if len(secretKey) != SecretKeySize {
		return nil, ErrInvalidKeyFormat
	}
	priv := ed25519.NewKeyFromSeed(secretKey[:ed25519.SeedSize])
	defer clear(priv)
	return priv.Public().(ed25519.PublicKey), nil
}

// CheckKeypair derives the public key from the seed and requires the stored
// public half to equal it. The returned error wraps ErrInvalidKeyFormat.
func CheckKeypair(secretKey []byte) (ed25519.PublicKey, error) {
	pub, err := DerivePublicKey(secretKey)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(pub, secretKey[ed25519.SeedSize:]) {
		return nil, errors.Join(ErrInvalidKeyFormat, ErrKeypairMismatch)
	}
	return pub, nil
}
