package migration

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-consolidator/internal/crypto"

	"github.com/gagliardetto/solana-go"
)

// Signer signs a migration transaction on behalf of its owner.
// Implementations return an error wrapping ErrUserRejected when the user declines.
type Signer interface {
	PublicKey() solana.PublicKey
	SignTransaction(ctx context.Context, tx *solana.Transaction) error
}

// KeypairSigner signs with an in-memory private key.
type KeypairSigner struct {
	key solana.PrivateKey
}

// NewKeypairSigner wraps a raw 64-byte secret key. The signer does not copy
// the key; the caller owns zeroing it.
func NewKeypairSigner(secretKey []byte) (*KeypairSigner, error) {
	if _, err := crypto.CheckKeypair(secretKey); err != nil {
		return nil, fmt.Errorf("invalid secret key: %w", err)
	}
	return &KeypairSigner{key: solana.PrivateKey(secretKey)}, nil
}

func (s *KeypairSigner) PublicKey() solana.PublicKey {
	return s.key.PublicKey()
}

func (s *KeypairSigner) SignTransaction(_ context.Context, tx *solana.Transaction) error {
	return signWithKey(tx, s.key)
}

func signWithKey(tx *solana.Transaction, key solana.PrivateKey) error {
	pub := key.PublicKey()
	_, err := tx.Sign(func(k solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(k) {
			return &key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	return nil
}
