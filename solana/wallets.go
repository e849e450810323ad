package solana

import (
	"context"
	"fmt"
	"strings"

	"github.com/AlexZinkM/wallet-consolidator/internal/crypto"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"

	"github.com/hashicorp/go-multierror"
)

// ListWallets returns the public view of every stored wallet.
func (s *Service) ListWallets(ctx context.Context) ([]model.WalletSummary, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.WalletSummary, 0, len(records))
	for _, r := range records {
		out = append(out, r.Summary())
	}
	return out, nil
}

// RenameWallet changes the display name of a wallet.
func (s *Service) RenameWallet(ctx context.Context, id, name string) (model.WalletSummary, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.WalletSummary{}, ErrInvalidName
	}
	record, err := store.Find(ctx, s.store, id)
	if err != nil {
		return model.WalletSummary{}, err
	}
	record.Name = name
	if err := s.store.Update(ctx, record); err != nil {
		return model.WalletSummary{}, fmt.Errorf("failed to rename wallet: %w", err)
	}
	return record.Summary(), nil
}

// DeleteWallet removes a wallet permanently.
func (s *Service) DeleteWallet(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("wallet deleted")
	return nil
}

// ChangePassword re-encrypts every wallet from oldPassword to newPassword.
// All records are decrypted before anything is written; a failed write rolls
// back the records already updated. Returns the number of records changed.
func (s *Service) ChangePassword(ctx context.Context, oldPassword, newPassword []byte) (int, error) {
	if len(newPassword) < crypto.MinPasswordLength {
		return 0, crypto.ErrWeakPassword
	}

	records, err := s.store.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	updated := make([]model.WalletRecord, 0, len(records))
	for _, r := range records {
		secretKey, err := crypto.DecryptPrivateKey(r.EncryptedPrivateKey, oldPassword, r.Salt, r.IV)
		if err != nil {
			return 0, fmt.Errorf("failed to decrypt wallet %s: %w", r.PublicKey, err)
		}
		sealed, err := crypto.EncryptPrivateKey(secretKey, newPassword)
		clear(secretKey)
		if err != nil {
			return 0, fmt.Errorf("failed to re-encrypt wallet %s: %w", r.PublicKey, err)
		}

		next := r
		next.EncryptedPrivateKey = sealed.Ciphertext
		next.Salt = sealed.Salt
		next.IV = sealed.IV
		updated = append(updated, next)
	}

	for i, r := range updated {
		if err := s.store.Update(ctx, r); err != nil {
			for _, prev := range records[:i] {
				if rbErr := s.store.Update(ctx, prev); rbErr != nil {
					err = multierror.Append(err, fmt.Errorf("rollback of %s failed: %w", prev.PublicKey, rbErr))
				}
			}
			return 0, fmt.Errorf("failed to update wallet %s: %w", r.PublicKey, err)
		}
	}

	s.log.Info().Int("wallets", len(updated)).Msg("master password changed")
	return len(updated), nil
}

// UnlockKeys decrypts the keys of the stored wallets among addresses,
// keyed by address. Addresses that are not stored are left out. Any
// decryption failure clears what was decrypted and fails the call.
// Caller must pass the result to ClearKeys once done.
func (s *Service) UnlockKeys(ctx context.Context, addresses []string, password []byte) (map[string][]byte, error) {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byAddress := make(map[string]model.WalletRecord, len(records))
	for _, r := range records {
		byAddress[r.PublicKey] = r
	}

	keys := make(map[string][]byte, len(addresses))
	for _, addr := range addresses {
		r, ok := byAddress[addr]
		if !ok {
			continue
		}
		if _, done := keys[addr]; done {
			continue
		}
		secretKey, err := crypto.DecryptPrivateKey(r.EncryptedPrivateKey, password, r.Salt, r.IV)
		if err != nil {
			ClearKeys(keys)
			return nil, fmt.Errorf("failed to decrypt wallet %s: %w", addr, err)
		}
		keys[addr] = secretKey
	}
	return keys, nil
}

// ClearKeys zeroes and drops every key in keys.
func ClearKeys(keys map[string][]byte) {
	for addr, k := range keys {
		clear(k)
		delete(keys, addr)
	}
}

// VerifyPassword checks password against the oldest stored wallet. With an
// empty vault any password of acceptable strength is accepted.
func (s *Service) VerifyPassword(ctx context.Context, password []byte) error {
	records, err := s.store.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		if len(password) < crypto.MinPasswordLength {
			return crypto.ErrWeakPassword
		}
		return nil
	}
	r := records[0]
	secretKey, err := crypto.DecryptPrivateKey(r.EncryptedPrivateKey, password, r.Salt, r.IV)
	if err != nil {
		return err
	}
	clear(secretKey)
	return nil
}
