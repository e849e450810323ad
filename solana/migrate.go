package solana

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-consolidator/internal/crypto"
	"github.com/AlexZinkM/wallet-consolidator/internal/migration"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"
)

// SignerWrapper decorates the vault keypair signer, e.g. with an interactive
// confirmation.
type SignerWrapper func(migration.Signer) migration.Signer

// MigrateSingle unlocks the source wallet with password and runs a
// single-wallet migration signed by its keypair. wrap may be nil.
// password must be []byte for security (caller should zero it after use)
func (s *Service) MigrateSingle(ctx context.Context, req model.MigrationRequest, password []byte, wrap SignerWrapper) (model.MigrationResult, error) {
	if !s.migrateMu.TryLock() {
		return model.MigrationResult{Error: ErrMigrationInProgress.Error()}, ErrMigrationInProgress
	}
	defer s.migrateMu.Unlock()

	record, err := store.FindByPublicKey(ctx, s.store, req.SourceWallet)
	if err != nil {
		return model.MigrationResult{Error: err.Error()}, fmt.Errorf("source wallet %s: %w", req.SourceWallet, err)
	}

	secretKey, err := crypto.DecryptPrivateKey(record.EncryptedPrivateKey, password, record.Salt, record.IV)
	if err != nil {
		return model.MigrationResult{Error: err.Error()}, fmt.Errorf("failed to decrypt wallet: %w", err)
	}
	// Always clear private key from memory
	defer clear(secretKey)

	keypair, err := migration.NewKeypairSigner(secretKey)
	if err != nil {
		return model.MigrationResult{Error: err.Error()}, err
	}

	var signer migration.Signer = keypair
	if wrap != nil {
		signer = wrap(keypair)
	}
	return s.migrator.ExecuteSingleWalletMigration(ctx, req, signer)
}

// MigrateMulti unlocks every selected wallet and runs a multi-wallet
// migration. Keys are cleared before returning. Wallets that are not stored
// fail individually with a missing-key error.
func (s *Service) MigrateMulti(
	ctx context.Context,
	req model.MultiWalletMigrationRequest,
	password []byte,
	onProgress migration.ProgressFunc,
) (*migration.MultiWalletMigrationResult, error) {
	if !s.migrateMu.TryLock() {
		return nil, ErrMigrationInProgress
	}
	defer s.migrateMu.Unlock()

	addresses := make([]string, 0, len(req.Wallets))
	for _, w := range req.Wallets {
		addresses = append(addresses, w.Address)
	}

	keys, err := s.UnlockKeys(ctx, addresses, password)
	if err != nil {
		return nil, err
	}
	defer ClearKeys(keys)

	result, err := s.migrator.ExecuteMultiWalletMigration(ctx, req, keys, onProgress)
	if err != nil {
		return nil, err
	}
	if batchErr := result.Err(); batchErr != nil {
		s.log.Warn().Err(batchErr).Msg(result.Summary(3))
	}
	return result, nil
}
