// Package solana implements wallet management and asset migration use cases
// on top of the vault, the record store and the migration executor.
package solana

import (
	"context"
	"errors"
	"sync"

	"github.com/AlexZinkM/wallet-consolidator/internal/migration"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

const (
	networkSolana = "solana"
)

var (
	ErrInvalidName         = errors.New("wallet name must not be empty")
	ErrInvalidSecretKey    = errors.New("secret key must be a base58 encoded 64-byte keypair")
	ErrMigrationInProgress = errors.New("another migration is in progress")
)

// BalanceReader reads on-chain balances.
type BalanceReader interface {
	GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	GetTokenHoldings(ctx context.Context, owner solana.PublicKey) ([]model.TokenHolding, error)
}

// Migrator runs migrations.
type Migrator interface {
	ExecuteSingleWalletMigration(ctx context.Context, req model.MigrationRequest, signer migration.Signer) (model.MigrationResult, error)
	ExecuteMultiWalletMigration(ctx context.Context, req model.MultiWalletMigrationRequest, keys map[string][]byte, onProgress migration.ProgressFunc) (*migration.MultiWalletMigrationResult, error)
}

// Service ties wallet records to the network. Passwords are always passed in
// by the caller and never retained.
type Service struct {
	store    store.WalletRecordStore
	balances BalanceReader
	migrator Migrator
	log      zerolog.Logger

	migrateMu sync.Mutex
}

// NewService creates a new Service
func NewService(s store.WalletRecordStore, balances BalanceReader, migrator Migrator, log zerolog.Logger) *Service {
	return &Service{
		store:    s,
		balances: balances,
		migrator: migrator,
		log:      log,
	}
}
