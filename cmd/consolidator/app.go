package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlexZinkM/wallet-consolidator/internal/client"
	"github.com/AlexZinkM/wallet-consolidator/internal/common"
	"github.com/AlexZinkM/wallet-consolidator/internal/config"
	"github.com/AlexZinkM/wallet-consolidator/internal/logging"
	"github.com/AlexZinkM/wallet-consolidator/internal/migration"
	"github.com/AlexZinkM/wallet-consolidator/internal/session"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"
	"github.com/AlexZinkM/wallet-consolidator/internal/store/badger"
	"github.com/AlexZinkM/wallet-consolidator/internal/store/sqlite"
	"github.com/AlexZinkM/wallet-consolidator/solana"

	solanago "github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
)

// app is the dependency graph shared by every command.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   store.WalletRecordStore
	ledger  *client.SolanaClient
	service *solana.Service
}

func newApp() (*app, error) {
	if err := config.Init(); err != nil {
		return nil, err
	}
	cfg := config.Get()

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	migrationCfg, err := migrationConfig(cfg)
	if err != nil {
		return nil, err
	}

	ledger, err := client.NewSolanaClient(
		cfg.SolanaRPCURL,
		cfg.SendAttempts,
		cfg.ConfirmWait,
		log.With().Str("component", "ledger").Logger(),
	)
	if err != nil {
		return nil, err
	}

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	executor := migration.NewExecutor(
		ledger,
		client.NewFeeOracleClient(cfg.FeeOracleURL),
		migrationCfg,
		log.With().Str("component", "migration").Logger(),
	)

	return &app{
		cfg:     cfg,
		log:     log,
		store:   st,
		ledger:  ledger,
		service: solana.NewService(st, ledger, executor, log),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func openStore(cfg *config.Config) (store.WalletRecordStore, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendBadger:
		return badger.Open(cfg.StorePath)
	default:
		return sqlite.Open(cfg.StorePath)
	}
}

func migrationConfig(cfg *config.Config) (migration.Config, error) {
	feeRecipient, err := solanago.PublicKeyFromBase58(cfg.AdminFeeAddr)
	if err != nil {
		return migration.Config{}, fmt.Errorf("ADMIN_FEE_ADDRESS is not a valid address: %w", err)
	}
	singleFee, err := common.SOLToLamports(cfg.SingleFeeSOL)
	if err != nil {
		return migration.Config{}, fmt.Errorf("SINGLE_WALLET_FEE_SOL: %w", err)
	}
	multiFee, err := common.SOLToLamports(cfg.MultiFeeSOL)
	if err != nil {
		return migration.Config{}, fmt.Errorf("MULTI_WALLET_FEE_SOL: %w", err)
	}
	return migration.Config{
		FeeRecipient:    feeRecipient,
		SingleWalletFee: singleFee,
		MultiWalletFee:  multiFee,
		PriorityFee:     cfg.PriorityFee,
	}, nil
}

// unlockSession prompts for the master password and holds it in a session
// for the lifetime of the command. Caller must Lock the session.
func (a *app) unlockSession() (*session.Session, error) {
	password, err := config.PromptForPassword("Master password: ")
	if err != nil {
		return nil, err
	}
	defer clear(password) // Always clear password from memory

	sess := session.Open(password, a.cfg.SessionTTL)
	sess.OnLock(func() { a.log.Debug().Msg("session locked") })
	return sess, nil
}

// promptNewPassword asks for a password twice and requires both to match.
func promptNewPassword(label string) ([]byte, error) {
	first, err := config.PromptForPassword(label + ": ")
	if err != nil {
		return nil, err
	}
	second, err := config.PromptForPassword("Repeat " + label + ": ")
	if err != nil {
		clear(first)
		return nil, err
	}
	defer clear(second)

	if string(first) != string(second) {
		clear(first)
		return nil, errors.New("passwords do not match")
	}
	return first, nil
}
