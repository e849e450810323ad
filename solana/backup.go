package solana

import (
	"context"
	"fmt"
	"time"

	"github.com/AlexZinkM/wallet-consolidator/internal/crypto"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"

	"github.com/gagliardetto/solana-go"
)

// ExportBackup writes wallet id to a portable .cwt file encrypted with
// exportPassword. password unlocks the stored record.
// Both passwords must be []byte for security (caller should zero them after use)
func (s *Service) ExportBackup(ctx context.Context, id, filePath string, password, exportPassword []byte) error {
	record, err := store.Find(ctx, s.store, id)
	if err != nil {
		return err
	}

	secretKey, err := crypto.DecryptPrivateKey(record.EncryptedPrivateKey, password, record.Salt, record.IV)
	if err != nil {
		return fmt.Errorf("failed to decrypt wallet: %w", err)
	}
	defer clear(secretKey)

	qrCode, err := generateQRCode(record.PublicKey)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	header := model.CWTFile{
		Network: networkSolana,
		Address: record.PublicKey,
		Name:    record.Name,
		QR:      qrCode,
	}
	walletData := &model.WalletData{
		PrivateKey: secretKey,
		CreatedAt:  record.CreatedAt.Format(time.RFC3339),
	}
	if err := crypto.ExportBackup(filePath, header, walletData, exportPassword); err != nil {
		return fmt.Errorf("failed to export wallet: %w", err)
	}

	s.log.Info().Str("wallet", record.PublicKey).Str("file", filePath).Msg("wallet exported")
	return nil
}

// ImportBackup reads a .cwt file and stores its wallet encrypted under
// password. An empty name keeps the name recorded in the backup.
func (s *Service) ImportBackup(ctx context.Context, filePath string, exportPassword, password []byte, name string) (model.WalletRecord, error) {
	header, walletData, err := crypto.ImportBackup(filePath, exportPassword)
	if err != nil {
		return model.WalletRecord{}, err
	}
	defer clear(walletData.PrivateKey)

	pub, err := crypto.CheckKeypair(walletData.PrivateKey)
	if err != nil {
		return model.WalletRecord{}, fmt.Errorf("%w: %v", crypto.ErrBadBackup, err)
	}
	if solana.PublicKeyFromBytes(pub).String() != header.Address {
		return model.WalletRecord{}, fmt.Errorf("%w: key does not match address %s", crypto.ErrBadBackup, header.Address)
	}

	if name == "" {
		name = header.Name
	}
	createdAt, err := time.Parse(time.RFC3339, walletData.CreatedAt)
	if err != nil {
		createdAt = time.Now()
	}

	record, err := s.addRecord(ctx, name, walletData.PrivateKey, password, createdAt)
	if err != nil {
		return model.WalletRecord{}, err
	}

	s.log.Info().Str("wallet", record.PublicKey).Str("file", filePath).Msg("wallet imported from backup")
	return record, nil
}
