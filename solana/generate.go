package solana

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"
	"unsafe"

	"github.com/AlexZinkM/wallet-consolidator/internal/crypto"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// GenerateWallet creates a new keypair, stores it encrypted under password and
// returns the record together with a base64 PNG QR code of its address.
// password must be []byte for security (caller should zero it after use)
func (s *Service) GenerateWallet(ctx context.Context, name string, password []byte) (model.WalletRecord, string, error) {
	// Generate new Solana keypair
	wallet := solana.NewWallet()
	defer clear(wallet.PrivateKey)

	record, err := s.addRecord(ctx, name, wallet.PrivateKey, password, time.Now())
	if err != nil {
		return model.WalletRecord{}, "", err
	}

	qrCode, err := generateQRCode(record.PublicKey)
	if err != nil {
		return model.WalletRecord{}, "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	s.log.Info().Str("wallet", record.PublicKey).Str("id", record.ID).Msg("wallet generated")
	return record, qrCode, nil
}

// ImportWallet stores an existing base58 encoded 64-byte secret key.
// A wallet whose public key is already stored is rejected with store.ErrAlreadyExists.
// secretKey must be []byte for security (caller should zero it after use)
func (s *Service) ImportWallet(ctx context.Context, name string, secretKey []byte, password []byte) (model.WalletRecord, error) {
	encoded := bytes.TrimSpace(secretKey)
	if len(encoded) == 0 {
		return model.WalletRecord{}, ErrInvalidSecretKey
	}
	// view over the caller's bytes, not retained past decoding
	key, err := solana.PrivateKeyFromBase58(unsafe.String(&encoded[0], len(encoded)))
	if err != nil || len(key) != crypto.SecretKeySize {
		clear(key)
		return model.WalletRecord{}, ErrInvalidSecretKey
	}
	defer clear(key)

	record, err := s.addRecord(ctx, name, key, password, time.Now())
	if err != nil {
		return model.WalletRecord{}, err
	}

	s.log.Info().Str("wallet", record.PublicKey).Str("id", record.ID).Msg("wallet imported")
	return record, nil
}

// addRecord encrypts secretKey and persists it as a new WalletRecord.
func (s *Service) addRecord(ctx context.Context, name string, secretKey []byte, password []byte, createdAt time.Time) (model.WalletRecord, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.WalletRecord{}, ErrInvalidName
	}
	pub, err := crypto.CheckKeypair(secretKey)
	if err != nil {
		return model.WalletRecord{}, err
	}

	sealed, err := crypto.EncryptPrivateKey(secretKey, password)
	if err != nil {
		return model.WalletRecord{}, err
	}

	record := model.WalletRecord{
		ID:                  uuid.NewString(),
		Name:                name,
		PublicKey:           solana.PublicKeyFromBytes(pub).String(),
		EncryptedPrivateKey: sealed.Ciphertext,
		Salt:                sealed.Salt,
		IV:                  sealed.IV,
		CreatedAt:           createdAt.UTC().Truncate(time.Millisecond),
	}
	if err := s.store.Save(ctx, []model.WalletRecord{record}); err != nil {
		return model.WalletRecord{}, fmt.Errorf("failed to save wallet %s: %w", record.PublicKey, err)
	}
	return record, nil
}

// generateQRCode generates QR code of address in base64
func generateQRCode(address string) (string, error) {
	qr, err := qrcode.New(address, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("failed to create QR code: %w", err)
	}

	// Get PNG image
	png, err := qr.PNG(256)
	if err != nil {
		return "", fmt.Errorf("failed to generate PNG: %w", err)
	}

	// Encode to base64
	return base64.StdEncoding.EncodeToString(png), nil
}
