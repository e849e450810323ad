package solana

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/AlexZinkM/wallet-consolidator/internal/crypto"
	"github.com/AlexZinkM/wallet-consolidator/internal/migration"
	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"
	"github.com/AlexZinkM/wallet-consolidator/internal/store/sqlite"

	"github.com/gagliardetto/solana-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testPassword = []byte("correct horse battery")

type fakeBalances struct {
	lamports uint64
	tokens   []model.TokenHolding
	err      error
}

func (f *fakeBalances) GetBalance(context.Context, solana.PublicKey) (uint64, error) {
	return f.lamports, f.err
}

func (f *fakeBalances) GetTokenHoldings(context.Context, solana.PublicKey) ([]model.TokenHolding, error) {
	return f.tokens, f.err
}

// fakeMigrator records what the service hands to the executor.
type fakeMigrator struct {
	signer   migration.Signer
	signedBy string // signer address while the key was live
	keys     map[string][]byte
	keyRefs  [][]byte
	entered  chan struct{}
	release  chan struct{}
}

func (m *fakeMigrator) ExecuteSingleWalletMigration(_ context.Context, _ model.MigrationRequest, signer migration.Signer) (model.MigrationResult, error) {
	m.signer = signer
	m.signedBy = signer.PublicKey().String()
	return model.MigrationResult{Success: true, Signature: "sig"}, nil
}

func (m *fakeMigrator) ExecuteMultiWalletMigration(_ context.Context, req model.MultiWalletMigrationRequest, keys map[string][]byte, _ migration.ProgressFunc) (*migration.MultiWalletMigrationResult, error) {
	if m.entered != nil {
		close(m.entered)
		<-m.release
	}
	m.keys = make(map[string][]byte, len(keys))
	for addr, k := range keys {
		m.keys[addr] = append([]byte(nil), k...)
		m.keyRefs = append(m.keyRefs, k)
	}
	return &migration.MultiWalletMigrationResult{
		Success:           true,
		TotalWallets:      len(req.Wallets),
		SuccessfulWallets: len(req.Wallets),
	}, nil
}

func newTestService(t *testing.T) (*Service, *fakeBalances, *fakeMigrator) {
	t.Helper()
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "wallets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	balances := &fakeBalances{}
	migrator := &fakeMigrator{}
	return NewService(s, balances, migrator, zerolog.Nop()), balances, migrator
}

func decryptRecord(t *testing.T, r model.WalletRecord, password []byte) solana.PrivateKey {
	t.Helper()
	key, err := crypto.DecryptPrivateKey(r.EncryptedPrivateKey, password, r.Salt, r.IV)
	require.NoError(t, err)
	return key
}

func TestGenerateWallet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	record, qr, err := svc.GenerateWallet(ctx, "  savings ", testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, qr)
	assert.Equal(t, "savings", record.Name)
	assert.Equal(t, record.PublicKey, decryptRecord(t, record, testPassword).PublicKey().String())

	wallets, err := svc.ListWallets(ctx)
	require.NoError(t, err)
	require.Len(t, wallets, 1)
	assert.Equal(t, record.Summary(), wallets[0])

	_, _, err = svc.GenerateWallet(ctx, " ", testPassword)
	assert.ErrorIs(t, err, ErrInvalidName)

	_, _, err = svc.GenerateWallet(ctx, "weak", []byte("short"))
	assert.ErrorIs(t, err, crypto.ErrWeakPassword)
}

func TestImportWallet(t *testing.T) {
	key := solana.NewWallet().PrivateKey
	victim := solana.NewWallet().PrivateKey
	spliced := append(append(solana.PrivateKey{}, key[:32]...), victim[32:]...)

	tests := []struct {
		name      string
		mockSetup func(t *testing.T, svc *Service)
		secret    string
		wallet    string
		wantErr   error
	}{
		{name: "valid", secret: key.String(), wallet: "imported"},
		{name: "invalid_secret", secret: "definitely-not-base58-0OIl", wallet: "imported", wantErr: ErrInvalidSecretKey},
		{name: "missing_name", secret: key.String(), wallet: "", wantErr: ErrInvalidName},
		{name: "foreign_public_half", secret: spliced.String(), wallet: "spliced", wantErr: crypto.ErrInvalidKeyFormat},
		{
			name: "duplicate",
			mockSetup: func(t *testing.T, svc *Service) {
				_, err := svc.ImportWallet(context.Background(), "first", []byte(key.String()), testPassword)
				require.NoError(t, err)
			},
			secret:  key.String(),
			wallet:  "second",
			wantErr: store.ErrAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t)
			if tt.mockSetup != nil {
				tt.mockSetup(t, svc)
			}

			record, err := svc.ImportWallet(context.Background(), tt.wallet, []byte(tt.secret), testPassword)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.mockSetup == nil {
					wallets, err := svc.ListWallets(context.Background())
					require.NoError(t, err)
					assert.Empty(t, wallets)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, key.PublicKey().String(), record.PublicKey)
			assert.Equal(t, []byte(key), []byte(decryptRecord(t, record, testPassword)))
		})
	}
}

func TestRenameAndDeleteWallet(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	record, _, err := svc.GenerateWallet(ctx, "old", testPassword)
	require.NoError(t, err)

	summary, err := svc.RenameWallet(ctx, record.ID, " new ")
	require.NoError(t, err)
	assert.Equal(t, "new", summary.Name)

	_, err = svc.RenameWallet(ctx, record.ID, "")
	assert.ErrorIs(t, err, ErrInvalidName)
	_, err = svc.RenameWallet(ctx, "missing", "name")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, svc.DeleteWallet(ctx, record.ID))
	assert.ErrorIs(t, svc.DeleteWallet(ctx, record.ID), store.ErrNotFound)

	wallets, err := svc.ListWallets(ctx)
	require.NoError(t, err)
	assert.Empty(t, wallets)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	newPassword := []byte("another long password")

	first, _, err := svc.GenerateWallet(ctx, "first", testPassword)
	require.NoError(t, err)
	_, _, err = svc.GenerateWallet(ctx, "second", testPassword)
	require.NoError(t, err)

	_, err = svc.ChangePassword(ctx, []byte("wrong password"), newPassword)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
	unchanged, err := store.Find(ctx, svc.store, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.EncryptedPrivateKey, unchanged.EncryptedPrivateKey)

	_, err = svc.ChangePassword(ctx, testPassword, []byte("short"))
	assert.ErrorIs(t, err, crypto.ErrWeakPassword)

	n, err := svc.ChangePassword(ctx, testPassword, newPassword)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := svc.store.GetAll(ctx)
	require.NoError(t, err)
	for _, r := range records {
		assert.Equal(t, r.PublicKey, decryptRecord(t, r, newPassword).PublicKey().String())
		_, err := crypto.DecryptPrivateKey(r.EncryptedPrivateKey, testPassword, r.Salt, r.IV)
		assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
	}
}

func TestUnlockKeys(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	record, _, err := svc.GenerateWallet(ctx, "w", testPassword)
	require.NoError(t, err)
	unknown := solana.NewWallet().PublicKey().String()

	keys, err := svc.UnlockKeys(ctx, []string{record.PublicKey, unknown, record.PublicKey}, testPassword)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, record.PublicKey, solana.PrivateKey(keys[record.PublicKey]).PublicKey().String())

	ref := keys[record.PublicKey]
	ClearKeys(keys)
	assert.Empty(t, keys)
	assert.Equal(t, make([]byte, len(ref)), ref)

	keys, err = svc.UnlockKeys(ctx, []string{record.PublicKey}, []byte("wrong password"))
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)
	assert.Nil(t, keys)
}

func TestGetBalances(t *testing.T) {
	svc, balances, _ := newTestService(t)
	ctx := context.Background()

	record, _, err := svc.GenerateWallet(ctx, "w", testPassword)
	require.NoError(t, err)

	balances.lamports = 24981836
	balances.tokens = []model.TokenHolding{{Mint: solana.NewWallet().PublicKey().String(), UIAmount: "12.5", Decimals: 6}}

	resp, err := svc.GetBalances(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.PublicKey, resp.Address)
	assert.Equal(t, "0.024981836", resp.SOL)
	assert.Equal(t, balances.tokens, resp.Tokens)

	balances.err = errors.New("rpc down")
	_, err = svc.GetBalances(ctx, record.ID)
	assert.Error(t, err)

	_, err = svc.GetBalances(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMigrateSingle(t *testing.T) {
	svc, _, migrator := newTestService(t)
	ctx := context.Background()

	record, _, err := svc.GenerateWallet(ctx, "w", testPassword)
	require.NoError(t, err)

	wrapped := false
	res, err := svc.MigrateSingle(ctx, model.MigrationRequest{SourceWallet: record.PublicKey}, testPassword,
		func(s migration.Signer) migration.Signer {
			wrapped = true
			return s
		})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, wrapped)
	assert.Equal(t, record.PublicKey, migrator.signedBy)
	assert.True(t, migrator.signer.PublicKey().IsZero(), "key is wiped once MigrateSingle returns")

	_, err = svc.MigrateSingle(ctx, model.MigrationRequest{SourceWallet: record.PublicKey}, []byte("wrong password"), nil)
	assert.ErrorIs(t, err, crypto.ErrDecryptionFailed)

	_, err = svc.MigrateSingle(ctx, model.MigrationRequest{SourceWallet: "unknown"}, testPassword, nil)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMigrateMulti_ClearsKeys(t *testing.T) {
	svc, _, migrator := newTestService(t)
	ctx := context.Background()

	a, _, err := svc.GenerateWallet(ctx, "a", testPassword)
	require.NoError(t, err)
	b, _, err := svc.GenerateWallet(ctx, "b", testPassword)
	require.NoError(t, err)

	res, err := svc.MigrateMulti(ctx, model.MultiWalletMigrationRequest{
		Wallets: []model.WalletSelection{{Address: a.PublicKey}, {Address: b.PublicKey}},
	}, testPassword, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, migrator.keys, 2)
	assert.Equal(t, a.PublicKey, solana.PrivateKey(migrator.keys[a.PublicKey]).PublicKey().String())
	for _, k := range migrator.keyRefs {
		assert.Equal(t, make([]byte, len(k)), k, "keys are zeroed once the batch completes")
	}
}

func TestMigrate_OneAtATime(t *testing.T) {
	svc, _, migrator := newTestService(t)
	ctx := context.Background()
	migrator.entered = make(chan struct{})
	migrator.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.MigrateMulti(ctx, model.MultiWalletMigrationRequest{}, testPassword, nil)
		done <- err
	}()
	<-migrator.entered

	_, err := svc.MigrateSingle(ctx, model.MigrationRequest{}, testPassword, nil)
	assert.ErrorIs(t, err, ErrMigrationInProgress)
	_, err = svc.MigrateMulti(ctx, model.MultiWalletMigrationRequest{}, testPassword, nil)
	assert.ErrorIs(t, err, ErrMigrationInProgress)

	close(migrator.release)
	require.NoError(t, <-done)
}

func TestBackupRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt backup cost is high")
	}
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	exportPassword := []byte("export password 1")

	record, _, err := svc.GenerateWallet(ctx, "cold", testPassword)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cold.cwt")
	require.NoError(t, svc.ExportBackup(ctx, record.ID, path, testPassword, exportPassword))
	assert.ErrorIs(t, svc.ExportBackup(ctx, record.ID, path, testPassword, exportPassword), crypto.ErrBackupExists)

	require.NoError(t, svc.DeleteWallet(ctx, record.ID))

	restored, err := svc.ImportBackup(ctx, path, exportPassword, testPassword, "")
	require.NoError(t, err)
	assert.Equal(t, record.PublicKey, restored.PublicKey)
	assert.Equal(t, "cold", restored.Name)
	assert.NotEqual(t, record.ID, restored.ID)

	_, err = svc.ImportBackup(ctx, path, []byte("wrong export pw"), testPassword, "")
	assert.ErrorIs(t, err, crypto.ErrBadBackup)
}

func TestVerifyPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.VerifyPassword(ctx, []byte("short")), crypto.ErrWeakPassword)
	assert.NoError(t, svc.VerifyPassword(ctx, []byte("any long password")))

	_, _, err := svc.GenerateWallet(ctx, "main", testPassword)
	require.NoError(t, err)

	assert.NoError(t, svc.VerifyPassword(ctx, testPassword))
	assert.ErrorIs(t, svc.VerifyPassword(ctx, []byte("wrong password!")), crypto.ErrDecryptionFailed)
}
