package badger

import (
	"context"
	"testing"
	"time"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(id, pk string, createdAt time.Time) model.WalletRecord {
	return model.WalletRecord{
		ID:                  id,
		Name:                "wallet " + id,
		PublicKey:           pk,
		EncryptedPrivateKey: "cipher",
		Salt:                "salt",
		IV:                  "iv",
		CreatedAt:           createdAt,
	}
}

func TestBadgerStoreLifecycle(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.Save(ctx, []model.WalletRecord{
		record("b", "pk-b", now.Add(time.Second)),
		record("a", "pk-a", now),
	}))

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)

	renamed := all[0]
	renamed.Name = "savings"
	require.NoError(t, s.Update(ctx, renamed))

	got, err := store.FindByPublicKey(ctx, s, "pk-a")
	require.NoError(t, err)
	assert.Equal(t, "savings", got.Name)

	require.NoError(t, s.Delete(ctx, "a"))
	assert.ErrorIs(t, s.Delete(ctx, "a"), store.ErrNotFound)

	// public key index is released on delete
	require.NoError(t, s.Save(ctx, []model.WalletRecord{record("c", "pk-a", now)}))
}

func TestBadgerSaveRejectsDuplicates(t *testing.T) {
	s := openTempStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, s.Save(ctx, []model.WalletRecord{record("a", "pk-a", now)}))

	err := s.Save(ctx, []model.WalletRecord{record("x", "pk-x", now), record("a", "pk-new", now)})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	all, err := s.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBadgerInMemory(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(context.Background(), []model.WalletRecord{record("a", "pk-a", time.Now())}))
	all, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
