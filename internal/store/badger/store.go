// Package badger provides an embedded key-value wallet record store.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"

	"github.com/dgraph-io/badger/v3"
)

var (
	recordPrefix = []byte("wallet/")
	pubkeyPrefix = []byte("pubkey/")
)

type Store struct {
	db *badger.DB
}

var _ store.WalletRecordStore = (*Store)(nil)

// Open opens (or creates) a badger database in dir. An empty dir opens an
// in-memory database.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	if strings.TrimSpace(dir) == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil).WithSyncWrites(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func recordKey(id string) []byte {
	return append(append([]byte{}, recordPrefix...), id...)
}

func pubkeyKey(pk string) []byte {
	return append(append([]byte{}, pubkeyPrefix...), pk...)
}

func (s *Store) GetAll(ctx context.Context) ([]model.WalletRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]model.WalletRecord, 0, 8)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: recordPrefix, PrefetchValues: true, PrefetchSize: 64})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var r model.WalletRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return fmt.Errorf("decode wallet record %s: %w", it.Item().Key(), err)
			}
			records = append(records, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (s *Store) Save(ctx context.Context, records []model.WalletRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		for _, r := range records {
			if r.ID == "" || r.PublicKey == "" || r.EncryptedPrivateKey == "" {
				return errors.New("wallet id, public key and encrypted key are required")
			}
			for _, key := range [][]byte{recordKey(r.ID), pubkeyKey(r.PublicKey)} {
				_, err := txn.Get(key)
				if err == nil {
					return store.ErrAlreadyExists
				}
				if !errors.Is(err, badger.ErrKeyNotFound) {
					return err
				}
			}
			if err := putRecord(txn, r); err != nil {
				return err
			}
			if err := txn.Set(pubkeyKey(r.PublicKey), []byte(r.ID)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) Update(ctx context.Context, record model.WalletRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		current, err := getRecord(txn, record.ID)
		if err != nil {
			return err
		}
		if current.PublicKey != record.PublicKey {
			return store.ErrNotFound
		}
		current.Name = record.Name
		current.EncryptedPrivateKey = record.EncryptedPrivateKey
		current.Salt = record.Salt
		current.IV = record.IV
		return putRecord(txn, current)
	})
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		current, err := getRecord(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(recordKey(id)); err != nil {
			return err
		}
		return txn.Delete(pubkeyKey(current.PublicKey))
	})
}

func getRecord(txn *badger.Txn, id string) (model.WalletRecord, error) {
	item, err := txn.Get(recordKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.WalletRecord{}, store.ErrNotFound
	}
	if err != nil {
		return model.WalletRecord{}, err
	}

	var r model.WalletRecord
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &r)
	})
	return r, err
}

func putRecord(txn *badger.Txn, r model.WalletRecord) error {
	bs, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return txn.Set(recordKey(r.ID), bs)
}
