// Package store defines persistence of WalletRecords.
package store

import (
	"context"
	"errors"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"
)

var (
	ErrNotFound      = errors.New("wallet record not found")
	ErrAlreadyExists = errors.New("wallet record already exists")
)

// WalletRecordStore persists wallet records opaquely. Implementations never
// see plaintext key material.
type WalletRecordStore interface {
	// GetAll returns every record ordered by creation time.
	GetAll(ctx context.Context) ([]model.WalletRecord, error)
	// Save inserts records atomically; an id or public key collision fails the whole call.
	Save(ctx context.Context, records []model.WalletRecord) error
	// Update replaces an existing record with the same id.
	Update(ctx context.Context, record model.WalletRecord) error
	// Delete removes a record permanently.
	Delete(ctx context.Context, id string) error
	Close() error
}

// Find returns the record with the given id.
func Find(ctx context.Context, s WalletRecordStore, id string) (model.WalletRecord, error) {
	records, err := s.GetAll(ctx)
	if err != nil {
		return model.WalletRecord{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return model.WalletRecord{}, ErrNotFound
}

// FindByPublicKey returns the record whose public key equals address.
func FindByPublicKey(ctx context.Context, s WalletRecordStore, address string) (model.WalletRecord, error) {
	records, err := s.GetAll(ctx)
	if err != nil {
		return model.WalletRecord{}, err
	}
	for _, r := range records {
		if r.PublicKey == address {
			return r, nil
		}
	}
	return model.WalletRecord{}, ErrNotFound
}
