// Package sqlite provides a SQLite-backed wallet record store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AlexZinkM/wallet-consolidator/internal/model"
	"github.com/AlexZinkM/wallet-consolidator/internal/store"
	"github.com/AlexZinkM/wallet-consolidator/internal/store/sqlite/migrations"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists wallet records in SQLite.
type Store struct {
	sqlDB *sql.DB
}

var _ store.WalletRecordStore = (*Store)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite wallet store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(FULL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// GetAll returns every wallet record, oldest first.
func (s *Store) GetAll(ctx context.Context) ([]model.WalletRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, name, public_key, encrypted_private_key, salt, iv, created_at
		   FROM wallet_records
		  ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list wallet records: %w", err)
	}
	defer rows.Close()

	records := make([]model.WalletRecord, 0, 8)
	for rows.Next() {
		var (
			r         model.WalletRecord
			createdAt int64
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.PublicKey, &r.EncryptedPrivateKey, &r.Salt, &r.IV, &createdAt); err != nil {
			return nil, fmt.Errorf("scan wallet record: %w", err)
		}
		r.CreatedAt = fromMillis(createdAt)
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallet records: %w", err)
	}
	return records, nil
}

// Save inserts all records in one transaction.
func (s *Store) Save(ctx context.Context, records []model.WalletRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, r := range records {
		if err := validate(r); err != nil {
			return err
		}
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	for _, r := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO wallet_records (
			   id, name, public_key, encrypted_private_key, salt, iv, created_at
			 ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.PublicKey, r.EncryptedPrivateKey, r.Salt, r.IV, toMillis(r.CreatedAt),
		)
		if err != nil {
			_ = tx.Rollback()
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists
			}
			return fmt.Errorf("insert wallet record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Update replaces name and encrypted material of an existing record.
// id, public key and creation time are immutable.
func (s *Store) Update(ctx context.Context, record model.WalletRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(record); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE wallet_records
		    SET name = ?, encrypted_private_key = ?, salt = ?, iv = ?
		  WHERE id = ? AND public_key = ?`,
		record.Name, record.EncryptedPrivateKey, record.Salt, record.IV, record.ID, record.PublicKey,
	)
	if err != nil {
		return fmt.Errorf("update wallet record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update wallet record: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM wallet_records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete wallet record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete wallet record: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func validate(r model.WalletRecord) error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("wallet id is required")
	case strings.TrimSpace(r.PublicKey) == "":
		return fmt.Errorf("public key is required")
	case r.EncryptedPrivateKey == "" || r.Salt == "" || r.IV == "":
		return fmt.Errorf("encrypted key material is required")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
