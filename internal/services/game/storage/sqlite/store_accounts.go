package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

// AccountByDescriptor resolves an account row by its login identifier.
func (s *Store) AccountByDescriptor(ctx context.Context, descriptor string) (storage.AccountRecord, error) {
	var account storage.AccountRecord
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, descriptor, password, type FROM accounts WHERE descriptor = ?",
		descriptor)
	if err := row.Scan(&account.ID, &account.Descriptor, &account.PasswordDigest, &account.Type); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.AccountRecord{}, storage.ErrNotFound
		}
		return storage.AccountRecord{}, fmt.Errorf("account by descriptor: %w", err)
	}
	return account, nil
}

// AccountType returns the account privilege tier. A missing account row is
// treated as a normal account rather than an error.
func (s *Store) AccountType(ctx context.Context, accountID uint32) (uint8, error) {
	var accountType uint8
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT type FROM accounts WHERE id = ?", accountID)
	if err := row.Scan(&accountType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("account type: %w", err)
	}
	return accountType, nil
}

// CharactersByAccount lists an account's characters in this world with their
// deletion markers.
func (s *Store) CharactersByAccount(ctx context.Context, accountID uint32) ([]storage.CharacterSummary, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT name, deletion FROM players WHERE account_id = ? AND world_id = ? ORDER BY name",
		accountID, s.worldID)
	if err != nil {
		return nil, fmt.Errorf("query account characters: %w", err)
	}
	defer rows.Close()

	var characters []storage.CharacterSummary
	for rows.Next() {
		var summary storage.CharacterSummary
		if err := rows.Scan(&summary.Name, &summary.DeletionTime); err != nil {
			return nil, fmt.Errorf("scan character summary: %w", err)
		}
		characters = append(characters, summary)
	}
	return characters, rows.Err()
}

// CreateAccount registers a new account and returns its id.
func (s *Store) CreateAccount(ctx context.Context, descriptor, passwordDigest string, accountType uint8) (uint32, error) {
	if descriptor == "" {
		return 0, fmt.Errorf("account descriptor is required")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO accounts (descriptor, password, type) VALUES (?, ?, ?)",
		descriptor, passwordDigest, accountType)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read account id: %w", err)
	}
	return uint32(id), nil
}
