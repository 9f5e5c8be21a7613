package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/duskhaven/duskhaven/internal/services/game/playerio"
	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

// FetchByID resolves a player base row by id within the store's world.
func (s *Store) FetchByID(ctx context.Context, id uint32) (*playerio.Row, error) {
	if id == 0 {
		return nil, fmt.Errorf("player id is required")
	}
	return s.fetchPlayerRow(ctx, "id = ? AND world_id = ?", id, s.worldID)
}

// FetchByName resolves a player base row by canonical name within the
// store's world.
func (s *Store) FetchByName(ctx context.Context, name string) (*playerio.Row, error) {
	if name == "" {
		return nil, fmt.Errorf("player name is required")
	}
	return s.fetchPlayerRow(ctx, "name = ? AND world_id = ?", name, s.worldID)
}

// fetchPlayerRow snapshots one players row into an immutable column map.
// Loader steps read the snapshot; no live cursor escapes this call.
func (s *Store) fetchPlayerRow(ctx context.Context, where string, args ...any) (*playerio.Row, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT * FROM players WHERE "+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query player row: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("iterate player row: %w", err)
		}
		return nil, storage.ErrNotFound
	}

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read player columns: %w", err)
	}
	values := make([]any, len(columns))
	pointers := make([]any, len(columns))
	for i := range values {
		pointers[i] = &values[i]
	}
	if err := rows.Scan(pointers...); err != nil {
		return nil, fmt.Errorf("scan player row: %w", err)
	}

	cols := make(map[string]any, len(columns))
	for i, name := range columns {
		if blob, ok := values[i].([]byte); ok {
			copied := make([]byte, len(blob))
			copy(copied, blob)
			cols[name] = copied
			continue
		}
		cols[name] = values[i]
	}
	return playerio.NewRow(cols), nil
}

// GUIDByName returns the player id for a name, or storage.ErrNotFound.
func (s *Store) GUIDByName(ctx context.Context, name string) (uint32, error) {
	var id uint32
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id FROM players WHERE name = ? AND world_id = ?", name, s.worldID)
	if err := row.Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, storage.ErrNotFound
		}
		return 0, fmt.Errorf("guid by name: %w", err)
	}
	return id, nil
}

// NameByGUID returns the stored display name for a player id.
func (s *Store) NameByGUID(ctx context.Context, id uint32) (string, error) {
	var name string
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT name FROM players WHERE id = ? AND world_id = ?", id, s.worldID)
	if err := row.Scan(&name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("name by guid: %w", err)
	}
	return name, nil
}

// LookupPlayer resolves the identity projection used by invite and VIP flows.
func (s *Store) LookupPlayer(ctx context.Context, name string) (storage.PlayerLookup, error) {
	var lookup storage.PlayerLookup
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id, name, group_id, account_id FROM players WHERE name = ? AND world_id = ?",
		name, s.worldID)
	if err := row.Scan(&lookup.ID, &lookup.Name, &lookup.GroupID, &lookup.AccountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.PlayerLookup{}, storage.ErrNotFound
		}
		return storage.PlayerLookup{}, fmt.Errorf("lookup player: %w", err)
	}
	return lookup, nil
}

// FormatPlayerName echoes the canonical stored casing for a name.
func (s *Store) FormatPlayerName(ctx context.Context, name string) (string, error) {
	var stored string
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT name FROM players WHERE name = ? COLLATE NOCASE AND world_id = ?",
		name, s.worldID)
	if err := row.Scan(&stored); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("format player name: %w", err)
	}
	return stored, nil
}

// IncreaseBankBalance adds amount to a player's bank balance.
func (s *Store) IncreaseBankBalance(ctx context.Context, id uint32, amount uint64) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"UPDATE players SET balance = balance + ? WHERE id = ? AND world_id = ?",
		amount, id, s.worldID)
	if err != nil {
		return fmt.Errorf("increase bank balance: %w", err)
	}
	return nil
}

// HasBiddedOnHouse reports whether a player is the highest bidder on any
// house in the store's world.
func (s *Store) HasBiddedOnHouse(ctx context.Context, id uint32) (bool, error) {
	var houseID uint32
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT id FROM houses WHERE highest_bidder = ? AND world_id = ? LIMIT 1",
		id, s.worldID)
	if err := row.Scan(&houseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("house bid lookup: %w", err)
	}
	return true, nil
}
