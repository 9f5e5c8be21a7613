package sqlite

import (
	"context"
	"fmt"
)

// InsertOnline records a player as online in a world. Inserting an already
// present pair is a no-op so the tracker can stay idempotent.
func (s *Store) InsertOnline(ctx context.Context, playerID, worldID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT OR IGNORE INTO players_online (player_id, world_id) VALUES (?, ?)",
		playerID, worldID)
	if err != nil {
		return fmt.Errorf("insert online row: %w", err)
	}
	return nil
}

// DeleteOnline removes a player's online row for a world. Deleting a missing
// pair is a no-op.
func (s *Store) DeleteOnline(ctx context.Context, playerID, worldID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM players_online WHERE player_id = ? AND world_id = ?",
		playerID, worldID)
	if err != nil {
		return fmt.Errorf("delete online row: %w", err)
	}
	return nil
}

// CountOnline reports how many players hold an online row in a world.
func (s *Store) CountOnline(ctx context.Context, worldID uint32) (int, error) {
	var count int
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM players_online WHERE world_id = ?", worldID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count online rows: %w", err)
	}
	return count, nil
}
