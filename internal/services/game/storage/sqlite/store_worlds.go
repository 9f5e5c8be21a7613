package sqlite

import (
	"context"
	"fmt"

	"github.com/duskhaven/duskhaven/internal/services/game/domain/world"
)

// ListWorlds returns every registered world ordered by id.
func (s *Store) ListWorlds(ctx context.Context) ([]world.World, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT id, name, type, motd, location, ip, port, creation FROM worlds ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query worlds: %w", err)
	}
	defer rows.Close()

	var worlds []world.World
	for rows.Next() {
		var w world.World
		if err := rows.Scan(&w.ID, &w.Name, &w.Type, &w.MOTD, &w.Location, &w.IP, &w.Port, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan world: %w", err)
		}
		worlds = append(worlds, w)
	}
	return worlds, rows.Err()
}

// CreateWorld registers a world and returns its assigned id.
func (s *Store) CreateWorld(ctx context.Context, w world.World) (uint32, error) {
	if w.Name == "" {
		return 0, fmt.Errorf("world name is required")
	}
	result, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO worlds (name, type, motd, location, ip, port, creation) VALUES (?, ?, ?, ?, ?, ?, ?)",
		w.Name, w.Type, w.MOTD, w.Location, w.IP, w.Port, w.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("insert world: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read world id: %w", err)
	}
	return uint32(id), nil
}

// EnsureDefaultWorld registers w only when the registry is empty. First boot
// of a fresh database gets one world without operator intervention.
func (s *Store) EnsureDefaultWorld(ctx context.Context, w world.World) error {
	var count int
	row := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM worlds")
	if err := row.Scan(&count); err != nil {
		return fmt.Errorf("count worlds: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := s.CreateWorld(ctx, w); err != nil {
		return fmt.Errorf("create default world: %w", err)
	}
	return nil
}
