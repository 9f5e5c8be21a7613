package sqlite

import (
	"context"
	"fmt"

	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

// VIPEntries lists an account's buddy list in this world, resolving current
// player names. Entries whose player row vanished keep an empty name.
func (s *Store) VIPEntries(ctx context.Context, accountID uint32) ([]storage.VIPEntry, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT v.player_id, COALESCE(p.name, ''), v.description, v.icon, v.notify
		FROM account_viplist v
		LEFT JOIN players p ON p.id = v.player_id AND p.world_id = v.world_id
		WHERE v.account_id = ? AND v.world_id = ?
		ORDER BY v.player_id`,
		accountID, s.worldID)
	if err != nil {
		return nil, fmt.Errorf("query vip entries: %w", err)
	}
	defer rows.Close()

	var entries []storage.VIPEntry
	for rows.Next() {
		var entry storage.VIPEntry
		var notify int64
		if err := rows.Scan(&entry.PlayerID, &entry.Name, &entry.Description, &entry.Icon, &notify); err != nil {
			return nil, fmt.Errorf("scan vip entry: %w", err)
		}
		entry.Notify = notify != 0
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// AddVIPEntry adds a buddy to an account's list. Re-adding an existing buddy
// is a no-op so client retries stay harmless.
func (s *Store) AddVIPEntry(ctx context.Context, accountID, playerID uint32, description string, icon uint32, notify bool) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT OR IGNORE INTO account_viplist (account_id, player_id, world_id, description, icon, notify)
		VALUES (?, ?, ?, ?, ?, ?)`,
		accountID, playerID, s.worldID, description, icon, boolToInt(notify))
	if err != nil {
		return fmt.Errorf("insert vip entry: %w", err)
	}
	return nil
}

// EditVIPEntry updates an existing buddy's description, icon, and notify flag.
func (s *Store) EditVIPEntry(ctx context.Context, accountID, playerID uint32, description string, icon uint32, notify bool) error {
	_, err := s.sqlDB.ExecContext(ctx, `
		UPDATE account_viplist SET description = ?, icon = ?, notify = ?
		WHERE account_id = ? AND player_id = ? AND world_id = ?`,
		description, icon, boolToInt(notify), accountID, playerID, s.worldID)
	if err != nil {
		return fmt.Errorf("update vip entry: %w", err)
	}
	return nil
}

// RemoveVIPEntry removes a buddy and its group memberships.
func (s *Store) RemoveVIPEntry(ctx context.Context, accountID, playerID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM account_viplist WHERE account_id = ? AND player_id = ? AND world_id = ?",
		accountID, playerID, s.worldID)
	if err != nil {
		return fmt.Errorf("delete vip entry: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		"DELETE FROM account_vipgrouplist WHERE account_id = ? AND player_id = ?",
		accountID, playerID)
	if err != nil {
		return fmt.Errorf("delete vip group memberships: %w", err)
	}
	return nil
}

// VIPGroups lists an account's buddy-list groups.
func (s *Store) VIPGroups(ctx context.Context, accountID uint32) ([]storage.VIPGroup, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT id, name, customizable FROM account_vipgroups WHERE account_id = ? ORDER BY id",
		accountID)
	if err != nil {
		return nil, fmt.Errorf("query vip groups: %w", err)
	}
	defer rows.Close()

	var groups []storage.VIPGroup
	for rows.Next() {
		var group storage.VIPGroup
		var customizable int64
		if err := rows.Scan(&group.ID, &group.Name, &customizable); err != nil {
			return nil, fmt.Errorf("scan vip group: %w", err)
		}
		group.Customizable = customizable != 0
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

// AddVIPGroup creates a buddy-list group under the caller-chosen id.
func (s *Store) AddVIPGroup(ctx context.Context, groupID uint8, accountID uint32, name string, customizable bool) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO account_vipgroups (id, account_id, name, customizable) VALUES (?, ?, ?, ?)",
		groupID, accountID, name, boolToInt(customizable))
	if err != nil {
		return fmt.Errorf("insert vip group: %w", err)
	}
	return nil
}

// EditVIPGroup renames a buddy-list group.
func (s *Store) EditVIPGroup(ctx context.Context, groupID uint8, accountID uint32, name string, customizable bool) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"UPDATE account_vipgroups SET name = ?, customizable = ? WHERE id = ? AND account_id = ?",
		name, boolToInt(customizable), groupID, accountID)
	if err != nil {
		return fmt.Errorf("update vip group: %w", err)
	}
	return nil
}

// RemoveVIPGroup deletes a group and its memberships.
func (s *Store) RemoveVIPGroup(ctx context.Context, groupID uint8, accountID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM account_vipgroups WHERE id = ? AND account_id = ?",
		groupID, accountID)
	if err != nil {
		return fmt.Errorf("delete vip group: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx,
		"DELETE FROM account_vipgrouplist WHERE vipgroup_id = ? AND account_id = ?",
		groupID, accountID)
	if err != nil {
		return fmt.Errorf("delete vip group members: %w", err)
	}
	return nil
}

// AddVIPGroupMember assigns a buddy to a group.
func (s *Store) AddVIPGroupMember(ctx context.Context, groupID uint8, accountID, playerID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"INSERT OR IGNORE INTO account_vipgrouplist (account_id, player_id, vipgroup_id) VALUES (?, ?, ?)",
		accountID, playerID, groupID)
	if err != nil {
		return fmt.Errorf("insert vip group member: %w", err)
	}
	return nil
}

// RemoveVIPGroupMember removes a buddy from every group on the account.
func (s *Store) RemoveVIPGroupMember(ctx context.Context, accountID, playerID uint32) error {
	_, err := s.sqlDB.ExecContext(ctx,
		"DELETE FROM account_vipgrouplist WHERE account_id = ? AND player_id = ?",
		accountID, playerID)
	if err != nil {
		return fmt.Errorf("delete vip group member: %w", err)
	}
	return nil
}
