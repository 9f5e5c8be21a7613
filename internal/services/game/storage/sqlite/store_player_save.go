package sqlite

import (
	"context"
	"fmt"
	"sort"

	"github.com/duskhaven/duskhaven/internal/services/game/domain/player"
	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

// Saver step collaborators. Each method writes one sub-aggregate through the
// transaction handle it is given; satellite tables are replaced wholesale
// (delete then insert) so the stored state always mirrors the aggregate.

// SaveBase upserts the scalar player row.
func (s *Store) SaveBase(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if p.ID == 0 {
		return fmt.Errorf("player id is required")
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO players (
			id, world_id, account_id, name, group_id, sex, vocation, balance,
			level, experience, maglevel, manaspent,
			health, healthmax, mana, manamax, soul, cap,
			town_id, posx, posy, posz, lastlogin, lastlogout,
			conditions, blessings,
			looktype, lookhead, lookbody, looklegs, lookfeet, lookaddons,
			skull, skulltime,
			skill_fist, skill_fist_tries, skill_club, skill_club_tries,
			skill_sword, skill_sword_tries, skill_axe, skill_axe_tries,
			skill_dist, skill_dist_tries, skill_shielding, skill_shielding_tries,
			skill_fishing, skill_fishing_tries
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?,
			?, ?, ?, ?, ?, ?,
			?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?, ?, ?,
			?, ?
		)
		ON CONFLICT (id) DO UPDATE SET
			account_id = excluded.account_id,
			name = excluded.name,
			group_id = excluded.group_id,
			sex = excluded.sex,
			vocation = excluded.vocation,
			balance = excluded.balance,
			level = excluded.level,
			experience = excluded.experience,
			maglevel = excluded.maglevel,
			manaspent = excluded.manaspent,
			health = excluded.health,
			healthmax = excluded.healthmax,
			mana = excluded.mana,
			manamax = excluded.manamax,
			soul = excluded.soul,
			cap = excluded.cap,
			town_id = excluded.town_id,
			posx = excluded.posx,
			posy = excluded.posy,
			posz = excluded.posz,
			lastlogin = excluded.lastlogin,
			lastlogout = excluded.lastlogout,
			conditions = excluded.conditions,
			blessings = excluded.blessings,
			looktype = excluded.looktype,
			lookhead = excluded.lookhead,
			lookbody = excluded.lookbody,
			looklegs = excluded.looklegs,
			lookfeet = excluded.lookfeet,
			lookaddons = excluded.lookaddons,
			skull = excluded.skull,
			skulltime = excluded.skulltime,
			skill_fist = excluded.skill_fist,
			skill_fist_tries = excluded.skill_fist_tries,
			skill_club = excluded.skill_club,
			skill_club_tries = excluded.skill_club_tries,
			skill_sword = excluded.skill_sword,
			skill_sword_tries = excluded.skill_sword_tries,
			skill_axe = excluded.skill_axe,
			skill_axe_tries = excluded.skill_axe_tries,
			skill_dist = excluded.skill_dist,
			skill_dist_tries = excluded.skill_dist_tries,
			skill_shielding = excluded.skill_shielding,
			skill_shielding_tries = excluded.skill_shielding_tries,
			skill_fishing = excluded.skill_fishing,
			skill_fishing_tries = excluded.skill_fishing_tries`,
		p.ID, p.WorldID, p.AccountID, p.Name, p.GroupID, p.Sex, p.Vocation, p.Balance,
		p.Level, p.Experience, p.MagicLevel, p.ManaSpent,
		p.Health, p.HealthMax, p.Mana, p.ManaMax, p.Soul, p.Capacity,
		p.TownID, p.Position.X, p.Position.Y, p.Position.Z, p.LastLogin, p.LastLogout,
		p.Conditions, p.Blessings[:],
		p.Outfit.LookType, p.Outfit.LookHead, p.Outfit.LookBody, p.Outfit.LookLegs, p.Outfit.LookFeet, p.Outfit.LookAddons,
		p.Skull, p.SkullTicks,
		p.Skills[player.SkillFist].Level, p.Skills[player.SkillFist].Tries,
		p.Skills[player.SkillClub].Level, p.Skills[player.SkillClub].Tries,
		p.Skills[player.SkillSword].Level, p.Skills[player.SkillSword].Tries,
		p.Skills[player.SkillAxe].Level, p.Skills[player.SkillAxe].Tries,
		p.Skills[player.SkillDistance].Level, p.Skills[player.SkillDistance].Tries,
		p.Skills[player.SkillShielding].Level, p.Skills[player.SkillShielding].Tries,
		p.Skills[player.SkillFishing].Level, p.Skills[player.SkillFishing].Tries,
	)
	if err != nil {
		return fmt.Errorf("upsert player row: %w", err)
	}
	// Guild membership rides with the base row: one row per member, deleted
	// when the player left the guild since the last save.
	if _, err := tx.ExecContext(ctx, "DELETE FROM guild_membership WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear guild membership: %w", err)
	}
	if p.Guild != nil {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO guild_membership (player_id, guild_id, rank_id, nick) VALUES (?, ?, ?, ?)",
			p.ID, p.Guild.GuildID, p.Guild.RankID, p.Guild.Nick)
		if err != nil {
			return fmt.Errorf("insert guild membership: %w", err)
		}
	}
	return nil
}

// SaveStash replaces the stowed item counts.
func (s *Store) SaveStash(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM player_stash WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear stash: %w", err)
	}
	for itemType, count := range p.Stash {
		if count == 0 {
			continue
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO player_stash (player_id, item_type, item_count) VALUES (?, ?, ?)",
			p.ID, itemType, count)
		if err != nil {
			return fmt.Errorf("insert stash row: %w", err)
		}
	}
	return nil
}

// SaveSpells replaces the learned spell list.
func (s *Store) SaveSpells(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM player_spells WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear spells: %w", err)
	}
	for _, name := range p.InstantSpells {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO player_spells (player_id, name) VALUES (?, ?)",
			p.ID, name)
		if err != nil {
			return fmt.Errorf("insert spell row: %w", err)
		}
	}
	return nil
}

// SaveKills replaces the frag record.
func (s *Store) SaveKills(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM player_kills WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear kills: %w", err)
	}
	for _, kill := range p.Kills {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO player_kills (player_id, time, target, unavenged) VALUES (?, ?, ?, ?)",
			p.ID, kill.Time, kill.Target, boolToInt(kill.Unavenged))
		if err != nil {
			return fmt.Errorf("insert kill row: %w", err)
		}
	}
	return nil
}

// SaveCharms upserts bestiary charm progression.
func (s *Store) SaveCharms(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO player_charms (player_id, points, expansion, unlocked_runes, active_runes)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			points = excluded.points,
			expansion = excluded.expansion,
			unlocked_runes = excluded.unlocked_runes,
			active_runes = excluded.active_runes`,
		p.ID, p.Charms.Points, boolToInt(p.Charms.Expansion), p.Charms.UnlockedRunes, p.Charms.ActiveRunes)
	if err != nil {
		return fmt.Errorf("upsert charms: %w", err)
	}
	return nil
}

// SaveInventory replaces the carried item tree and the store inbox that hangs
// off it.
func (s *Store) SaveInventory(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if err := s.replaceItemList(ctx, tx, "player_items", p.ID, p.Inventory); err != nil {
		return err
	}
	return s.replaceItemList(ctx, tx, "player_storeinbox_items", p.ID, p.StoreInbox)
}

// SaveDepots replaces every depot item tree.
func (s *Store) SaveDepots(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM player_depot_items WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear depot items: %w", err)
	}

	depotIDs := make([]uint32, 0, len(p.Depots))
	for depotID := range p.Depots {
		depotIDs = append(depotIDs, depotID)
	}
	sort.Slice(depotIDs, func(i, j int) bool { return depotIDs[i] < depotIDs[j] })

	for _, depotID := range depotIDs {
		for _, item := range p.Depots[depotID] {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO player_depot_items (player_id, depot_id, sid, pid, itemtype, count, attributes) VALUES (?, ?, ?, ?, ?, ?, ?)",
				p.ID, depotID, item.Serial, item.Parent, item.TypeID, item.Count, item.Attributes)
			if err != nil {
				return fmt.Errorf("insert depot item: %w", err)
			}
		}
	}
	return nil
}

// SaveRewards replaces the unclaimed boss reward items.
func (s *Store) SaveRewards(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	return s.replaceItemList(ctx, tx, "player_reward_items", p.ID, p.Rewards)
}

// SaveInbox replaces the mail inbox item tree.
func (s *Store) SaveInbox(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	return s.replaceItemList(ctx, tx, "player_inbox_items", p.ID, p.InboxItems)
}

// SavePrey replaces the prey hunting slots.
func (s *Store) SavePrey(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM player_prey WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear prey slots: %w", err)
	}
	for _, slot := range p.PreySlots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO player_prey (player_id, slot, state, raceid, option, bonus_type, bonus_rarity, bonus_percentage, bonus_time, free_rerolls, monster_list)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, slot.Slot, slot.State, slot.RaceID, slot.Option, slot.BonusType,
			slot.BonusRarity, slot.BonusPercentage, slot.BonusTimeLeft, slot.FreeRerolls, slot.MonsterList)
		if err != nil {
			return fmt.Errorf("insert prey slot: %w", err)
		}
	}
	return nil
}

// SaveTaskHunting replaces the task hunting slots.
func (s *Store) SaveTaskHunting(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM player_taskhunt WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear task hunting slots: %w", err)
	}
	for _, slot := range p.TaskHuntingSlots {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO player_taskhunt (player_id, slot, state, raceid, upgrade, kills, rarity, free_rerolls, monster_list)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, slot.Slot, slot.State, slot.RaceID, boolToInt(slot.Upgrade), slot.Kills,
			slot.Rarity, slot.FreeRerolls, slot.MonsterList)
		if err != nil {
			return fmt.Errorf("insert task hunting slot: %w", err)
		}
	}
	return nil
}

// SaveForgeHistory replaces the forge action log. The log is append-only in
// normal play, but replacing keeps the save idempotent after rollbacks.
func (s *Store) SaveForgeHistory(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM forge_history WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear forge history: %w", err)
	}
	for _, entry := range p.ForgeHistory {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO forge_history (player_id, action_type, description, is_success, done_at) VALUES (?, ?, ?, ?, ?)",
			p.ID, entry.ActionType, entry.Description, boolToInt(entry.Success), entry.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert forge history row: %w", err)
		}
	}
	return nil
}

// SaveBosstiary upserts boss progression.
func (s *Store) SaveBosstiary(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO player_bosstiary (player_id, points, slot_one, slot_two, remove_times)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			points = excluded.points,
			slot_one = excluded.slot_one,
			slot_two = excluded.slot_two,
			remove_times = excluded.remove_times`,
		p.ID, p.Bosstiary.Points, p.Bosstiary.SlotOne, p.Bosstiary.SlotTwo, p.Bosstiary.RemoveTimes)
	if err != nil {
		return fmt.Errorf("upsert bosstiary: %w", err)
	}
	return nil
}

// SaveWheel upserts wheel progression.
func (s *Store) SaveWheel(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO player_wheel (player_id, points, slot_data)
		VALUES (?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			points = excluded.points,
			slot_data = excluded.slot_data`,
		p.ID, p.Wheel.Points, p.Wheel.SlotData)
	if err != nil {
		return fmt.Errorf("upsert wheel: %w", err)
	}
	return nil
}

// SaveStorage replaces the script-visible key-value map.
func (s *Store) SaveStorage(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM player_storage WHERE player_id = ?", p.ID); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	for key, value := range p.Storage {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO player_storage (player_id, key, value) VALUES (?, ?, ?)",
			p.ID, key, value)
		if err != nil {
			return fmt.Errorf("insert storage row: %w", err)
		}
	}
	return nil
}

// replaceItemList validates and rewrites one satellite item table for a
// player inside the caller's transaction.
func (s *Store) replaceItemList(ctx context.Context, tx storage.DBTX, table string, playerID uint32, list player.ItemList) error {
	if err := list.Validate(); err != nil {
		return malformedItems(table, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE player_id = ?", playerID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	for _, item := range list {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO "+table+" (player_id, sid, pid, itemtype, count, attributes) VALUES (?, ?, ?, ?, ?, ?)",
			playerID, item.Serial, item.Parent, item.TypeID, item.Count, item.Attributes)
		if err != nil {
			return fmt.Errorf("insert %s row: %w", table, err)
		}
	}
	return nil
}
