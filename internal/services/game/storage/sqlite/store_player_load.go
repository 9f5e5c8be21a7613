package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/duskhaven/duskhaven/internal/platform/errors"
	"github.com/duskhaven/duskhaven/internal/services/game/domain/player"
	"github.com/duskhaven/duskhaven/internal/services/game/playerio"
)

// Loader step collaborators. Every method owns one sub-aggregate; steps that
// need more than the base row issue their own satellite queries keyed by the
// player id established by LoadBase.

// LoadBase populates identity, vitals, and position from the base row.
func (s *Store) LoadBase(ctx context.Context, p *player.Player, row *playerio.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.ID = row.Uint32("id")
	p.AccountID = row.Uint32("account_id")
	p.Name = row.String("name")
	p.GroupID = row.Uint16("group_id")
	p.Sex = row.Uint8("sex")
	p.Vocation = row.Uint8("vocation")
	p.Balance = row.Uint64("balance")
	p.Health = row.Int32("health")
	p.HealthMax = row.Int32("healthmax")
	p.Mana = row.Int32("mana")
	p.ManaMax = row.Int32("manamax")
	p.Soul = row.Uint8("soul")
	p.Capacity = row.Uint32("cap")
	p.TownID = row.Uint32("town_id")
	p.Position = player.Position{
		X: row.Uint16("posx"),
		Y: row.Uint16("posy"),
		Z: row.Uint8("posz"),
	}
	p.LastLogin = row.Int64("lastlogin")
	p.LastLogout = row.Int64("lastlogout")
	return row.Err()
}

// LoadExperience populates level and progression counters.
func (s *Store) LoadExperience(ctx context.Context, p *player.Player, row *playerio.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Level = row.Uint32("level")
	p.Experience = row.Uint64("experience")
	p.MagicLevel = row.Uint16("maglevel")
	p.ManaSpent = row.Uint64("manaspent")
	return row.Err()
}

// LoadBlessings unpacks the fixed-width blessing blob.
func (s *Store) LoadBlessings(ctx context.Context, p *player.Player, row *playerio.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	blob := row.Bytes("blessings")
	if err := row.Err(); err != nil {
		return err
	}
	if len(blob) != player.BlessingCount {
		return apperrors.WithMetadata(
			apperrors.CodeMalformedRow,
			fmt.Sprintf("malformed player row: blessings blob has %d bytes, want %d", len(blob), player.BlessingCount),
			map[string]string{"column": "blessings"},
		)
	}
	copy(p.Blessings[:], blob)
	return nil
}

// LoadConditions copies the opaque serialized condition blob.
func (s *Store) LoadConditions(ctx context.Context, p *player.Player, row *playerio.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Conditions = row.Bytes("conditions")
	return row.Err()
}

// LoadOutfit populates the persisted look.
func (s *Store) LoadOutfit(ctx context.Context, p *player.Player, row *playerio.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Outfit = player.Outfit{
		LookType:   row.Uint16("looktype"),
		LookHead:   row.Uint16("lookhead"),
		LookBody:   row.Uint16("lookbody"),
		LookLegs:   row.Uint16("looklegs"),
		LookFeet:   row.Uint16("lookfeet"),
		LookAddons: row.Uint8("lookaddons"),
	}
	return row.Err()
}

// LoadSkull populates skull state.
func (s *Store) LoadSkull(ctx context.Context, p *player.Player, row *playerio.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.Skull = row.Uint8("skull")
	p.SkullTicks = row.Int64("skulltime")
	return row.Err()
}

var skillColumns = [player.SkillCount][2]string{
	{"skill_fist", "skill_fist_tries"},
	{"skill_club", "skill_club_tries"},
	{"skill_sword", "skill_sword_tries"},
	{"skill_axe", "skill_axe_tries"},
	{"skill_dist", "skill_dist_tries"},
	{"skill_shielding", "skill_shielding_tries"},
	{"skill_fishing", "skill_fishing_tries"},
}

// LoadSkills populates the seven trainable skills.
func (s *Store) LoadSkills(ctx context.Context, p *player.Player, row *playerio.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for i, cols := range skillColumns {
		p.Skills[i] = player.Skill{
			Level: row.Uint16(cols[0]),
			Tries: row.Uint64(cols[1]),
		}
	}
	return row.Err()
}

// LoadKills loads the frag record.
func (s *Store) LoadKills(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT time, target, unavenged FROM player_kills WHERE player_id = ? ORDER BY time",
		p.ID)
	if err != nil {
		return fmt.Errorf("query player kills: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var kill player.Kill
		var unavenged int64
		if err := rows.Scan(&kill.Time, &kill.Target, &unavenged); err != nil {
			return fmt.Errorf("scan player kill: %w", err)
		}
		kill.Unavenged = unavenged != 0
		p.Kills = append(p.Kills, kill)
	}
	return rows.Err()
}

// LoadGuild loads guild membership; guildless players keep a nil membership.
func (s *Store) LoadGuild(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	var membership player.GuildMembership
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT guild_id, rank_id, nick FROM guild_membership WHERE player_id = ?",
		p.ID)
	if err := row.Scan(&membership.GuildID, &membership.RankID, &membership.Nick); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p.Guild = nil
			return nil
		}
		return fmt.Errorf("query guild membership: %w", err)
	}
	p.Guild = &membership
	return nil
}

// LoadStash loads stowed item counts.
func (s *Store) LoadStash(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT item_type, item_count FROM player_stash WHERE player_id = ?",
		p.ID)
	if err != nil {
		return fmt.Errorf("query player stash: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemType uint16
		var count uint32
		if err := rows.Scan(&itemType, &count); err != nil {
			return fmt.Errorf("scan stash row: %w", err)
		}
		p.Stash[itemType] = count
	}
	return rows.Err()
}

// LoadCharms loads bestiary charm progression; absent rows mean a fresh tracker.
func (s *Store) LoadCharms(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	var expansion int64
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT points, expansion, unlocked_runes, active_runes FROM player_charms WHERE player_id = ?",
		p.ID)
	err := row.Scan(&p.Charms.Points, &expansion, &p.Charms.UnlockedRunes, &p.Charms.ActiveRunes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p.Charms = player.CharmTracker{}
			return nil
		}
		return fmt.Errorf("query player charms: %w", err)
	}
	p.Charms.Expansion = expansion != 0
	return nil
}

// LoadInventory loads the carried item tree. It establishes the root
// containers the store-inbox, depot, reward, and inbox steps attach to, which
// is why those steps must stay after this one.
func (s *Store) LoadInventory(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	list, err := s.queryItemList(ctx, "player_items", p.ID)
	if err != nil {
		return err
	}
	p.Inventory = list
	return nil
}

// LoadStoreInbox loads purchased items pending delivery.
func (s *Store) LoadStoreInbox(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	list, err := s.queryItemList(ctx, "player_storeinbox_items", p.ID)
	if err != nil {
		return err
	}
	p.StoreInbox = list
	return nil
}

// LoadDepots loads every depot item tree, grouped by depot id.
func (s *Store) LoadDepots(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT depot_id, sid, pid, itemtype, count, attributes FROM player_depot_items WHERE player_id = ? ORDER BY depot_id, sid",
		p.ID)
	if err != nil {
		return fmt.Errorf("query depot items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var depotID uint32
		var item player.Item
		if err := rows.Scan(&depotID, &item.Serial, &item.Parent, &item.TypeID, &item.Count, &item.Attributes); err != nil {
			return fmt.Errorf("scan depot item: %w", err)
		}
		p.Depots[depotID] = append(p.Depots[depotID], item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for depotID, list := range p.Depots {
		if err := list.Validate(); err != nil {
			return malformedItems(fmt.Sprintf("player_depot_items depot %d", depotID), err)
		}
	}
	return nil
}

// LoadRewards loads unclaimed boss reward items.
func (s *Store) LoadRewards(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	list, err := s.queryItemList(ctx, "player_reward_items", p.ID)
	if err != nil {
		return err
	}
	p.Rewards = list
	return nil
}

// LoadInbox loads the mail inbox item tree.
func (s *Store) LoadInbox(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	list, err := s.queryItemList(ctx, "player_inbox_items", p.ID)
	if err != nil {
		return err
	}
	p.InboxItems = list
	return nil
}

// LoadStorage loads the script-visible key-value map.
func (s *Store) LoadStorage(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT key, value FROM player_storage WHERE player_id = ?",
		p.ID)
	if err != nil {
		return fmt.Errorf("query player storage: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key uint32
		var value int32
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan storage row: %w", err)
		}
		p.Storage[key] = value
	}
	return rows.Err()
}

// LoadVIP loads the buddy ids visible to the owning account in this world.
func (s *Store) LoadVIP(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT player_id FROM account_viplist WHERE account_id = ? AND world_id = ? ORDER BY player_id",
		p.AccountID, s.worldID)
	if err != nil {
		return fmt.Errorf("query vip list: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var buddyID uint32
		if err := rows.Scan(&buddyID); err != nil {
			return fmt.Errorf("scan vip row: %w", err)
		}
		p.VIP = append(p.VIP, buddyID)
	}
	return rows.Err()
}

// LoadPrey loads the prey hunting slots.
func (s *Store) LoadPrey(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT slot, state, raceid, option, bonus_type, bonus_rarity, bonus_percentage, bonus_time, free_rerolls, monster_list
		 FROM player_prey WHERE player_id = ? ORDER BY slot`,
		p.ID)
	if err != nil {
		return fmt.Errorf("query prey slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot player.PreySlot
		if err := rows.Scan(&slot.Slot, &slot.State, &slot.RaceID, &slot.Option, &slot.BonusType,
			&slot.BonusRarity, &slot.BonusPercentage, &slot.BonusTimeLeft, &slot.FreeRerolls, &slot.MonsterList); err != nil {
			return fmt.Errorf("scan prey slot: %w", err)
		}
		p.PreySlots = append(p.PreySlots, slot)
	}
	return rows.Err()
}

// LoadTaskHunting loads the task hunting slots.
func (s *Store) LoadTaskHunting(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT slot, state, raceid, upgrade, kills, rarity, free_rerolls, monster_list
		 FROM player_taskhunt WHERE player_id = ? ORDER BY slot`,
		p.ID)
	if err != nil {
		return fmt.Errorf("query task hunting slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var slot player.TaskHuntingSlot
		var upgrade int64
		if err := rows.Scan(&slot.Slot, &slot.State, &slot.RaceID, &upgrade, &slot.Kills,
			&slot.Rarity, &slot.FreeRerolls, &slot.MonsterList); err != nil {
			return fmt.Errorf("scan task hunting slot: %w", err)
		}
		slot.Upgrade = upgrade != 0
		p.TaskHuntingSlots = append(p.TaskHuntingSlots, slot)
	}
	return rows.Err()
}

// LoadSpells loads learned instant spell names.
func (s *Store) LoadSpells(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT name FROM player_spells WHERE player_id = ? ORDER BY name",
		p.ID)
	if err != nil {
		return fmt.Errorf("query player spells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan spell row: %w", err)
		}
		p.InstantSpells = append(p.InstantSpells, name)
	}
	return rows.Err()
}

// LoadForgeHistory loads the forge action log, oldest first.
func (s *Store) LoadForgeHistory(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT action_type, description, is_success, done_at FROM forge_history WHERE player_id = ? ORDER BY done_at, id",
		p.ID)
	if err != nil {
		return fmt.Errorf("query forge history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry player.ForgeHistoryEntry
		var success int64
		if err := rows.Scan(&entry.ActionType, &entry.Description, &success, &entry.CreatedAt); err != nil {
			return fmt.Errorf("scan forge history row: %w", err)
		}
		entry.Success = success != 0
		p.ForgeHistory = append(p.ForgeHistory, entry)
	}
	return rows.Err()
}

// LoadBosstiary loads boss progression; absent rows mean fresh progress.
func (s *Store) LoadBosstiary(ctx context.Context, p *player.Player, _ *playerio.Row) error {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT points, slot_one, slot_two, remove_times FROM player_bosstiary WHERE player_id = ?",
		p.ID)
	err := row.Scan(&p.Bosstiary.Points, &p.Bosstiary.SlotOne, &p.Bosstiary.SlotTwo, &p.Bosstiary.RemoveTimes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p.Bosstiary = player.Bosstiary{}
			return nil
		}
		return fmt.Errorf("query bosstiary: %w", err)
	}
	return nil
}

// InitializeSystems loads state owned by post-load systems: wheel progression.
func (s *Store) InitializeSystems(ctx context.Context, p *player.Player) error {
	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT points, slot_data FROM player_wheel WHERE player_id = ?",
		p.ID)
	err := row.Scan(&p.Wheel.Points, &p.Wheel.SlotData)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			p.Wheel = player.Wheel{}
			return nil
		}
		return fmt.Errorf("query wheel: %w", err)
	}
	return nil
}

// UpdateSystems recomputes derived aggregate state after a full load.
func (s *Store) UpdateSystems(ctx context.Context, p *player.Player) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.RefreshDerived()
	return nil
}

// queryItemList reads one satellite item table in parent-first order and
// validates the tree shape.
func (s *Store) queryItemList(ctx context.Context, table string, playerID uint32) (player.ItemList, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT sid, pid, itemtype, count, attributes FROM "+table+" WHERE player_id = ? ORDER BY sid",
		playerID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var list player.ItemList
	for rows.Next() {
		var item player.Item
		if err := rows.Scan(&item.Serial, &item.Parent, &item.TypeID, &item.Count, &item.Attributes); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		list = append(list, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := list.Validate(); err != nil {
		return nil, malformedItems(table, err)
	}
	return list, nil
}

// malformedItems tags broken item trees as malformed rows so callers can
// tell data corruption apart from store faults.
func malformedItems(source string, cause error) error {
	return apperrors.WrapWithMetadata(
		apperrors.CodeMalformedRow,
		fmt.Sprintf("malformed item rows in %s: %v", source, cause),
		map[string]string{"table": source},
		cause,
	)
}
