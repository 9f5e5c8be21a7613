package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/duskhaven/duskhaven/internal/services/game/domain/player"
	"github.com/duskhaven/duskhaven/internal/services/game/playerio"
	"github.com/duskhaven/duskhaven/internal/services/game/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "game.db"), 1)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// fullPlayer builds an aggregate exercising every persisted sub-aggregate.
func fullPlayer() *player.Player {
	p := player.New(1)
	p.ID = 12
	p.AccountID = 9
	p.Name = "Avela Stormfall"
	p.GroupID = 1
	p.Sex = 1
	p.Vocation = 4
	p.Balance = 125000
	p.Level = 74
	p.Experience = 1250000
	p.MagicLevel = 52
	p.ManaSpent = 900000
	p.Health = 620
	p.HealthMax = 745
	p.Mana = 1800
	p.ManaMax = 2330
	p.Soul = 100
	p.Capacity = 2180
	p.TownID = 3
	p.Position = player.Position{X: 32145, Y: 32870, Z: 7}
	p.LastLogin = 1755000000
	p.LastLogout = 1754990000
	p.Conditions = []byte{0x05, 0x00, 0x12}
	p.Blessings = [player.BlessingCount]uint8{1, 1, 0, 1, 0, 0, 1, 0}
	p.Outfit = player.Outfit{LookType: 138, LookHead: 78, LookBody: 94, LookLegs: 58, LookFeet: 115, LookAddons: 3}
	p.Skull = 1
	p.SkullTicks = 90000
	for i := range p.Skills {
		p.Skills[i] = player.Skill{Level: uint16(10 + i*5), Tries: uint64(1000 * (i + 1))}
	}
	p.Kills = []player.Kill{
		{Time: 1754900000, Target: 88, Unavenged: true},
		{Time: 1754950000, Target: 91},
	}
	p.Guild = &player.GuildMembership{GuildID: 4, RankID: 2, Nick: "Duskwarden"}
	p.Stash = map[uint16]uint32{3031: 12000, 3035: 480}
	p.Charms = player.CharmTracker{Points: 1200, Expansion: true, UnlockedRunes: 0b1011, ActiveRunes: 0b0010}
	p.Inventory = player.ItemList{
		{Serial: 101, Parent: player.SlotBackpack, TypeID: 2854, Count: 1, Attributes: []byte{0x01}},
		{Serial: 102, Parent: 101, TypeID: 3031, Count: 100, Attributes: []byte{0x02}},
		{Serial: 103, Parent: player.SlotHead, TypeID: 3351, Count: 1, Attributes: []byte{0x03}},
	}
	p.StoreInbox = player.ItemList{
		{Serial: 201, Parent: player.SlotAmmo, TypeID: 23721, Count: 1, Attributes: []byte{0x04}},
	}
	p.Depots = map[uint32]player.ItemList{
		1: {
			{Serial: 301, Parent: player.SlotBackpack, TypeID: 2854, Count: 1, Attributes: []byte{0x05}},
			{Serial: 302, Parent: 301, TypeID: 3035, Count: 40, Attributes: []byte{0x06}},
		},
		3: {
			{Serial: 401, Parent: player.SlotBackpack, TypeID: 2853, Count: 1, Attributes: []byte{0x07}},
		},
	}
	p.Rewards = player.ItemList{
		{Serial: 501, Parent: player.SlotBackpack, TypeID: 19250, Count: 1, Attributes: []byte{0x08}},
	}
	p.InboxItems = player.ItemList{
		{Serial: 601, Parent: player.SlotBackpack, TypeID: 3504, Count: 2, Attributes: []byte{0x09}},
	}
	p.Storage = map[uint32]int32{10000: 1, 10001: -7}
	p.PreySlots = []player.PreySlot{
		{Slot: 0, State: player.PreyStateActive, RaceID: 21, Option: 1, BonusType: 2, BonusRarity: 7, BonusPercentage: 28, BonusTimeLeft: 3600, FreeRerolls: 1, MonsterList: "21,39,56"},
		{Slot: 1, State: player.PreyStateSelection, MonsterList: "12,14,90"},
	}
	p.TaskHuntingSlots = []player.TaskHuntingSlot{
		{Slot: 0, State: 2, RaceID: 39, Upgrade: true, Kills: 211, Rarity: 4, FreeRerolls: 2, MonsterList: "39,44"},
	}
	p.InstantSpells = []string{"exori vis", "exura gran", "utani hur"}
	p.ForgeHistory = []player.ForgeHistoryEntry{
		{ActionType: 0, Description: "fusion tier 1", Success: true, CreatedAt: 1754800000},
		{ActionType: 1, Description: "transfer tier 2", Success: false, CreatedAt: 1754850000},
	}
	p.Bosstiary = player.Bosstiary{Points: 300, SlotOne: 1201, SlotTwo: 1189, RemoveTimes: 1}
	p.Wheel = player.Wheel{Points: 250, SlotData: []byte{0x0A, 0x0B}}
	return p
}

func savePlayer(t *testing.T, store *Store, p *player.Player) {
	t.Helper()
	txn := playerio.NewSaveTransaction(store.DB(), store)
	if err := txn.Save(context.Background(), p); err != nil {
		t.Fatalf("save player: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	saved := fullPlayer()
	savePlayer(t, store, saved)

	// The VIP list lives on the account, outside the save transaction.
	if err := store.AddVIPEntry(ctx, saved.AccountID, 55, "hunting partner", 2, true); err != nil {
		t.Fatalf("AddVIPEntry: %v", err)
	}
	if err := store.AddVIPEntry(ctx, saved.AccountID, 91, "", 0, false); err != nil {
		t.Fatalf("AddVIPEntry: %v", err)
	}

	pipeline := playerio.NewPipeline(store, store.WorldID())
	loaded, err := pipeline.LoadByID(ctx, saved.ID, playerio.LoadFull)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}

	want := fullPlayer()
	want.VIP = []uint32{55, 91}
	want.RefreshDerived()

	if !reflect.DeepEqual(loaded, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, want)
	}
}

func TestLoadByNameRoundTrip(t *testing.T) {
	store := openTempStore(t)
	saved := fullPlayer()
	savePlayer(t, store, saved)

	pipeline := playerio.NewPipeline(store, store.WorldID())
	loaded, err := pipeline.LoadByName(context.Background(), "avela stormfall", playerio.LoadMinimal)
	if err != nil {
		t.Fatalf("LoadByName: %v", err)
	}
	if loaded.ID != saved.ID {
		t.Errorf("loaded id = %d, want %d", loaded.ID, saved.ID)
	}
}

func TestLoadMinimalSkipsTrailingSteps(t *testing.T) {
	store := openTempStore(t)
	savePlayer(t, store, fullPlayer())

	pipeline := playerio.NewPipeline(store, store.WorldID())
	loaded, err := pipeline.LoadByID(context.Background(), 12, playerio.LoadMinimal)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}

	if loaded.ForgeHistory != nil {
		t.Errorf("minimal load populated forge history: %v", loaded.ForgeHistory)
	}
	if loaded.Bosstiary != (player.Bosstiary{}) {
		t.Errorf("minimal load populated bosstiary: %+v", loaded.Bosstiary)
	}
	if loaded.Wheel.Points != 0 || loaded.Wheel.SlotData != nil {
		t.Errorf("minimal load populated wheel: %+v", loaded.Wheel)
	}
	if loaded.CarriedCount != 0 {
		t.Errorf("minimal load computed derived state: %d", loaded.CarriedCount)
	}
	// The shared leading steps still ran.
	if len(loaded.Inventory) != 3 {
		t.Errorf("inventory items = %d, want 3", len(loaded.Inventory))
	}
}

func TestLoadByIDNotFound(t *testing.T) {
	store := openTempStore(t)
	pipeline := playerio.NewPipeline(store, store.WorldID())
	if _, err := pipeline.LoadByID(context.Background(), 999, playerio.LoadFull); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want not-found", err)
	}
}

func TestLoadScopedToWorld(t *testing.T) {
	store := openTempStore(t)
	savePlayer(t, store, fullPlayer())

	other, err := Open(filepath.Join(t.TempDir(), "other.db"), 2)
	if err != nil {
		t.Fatalf("Open other world: %v", err)
	}
	t.Cleanup(func() { _ = other.Close() })

	pipeline := playerio.NewPipeline(other, other.WorldID())
	if _, err := pipeline.LoadByID(context.Background(), 12, playerio.LoadFull); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cross-world load err = %v, want not-found", err)
	}
}

// failingSaver delegates to the real store but fails one chosen step.
type failingSaver struct {
	*Store
	failAt string
}

func (f *failingSaver) SaveWheel(ctx context.Context, tx storage.DBTX, p *player.Player) error {
	if f.failAt == "wheel" {
		return fmt.Errorf("wheel write rejected")
	}
	return f.Store.SaveWheel(ctx, tx, p)
}

func TestSaveRollsBackOnStepFailure(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	original := fullPlayer()
	savePlayer(t, store, original)

	pipeline := playerio.NewPipeline(store, store.WorldID())
	before, err := pipeline.LoadByID(ctx, original.ID, playerio.LoadFull)
	if err != nil {
		t.Fatalf("load before: %v", err)
	}

	// Mutate heavily, then fail the save near the end of the step list.
	mutated := fullPlayer()
	mutated.Balance = 1
	mutated.Level = 99
	mutated.Inventory = append(mutated.Inventory,
		player.Item{Serial: 104, Parent: 101, TypeID: 3035, Count: 5, Attributes: []byte{0x0C}})
	mutated.Stash[3031] = 1

	txn := playerio.NewSaveTransaction(store.DB(), &failingSaver{Store: store, failAt: "wheel"})
	err = txn.Save(ctx, mutated)
	if err == nil {
		t.Fatal("expected save failure")
	}
	if step, ok := playerio.FailedStep(err); !ok || step != "wheel" {
		t.Errorf("FailedStep = %q/%v, want wheel/true", step, ok)
	}

	after, err := pipeline.LoadByID(ctx, original.ID, playerio.LoadFull)
	if err != nil {
		t.Fatalf("load after: %v", err)
	}
	if !reflect.DeepEqual(before, after) {
		t.Errorf("failed save leaked writes:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestSaveIsIdempotent(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	p := fullPlayer()
	savePlayer(t, store, p)
	savePlayer(t, store, p)

	pipeline := playerio.NewPipeline(store, store.WorldID())
	loaded, err := pipeline.LoadByID(ctx, p.ID, playerio.LoadFull)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}
	if len(loaded.Kills) != len(p.Kills) {
		t.Errorf("kills duplicated: %d, want %d", len(loaded.Kills), len(p.Kills))
	}
	if len(loaded.ForgeHistory) != len(p.ForgeHistory) {
		t.Errorf("forge history duplicated: %d, want %d", len(loaded.ForgeHistory), len(p.ForgeHistory))
	}
}

func TestSaveRejectsInvalidItemTree(t *testing.T) {
	store := openTempStore(t)

	p := fullPlayer()
	// Forward reference: parent 999 never appears earlier in the list.
	p.Inventory = append(p.Inventory,
		player.Item{Serial: 700, Parent: 999, TypeID: 3031, Count: 1, Attributes: []byte{0x0D}})

	txn := playerio.NewSaveTransaction(store.DB(), store)
	err := txn.Save(context.Background(), p)
	if err == nil {
		t.Fatal("expected save failure for invalid item tree")
	}
	if !errors.Is(err, playerio.ErrMalformedRow) {
		t.Errorf("err = %v, want malformed-row match", err)
	}
	if step, ok := playerio.FailedStep(err); !ok || step != "inventory" {
		t.Errorf("FailedStep = %q/%v, want inventory/true", step, ok)
	}
}

func TestPlayerIndex(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	savePlayer(t, store, fullPlayer())

	id, err := store.GUIDByName(ctx, "Avela Stormfall")
	if err != nil || id != 12 {
		t.Errorf("GUIDByName = %d/%v, want 12/nil", id, err)
	}
	if _, err := store.GUIDByName(ctx, "Stranger"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GUIDByName unknown = %v, want not-found", err)
	}

	name, err := store.NameByGUID(ctx, 12)
	if err != nil || name != "Avela Stormfall" {
		t.Errorf("NameByGUID = %q/%v", name, err)
	}

	formatted, err := store.FormatPlayerName(ctx, "AVELA STORMFALL")
	if err != nil || formatted != "Avela Stormfall" {
		t.Errorf("FormatPlayerName = %q/%v", formatted, err)
	}

	lookup, err := store.LookupPlayer(ctx, "Avela Stormfall")
	if err != nil {
		t.Fatalf("LookupPlayer: %v", err)
	}
	if lookup.ID != 12 || lookup.AccountID != 9 {
		t.Errorf("lookup = %+v", lookup)
	}

	if err := store.IncreaseBankBalance(ctx, 12, 500); err != nil {
		t.Fatalf("IncreaseBankBalance: %v", err)
	}
	pipeline := playerio.NewPipeline(store, store.WorldID())
	loaded, err := pipeline.LoadByID(ctx, 12, playerio.LoadMinimal)
	if err != nil {
		t.Fatalf("LoadByID: %v", err)
	}
	if loaded.Balance != 125500 {
		t.Errorf("balance = %d, want 125500", loaded.Balance)
	}

	bidded, err := store.HasBiddedOnHouse(ctx, 12)
	if err != nil || bidded {
		t.Errorf("HasBiddedOnHouse = %v/%v, want false/nil", bidded, err)
	}
}
