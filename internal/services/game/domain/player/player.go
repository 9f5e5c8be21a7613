package player

// BlessingCount is the number of blessing slots a player owns.
const BlessingCount = 8

// SkillCount is the number of trainable skills (fist through fishing).
const SkillCount = 7

// Skill indices into Player.Skills.
const (
	SkillFist = iota
	SkillClub
	SkillSword
	SkillAxe
	SkillDistance
	SkillShielding
	SkillFishing
)

// Position is a map coordinate.
type Position struct {
	X uint16
	Y uint16
	Z uint8
}

// Outfit captures the persisted look of a player.
type Outfit struct {
	LookType   uint16
	LookHead   uint16
	LookBody   uint16
	LookLegs   uint16
	LookFeet   uint16
	LookAddons uint8
}

// Skill holds one trainable skill's progression.
type Skill struct {
	Level uint16
	Tries uint64
}

// Kill records an unjustified or unavenged frag against another player.
type Kill struct {
	// Time is the unix timestamp of the kill.
	Time int64
	// Target is the killed player's id.
	Target uint32
	// Unavenged marks frags that still count toward skull escalation.
	Unavenged bool
}

// GuildMembership links a player to a guild. A nil membership means guildless.
type GuildMembership struct {
	GuildID uint32
	RankID  uint32
	Nick    string
}

// CharmTracker holds bestiary charm progression.
type CharmTracker struct {
	// Points is the spendable charm point balance.
	Points uint32
	// Expansion marks the purchased charm expansion.
	Expansion bool
	// UnlockedRunes is a bitmask of unlocked charm runes.
	UnlockedRunes uint64
	// ActiveRunes is a bitmask of runes currently assigned to creatures.
	ActiveRunes uint64
}

// Bosstiary holds boss progression shared across hunting sessions.
type Bosstiary struct {
	Points      uint32
	SlotOne     uint32
	SlotTwo     uint32
	RemoveTimes uint16
}

// Wheel holds wheel-of-destiny progression. SlotData is the serialized
// per-slot point distribution; persistence treats it as opaque.
type Wheel struct {
	Points   uint32
	SlotData []byte
}

// ForgeHistoryEntry records one forge action for the player's history view.
type ForgeHistoryEntry struct {
	ActionType  uint8
	Description string
	Success     bool
	CreatedAt   int64
}

// Player is the full in-memory representation of one character.
//
// Identity is (ID, WorldID): ids are unique within a world partition. The
// zero value is not usable; construct with New so owned maps exist.
type Player struct {
	// ID is the unique player id within WorldID.
	ID uint32
	// AccountID links the player to its owning account.
	AccountID uint32
	// WorldID is the world partition the player belongs to.
	WorldID uint32
	// Name is the unique display name within WorldID.
	Name string

	GroupID  uint16
	Sex      uint8
	Vocation uint8

	// Balance is the bank balance in gold.
	Balance uint64

	Level      uint32
	Experience uint64
	MagicLevel uint16
	ManaSpent  uint64

	Health    int32
	HealthMax int32
	Mana      int32
	ManaMax   int32
	Soul      uint8
	Capacity  uint32

	TownID     uint32
	Position   Position
	LastLogin  int64
	LastLogout int64

	// Conditions is the serialized active-condition blob. Persistence treats
	// it as opaque; the condition subsystem owns its encoding.
	Conditions []byte

	Blessings [BlessingCount]uint8
	Outfit    Outfit

	Skull      uint8
	SkullTicks int64

	Skills [SkillCount]Skill
	Kills  []Kill
	Guild  *GuildMembership

	// Stash maps item type to stowed count.
	Stash map[uint16]uint32

	Charms CharmTracker

	// Inventory is the equipped/carried item tree in flat parent-first order.
	Inventory ItemList
	// StoreInbox holds purchased items pending delivery.
	StoreInbox ItemList
	// Depots maps depot id to that depot's item tree.
	Depots map[uint32]ItemList
	// Rewards holds unclaimed boss reward items.
	Rewards ItemList
	// InboxItems holds the mail inbox item tree.
	InboxItems ItemList

	// Storage is the script-visible key-value state map.
	Storage map[uint32]int32

	// VIP lists player ids on the owning account's buddy list.
	VIP []uint32

	PreySlots        []PreySlot
	TaskHuntingSlots []TaskHuntingSlot

	// InstantSpells lists learned spell names.
	InstantSpells []string

	ForgeHistory []ForgeHistoryEntry
	Bosstiary    Bosstiary
	Wheel        Wheel

	// CarriedCount is derived from Inventory by RefreshDerived; it is not
	// persisted directly.
	CarriedCount uint32
}

// New returns an empty player bound to a world partition, with owned maps
// initialized so loader steps can populate them without nil checks.
func New(worldID uint32) *Player {
	return &Player{
		WorldID: worldID,
		Stash:   make(map[uint16]uint32),
		Depots:  make(map[uint32]ItemList),
		Storage: make(map[uint32]int32),
	}
}

// RefreshDerived recomputes aggregate fields derived from loaded state.
// Called by the load pipeline's final pass under full load.
func (p *Player) RefreshDerived() {
	var carried uint32
	for _, it := range p.Inventory {
		carried += uint32(it.Count)
	}
	p.CarriedCount = carried
}
