package player

// Prey slot states.
const (
	PreyStateLocked = iota
	PreyStateInactive
	PreyStateActive
	PreyStateSelection
	PreyStateSelectionChangeMonster
)

// PreySlot is one prey hunting slot.
type PreySlot struct {
	Slot  uint8
	State uint8
	// RaceID is the selected creature race, zero while in selection.
	RaceID          uint16
	Option          uint8
	BonusType       uint8
	BonusRarity     uint8
	BonusPercentage uint16
	// BonusTimeLeft is the remaining bonus duration in seconds.
	BonusTimeLeft uint16
	FreeRerolls   uint16
	// MonsterList is the serialized race id list offered for selection.
	MonsterList string
}

// TaskHuntingSlot is one task hunting slot.
type TaskHuntingSlot struct {
	Slot  uint8
	State uint8
	// RaceID is the creature race the task targets.
	RaceID uint16
	// Upgrade marks a task upgraded to the higher kill tier.
	Upgrade bool
	// Kills is the current kill progress.
	Kills       uint16
	Rarity      uint8
	FreeRerolls uint16
	// MonsterList is the serialized race id list offered for selection.
	MonsterList string
}
