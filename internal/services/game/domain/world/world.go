// Package world models world registry entries, the partition key separating
// otherwise identical player namespaces.
package world

// World is one registered game world.
type World struct {
	ID uint32
	// Name is the public world name shown at character selection.
	Name string
	// Type is the ruleset label (pvp, no-pvp, retro-pvp, ...).
	Type string
	// MOTD is the message of the day shown on login.
	MOTD     string
	Location string
	IP       string
	Port     uint16
	// CreatedAt is the unix timestamp the world was registered.
	CreatedAt int64
}
