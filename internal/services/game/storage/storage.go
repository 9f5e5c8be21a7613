// Package storage defines the persistence interfaces and records consumed by
// the game service. Implementations live under storage/sqlite.
package storage

import (
	"context"
	"database/sql"

	apperrors "github.com/duskhaven/duskhaven/internal/platform/errors"
	"github.com/duskhaven/duskhaven/internal/services/game/domain/world"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity" states
// and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// DBTX is the query surface shared by *sql.DB and *sql.Tx. Save-step
// collaborators receive it so every write lands inside the transaction owned
// by the save orchestrator, never on a side connection.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// AccountRecord captures the stored credential state of one account.
type AccountRecord struct {
	ID uint32
	// Descriptor is the login identifier (email or account name).
	Descriptor string
	// PasswordDigest is the hex SHA-1 digest of the account password.
	PasswordDigest string
	// Type encodes the account privilege tier; zero is a normal account.
	Type uint8
}

// CharacterSummary is one playable character on an account, with its
// deletion marker. A non-zero DeletionTime means the character is scheduled
// for deletion and must not be usable for login.
type CharacterSummary struct {
	Name         string
	DeletionTime int64
}

// PlayerLookup is the small identity projection returned by name lookups.
type PlayerLookup struct {
	ID        uint32
	Name      string
	GroupID   uint16
	AccountID uint32
}

// VIPEntry is one buddy-list row visible to an account.
type VIPEntry struct {
	PlayerID    uint32
	Name        string
	Description string
	Icon        uint32
	Notify      bool
}

// VIPGroup is one user-defined buddy-list group.
type VIPGroup struct {
	ID           uint8
	Name         string
	Customizable bool
}

// AccountStore resolves accounts and their characters for the session boundary.
type AccountStore interface {
	AccountByDescriptor(ctx context.Context, descriptor string) (AccountRecord, error)
	// AccountType returns the privilege tier, defaulting to normal when the
	// account row is missing.
	AccountType(ctx context.Context, accountID uint32) (uint8, error)
	CharactersByAccount(ctx context.Context, accountID uint32) ([]CharacterSummary, error)
}

// PresenceStore owns the presence rows behind the online status tracker.
type PresenceStore interface {
	InsertOnline(ctx context.Context, playerID, worldID uint32) error
	DeleteOnline(ctx context.Context, playerID, worldID uint32) error
}

// VIPStore owns account buddy lists and their groups.
type VIPStore interface {
	VIPEntries(ctx context.Context, accountID uint32) ([]VIPEntry, error)
	AddVIPEntry(ctx context.Context, accountID, playerID uint32, description string, icon uint32, notify bool) error
	EditVIPEntry(ctx context.Context, accountID, playerID uint32, description string, icon uint32, notify bool) error
	RemoveVIPEntry(ctx context.Context, accountID, playerID uint32) error

	VIPGroups(ctx context.Context, accountID uint32) ([]VIPGroup, error)
	AddVIPGroup(ctx context.Context, groupID uint8, accountID uint32, name string, customizable bool) error
	EditVIPGroup(ctx context.Context, groupID uint8, accountID uint32, name string, customizable bool) error
	RemoveVIPGroup(ctx context.Context, groupID uint8, accountID uint32) error

	AddVIPGroupMember(ctx context.Context, groupID uint8, accountID, playerID uint32) error
	RemoveVIPGroupMember(ctx context.Context, accountID, playerID uint32) error
}

// WorldStore owns the world registry.
type WorldStore interface {
	ListWorlds(ctx context.Context) ([]world.World, error)
	CreateWorld(ctx context.Context, w world.World) (uint32, error)
	// EnsureDefaultWorld creates w only when the registry is empty, mirroring
	// first-boot provisioning.
	EnsureDefaultWorld(ctx context.Context, w world.World) error
}

// PlayerIndex exposes the identity lookups used outside the load pipeline.
type PlayerIndex interface {
	GUIDByName(ctx context.Context, name string) (uint32, error)
	NameByGUID(ctx context.Context, id uint32) (string, error)
	LookupPlayer(ctx context.Context, name string) (PlayerLookup, error)
	// FormatPlayerName echoes the canonical stored casing for a name.
	FormatPlayerName(ctx context.Context, name string) (string, error)
	IncreaseBankBalance(ctx context.Context, id uint32, amount uint64) error
	HasBiddedOnHouse(ctx context.Context, id uint32) (bool, error)
}
