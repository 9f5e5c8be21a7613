// Package player models the in-memory player aggregate.
//
// A Player owns every persisted sub-aggregate by composition: base identity
// and vitals, inventory trees, the key-value storage map, guild membership,
// hunting slots, and progression systems. The aggregate is populated
// exclusively by the playerio load pipeline and persisted exclusively by the
// playerio save transaction; gameplay code mutates it in between.
//
// Ownership of a Player is exclusive to one session. Concurrent load or save
// calls for the same identity must be serialized by the caller.
package player
