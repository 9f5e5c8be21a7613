// Package playerio orchestrates player aggregate persistence.
//
// The load pipeline rebuilds a player.Player from its stored rows by running
// a fixed, ordered list of loader steps over one base-row snapshot. The save
// transaction commits every sub-aggregate back inside a single database
// transaction, rolling back wholesale on the first failing step.
//
// Step order is data, not control flow: LoadSteps and SaveSteps return the
// ordered lists, so tests assert on the lists themselves and any reordering
// is a visible, reviewable change. Later steps depend on state established by
// earlier ones (container steps attach to roots recorded by the inventory
// step; storage saves may reference rows written by item saves), so the order
// must not change without revisiting those dependencies.
package playerio
