// Package state holds the durable monitor state shared between the CLI
// process and the background watcher: the favorites list, the monitoring
// switches, and the last-known presence per favorite.
//
// The JSON file store is the single durability boundary. Writes go through
// an atomic temp-file-then-rename swap so a concurrent reader never observes
// a partially written record, and all read-modify-write sequences go through
// Store.Update so concurrent writers cannot interleave lost updates.
package state
