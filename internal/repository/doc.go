// Package repository defines the persistence interface for horao.
//
// The service layer keeps the live networks in memory and writes through to
// a Repository so that the last known inventory and the classification
// history survive a restart. The implementation lives in the sqlite
// subpackage.
//
// # Stored Data
//
// - one row per network: its name, type, last topology and a snapshot
//   encoded with the binary codec
// - an append-only classification history per network, pruned to a
//   configurable length
//
// # Schema Migration
//
// The sqlite repository creates its tables on startup when missing.
package repository
