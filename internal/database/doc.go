// Package database stores the history of reconchain runs in SQLite.
//
// Each finished run is one row in the runs table, keyed by a UUID and
// carrying the target, its registrable apex domain, the three stage
// counts, the per-severity aggregate, and a digest of the findings file so
// that consecutive runs with identical findings can be recognised.
//
// The driver is modernc.org/sqlite, which needs no cgo.
package database
