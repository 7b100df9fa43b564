// Package queue persists the track catalog in SQLite and exposes helpers for
// driving each track's lifecycle.
//
// The Store manages database connections, schema initialization, stats
// queries, stuck-item recovery, and status transitions that mirror the
// pipeline stages (probe, analyze, tag). Items capture probe facts and key
// results so stages can coordinate without additional state.
//
// Schema changes bump the version in schema.go; users clear the database to
// adopt the new schema.
package queue
