// Package repositories implements SQLite persistence for run history.
//
// [RunRepository] handles CRUD operations with atomic sequence generation for human-readable ordering.
// Deletes are soft, via deleted_at timestamps, and deleted records are excluded from queries.
//
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
