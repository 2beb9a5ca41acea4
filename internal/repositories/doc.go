// Package repositories implements SQLite persistence for the run history.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [RunRepository] : one row per generated playlist, plus its ordered tracks
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
