// Package repositories implements SQLite persistence for the run journal.
//
// The journal records what each sync run did. It is written after a run and read by the
// history commands only; the sync never consults it when deciding to create or update a task.
//
// Key Implementations:
//   - [RunRepository] : Run CRUD with status filters, per-item actions, and pruning
//
// Times are stored in UTC so ordering by started_at is stable across zones.
package repositories
