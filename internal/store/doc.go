// Package store provides the relational store for parliamentary
// protocol data.
//
// Four tables are kept:
//   - protocol: one row per protocol export
//   - agenda_item: items of a protocol (foreign key, cascading delete)
//   - speaker: speaker lookup results
//   - speech: speeches, linked to speakers and agenda items only
//     through weak references (speaker_id, match_ag)
//
// # Write semantics
//
// Primary keys are idempotency boundaries. Every insert is
// INSERT ... ON CONFLICT (key) DO NOTHING: re-loading the same data
// never duplicates or overwrites a row, and a conflict is not an error.
//
// The agenda_item columns legislature_period, number and match_ag are
// derived. BackfillAgendaItems fills them from the owning protocol in a
// single statement that can be re-run at any time.
//
// # Dialects
//
//   - sqlite3 (github.com/mattn/go-sqlite3): WAL, NORMAL sync, 5s busy
//     timeout, foreign keys on, single connection
//   - pgx (github.com/jackc/pgx/v5/stdlib): Postgres; speech ids are
//     stored in a UUID column
//
// The schema is embedded per dialect and applied on every Open.
package store
