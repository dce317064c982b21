// Package loader ingests protocol export files into the store.
//
// Each loader walks its input, decodes every file into a normalized
// tree (field names lowercased), locates its records by direct lookup
// or keyed tree search and upserts one row per record through a column
// Mapping. Missing fields become NULL.
//
// # Failure isolation
//
// A file that cannot be read or parsed is skipped and recorded; the
// remaining files are still loaded. A record without an id is skipped.
// How store errors are handled differs per loader:
//
//   - Protocols: one transaction per run, store errors are fatal
//   - AgendaItems: one transaction per run, each item in a savepoint;
//     a failed item is rolled back alone, counted and logged
//   - Speeches: one transaction per insert; a failed insert is rolled
//     back alone, counted and logged
//   - Speakers: autocommit per insert, store errors are fatal
//
// Primary-key conflicts are never errors: a re-run over the same input
// counts them as duplicates and leaves the store unchanged.
//
// Every run returns a Report. Report.Err aggregates its skips.
package loader
