package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingKey is returned by Upsert when the row has no primary key value.
var ErrMissingKey = errors.New("missing primary key")

// Table describes an insert target: its name, primary-key column and
// the full column list in insert order. Key must appear in Columns.
type Table struct {
	Name    string
	Key     string
	Columns []string
}

// Row maps column names to values. Columns absent from the map are
// inserted as NULL.
type Row map[string]any

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// The four entity tables.
var (
	ProtocolTable = Table{
		Name: "protocol",
		Key:  "id",
		Columns: []string{
			"id", "date", "legislature_period", "number", "title", "agenda_items_count",
		},
	}

	AgendaItemTable = Table{
		Name: "agenda_item",
		Key:  "id",
		Columns: []string{
			"id", "title", "description", "agenda_item_number", "item_order", "date", "protocol_id",
		},
	}

	SpeakerTable = Table{
		Name: "speaker",
		Key:  "speaker_id",
		Columns: []string{
			"speaker_id", "first_name", "last_name", "academic_title",
			"gender", "party", "fraction", "full_name",
		},
	}

	SpeechTable = Table{
		Name: "speech",
		Key:  "nlp_speech_id",
		Columns: []string{
			"nlp_speech_id",
			"abstract_summary",
			"abstract_summary_pegasus",
			"get_abstract_summary_pegasus",
			"get_abstract_summary",
			"get_extractive_summary",
			"extractive_summary",
			"english_translation_of_speech",
			"speaker_id",
			"text",
			"protocol_number",
			"legislature_period",
			"agenda_item_number",
			"lemmas",
			"match_ag",
		},
	}
)

// Tables lists every entity table in dependency order.
var Tables = []Table{ProtocolTable, AgendaItemTable, SpeakerTable, SpeechTable}

// insertSQL renders the conflict-skipping insert for the dialect.
func (t Table) insertSQL(d Dialect) string {
	params := make([]string, len(t.Columns))
	for i := range t.Columns {
		params[i] = d.Placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		t.Name,
		strings.Join(t.Columns, ", "),
		strings.Join(params, ", "),
		t.Key,
	)
}

// args orders row values by column.
func (t Table) args(row Row) []any {
	args := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		args[i] = row[col]
	}
	return args
}

// upsert inserts row into t through ex, skipping it on primary-key conflict.
// Returns whether a new row was written.
func upsert(ctx context.Context, d Dialect, ex Execer, t Table, row Row) (bool, error) {
	if isEmptyKey(row[t.Key]) {
		return false, fmt.Errorf("insert %s: %w", t.Name, ErrMissingKey)
	}

	result, err := ex.ExecContext(ctx, t.insertSQL(d), t.args(row)...)
	if err != nil {
		return false, fmt.Errorf("insert %s %v: %w", t.Name, row[t.Key], err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert %s: rows affected: %w", t.Name, err)
	}
	return n > 0, nil
}

func isEmptyKey(v any) bool {
	switch k := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(k) == ""
	default:
		return false
	}
}

// Upsert inserts row outside any explicit transaction (autocommit).
func (s *Store) Upsert(ctx context.Context, t Table, row Row) (bool, error) {
	return upsert(ctx, s.dialect, s.db, t, row)
}
