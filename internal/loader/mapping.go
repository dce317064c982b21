package loader

import (
	"strings"
	"time"

	"github.com/roach88/plenar/internal/store"
	"github.com/roach88/plenar/internal/tree"
)

// Extractor reads one column value out of a normalized record. It
// returns nil when the value is missing or unusable; nil is stored as
// NULL.
type Extractor func(rec tree.Value) any

// Column binds a store column to its extractor.
type Column struct {
	Name    string
	Extract Extractor
}

// Mapping is the ordered column list of one entity.
type Mapping []Column

// Row applies every extractor to rec.
func (m Mapping) Row(rec tree.Value) store.Row {
	row := make(store.Row, len(m))
	for _, col := range m {
		row[col.Name] = col.Extract(rec)
	}
	return row
}

// hasKey reports whether row carries a usable primary key for t.
func hasKey(row store.Row, t store.Table) bool {
	s, ok := row[t.Key].(string)
	return ok && strings.TrimSpace(s) != ""
}

// text reads field as its canonical string form.
func text(field string) Extractor {
	return func(rec tree.Value) any {
		v, _ := tree.Get(rec, field)
		if s, ok := tree.Text(v); ok {
			return s
		}
		return nil
	}
}

// integer reads field as an exact integer.
func integer(field string) Extractor {
	return func(rec tree.Value) any {
		v, _ := tree.Get(rec, field)
		if n, ok := tree.Int(v); ok {
			return n
		}
		return nil
	}
}

// digits reads the first digit run of field, for noisy labels such as
// "Tagesordnungspunkt 7".
func digits(field string) Extractor {
	return func(rec tree.Value) any {
		v, _ := tree.Get(rec, field)
		if n, ok := tree.ExtractInt(v); ok {
			return n
		}
		return nil
	}
}

// timestamp reads field as a point in time.
func timestamp(field string) Extractor {
	return func(rec tree.Value) any {
		v, _ := tree.Get(rec, field)
		s, ok := tree.Text(v)
		if !ok {
			return nil
		}
		if t, ok := parseTimestamp(s); ok {
			return t
		}
		return nil
	}
}

// checkDate logs a present date that no layout accepted. The column is
// stored as NULL in that case.
func (r *run) checkDate(file, record string, rec tree.Value, row store.Row) {
	if row["date"] != nil {
		return
	}
	v, _ := tree.Get(rec, "date")
	s, ok := tree.Text(v)
	if !ok || strings.TrimSpace(s) == "" {
		return
	}
	r.log.Debug("date not parsed, storing NULL", "file", file, "record", record, "date", s)
}

// Date layouts seen in the exports, tried in order. Values without a
// zone are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006 15:04",
	"02.01.2006",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// Column mappings. Record field names are already lowercased.
var (
	protocolMapping = Mapping{
		{"id", text("id")},
		{"date", timestamp("date")},
		{"legislature_period", integer("legislatureperiod")},
		{"number", integer("number")},
		{"title", text("title")},
		{"agenda_items_count", integer("agendaitemscount")},
	}

	agendaItemMapping = Mapping{
		{"id", text("id")},
		{"title", text("title")},
		{"description", text("description")},
		{"agenda_item_number", digits("agendaitemnumber")},
		{"item_order", integer("order")},
		{"date", timestamp("date")},
		{"protocol_id", text("protocolid")},
	}

	speakerMapping = Mapping{
		{"speaker_id", text("speakerid")},
		{"first_name", text("firstname")},
		{"last_name", text("lastname")},
		{"academic_title", text("academictitle")},
		{"gender", text("gender")},
		{"party", text("party")},
		{"fraction", text("fraction")},
	}

	// speechMapping covers the fields read from the speech record
	// itself; id, document-level and derived columns are set by the
	// speech loader.
	speechMapping = Mapping{
		{"abstract_summary", text("abstractsummary")},
		{"abstract_summary_pegasus", text("abstractsummarypegasus")},
		{"get_abstract_summary_pegasus", text("getabstractsummarypegasus")},
		{"get_abstract_summary", text("getabstractsummary")},
		{"get_extractive_summary", text("getextractivesummary")},
		{"extractive_summary", text("extractivesummary")},
		{"english_translation_of_speech", text("englishtranslationofspeech")},
		{"speaker_id", text("speakerid")},
		{"text", text("text")},
		{"agenda_item_number", text("agendaitemnumber")},
	}
)
