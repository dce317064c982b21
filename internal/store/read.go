package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/plenar/internal/joinkey"
)

// Counts holds the row count of every entity table.
type Counts struct {
	Protocols   int64 `json:"protocols"`
	AgendaItems int64 `json:"agenda_items"`
	Speakers    int64 `json:"speakers"`
	Speeches    int64 `json:"speeches"`
}

// Protocol is a protocol row.
type Protocol struct {
	ID                string     `json:"id"`
	Date              *time.Time `json:"date,omitempty"`
	LegislaturePeriod *int64     `json:"legislature_period,omitempty"`
	Number            *int64     `json:"number,omitempty"`
	Title             *string    `json:"title,omitempty"`
	AgendaItemsCount  *int64     `json:"agenda_items_count,omitempty"`
}

// AgendaItem is an agenda_item row including the derived columns.
type AgendaItem struct {
	ID                string     `json:"id"`
	Title             *string    `json:"title,omitempty"`
	AgendaItemNumber  *int64     `json:"agenda_item_number,omitempty"`
	ItemOrder         *int64     `json:"item_order,omitempty"`
	Date              *time.Time `json:"date,omitempty"`
	ProtocolID        *string    `json:"protocol_id,omitempty"`
	LegislaturePeriod *int64     `json:"legislature_period,omitempty"`
	Number            *int64     `json:"number,omitempty"`
	MatchAg           *string    `json:"match_ag,omitempty"`
}

// Speaker is a speaker row.
type Speaker struct {
	SpeakerID     string  `json:"speaker_id"`
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	AcademicTitle *string `json:"academic_title,omitempty"`
	Gender        *string `json:"gender,omitempty"`
	Party         *string `json:"party,omitempty"`
	Fraction      *string `json:"fraction,omitempty"`
	FullName      *string `json:"full_name,omitempty"`
}

// Speech is the reference part of a speech row: identity, weak links
// and the abstract summary. The long text columns are not read back.
type Speech struct {
	ID                string  `json:"nlp_speech_id"`
	SpeakerID         *string `json:"speaker_id,omitempty"`
	ProtocolNumber    *int64  `json:"protocol_number,omitempty"`
	LegislaturePeriod *int64  `json:"legislature_period,omitempty"`
	AgendaItemNumber  *string `json:"agenda_item_number,omitempty"`
	MatchAg           *string `json:"match_ag,omitempty"`
	Lemmas            *string `json:"lemmas,omitempty"`
	AbstractSummary   *string `json:"abstract_summary,omitempty"`
}

// Counts returns the number of rows in each table.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	targets := []struct {
		table string
		dst   *int64
	}{
		{ProtocolTable.Name, &c.Protocols},
		{AgendaItemTable.Name, &c.AgendaItems},
		{SpeakerTable.Name, &c.Speakers},
		{SpeechTable.Name, &c.Speeches},
	}
	for _, target := range targets {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", target.table)
		if err := s.db.QueryRowContext(ctx, query).Scan(target.dst); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", target.table, err)
		}
	}
	return c, nil
}

// limitClause returns a LIMIT clause, or nothing when limit <= 0.
func limitClause(limit int) string {
	if limit <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", limit)
}

// Protocols returns protocols, most recent date first (undated last).
// A limit <= 0 returns all rows.
func (s *Store) Protocols(ctx context.Context, limit int) ([]Protocol, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, legislature_period, number, title, agenda_items_count
		FROM protocol
		ORDER BY date IS NULL, date DESC, id`+limitClause(limit))
	if err != nil {
		return nil, fmt.Errorf("query protocols: %w", err)
	}
	defer rows.Close()

	out := []Protocol{}
	for rows.Next() {
		var p Protocol
		if err := rows.Scan(&p.ID, &p.Date, &p.LegislaturePeriod, &p.Number, &p.Title, &p.AgendaItemsCount); err != nil {
			return nil, fmt.Errorf("scan protocol: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate protocols: %w", err)
	}
	return out, nil
}

// AgendaItems returns agenda items ordered by protocol and item order.
// A limit <= 0 returns all rows.
func (s *Store) AgendaItems(ctx context.Context, limit int) ([]AgendaItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, agenda_item_number, item_order, date, protocol_id,
		       legislature_period, number, match_ag
		FROM agenda_item
		ORDER BY protocol_id, item_order, id`+limitClause(limit))
	if err != nil {
		return nil, fmt.Errorf("query agenda items: %w", err)
	}
	defer rows.Close()

	out := []AgendaItem{}
	for rows.Next() {
		var a AgendaItem
		if err := rows.Scan(&a.ID, &a.Title, &a.AgendaItemNumber, &a.ItemOrder, &a.Date, &a.ProtocolID,
			&a.LegislaturePeriod, &a.Number, &a.MatchAg); err != nil {
			return nil, fmt.Errorf("scan agenda item: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agenda items: %w", err)
	}
	return out, nil
}

// Speakers returns speakers ordered by name. A limit <= 0 returns all rows.
func (s *Store) Speakers(ctx context.Context, limit int) ([]Speaker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT speaker_id, first_name, last_name, academic_title, gender, party, fraction, full_name
		FROM speaker
		ORDER BY last_name, first_name, speaker_id`+limitClause(limit))
	if err != nil {
		return nil, fmt.Errorf("query speakers: %w", err)
	}
	defer rows.Close()

	out := []Speaker{}
	for rows.Next() {
		var sp Speaker
		if err := rows.Scan(&sp.SpeakerID, &sp.FirstName, &sp.LastName, &sp.AcademicTitle,
			&sp.Gender, &sp.Party, &sp.Fraction, &sp.FullName); err != nil {
			return nil, fmt.Errorf("scan speaker: %w", err)
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate speakers: %w", err)
	}
	return out, nil
}

const speechColumns = `CAST(nlp_speech_id AS TEXT), speaker_id, protocol_number, legislature_period,
		       agenda_item_number, match_ag, lemmas, abstract_summary`

// Speeches returns speeches, latest period and protocol first.
// A limit <= 0 returns all rows.
func (s *Store) Speeches(ctx context.Context, limit int) ([]Speech, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+speechColumns+`
		FROM speech
		ORDER BY legislature_period IS NULL, legislature_period DESC,
		         protocol_number IS NULL, protocol_number DESC, nlp_speech_id`+limitClause(limit))
	if err != nil {
		return nil, fmt.Errorf("query speeches: %w", err)
	}
	return scanSpeeches(rows)
}

// SpeechesByMatchKey follows the match_ag weak reference from an agenda
// item to its speeches.
func (s *Store) SpeechesByMatchKey(ctx context.Context, key joinkey.Key) ([]Speech, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+speechColumns+`
		FROM speech
		WHERE match_ag = `+s.dialect.Placeholder(1)+`
		ORDER BY nlp_speech_id`, key.String())
	if err != nil {
		return nil, fmt.Errorf("query speeches by match key: %w", err)
	}
	return scanSpeeches(rows)
}

func scanSpeeches(rows *sql.Rows) ([]Speech, error) {
	defer rows.Close()

	out := []Speech{}
	for rows.Next() {
		var sp Speech
		if err := rows.Scan(&sp.ID, &sp.SpeakerID, &sp.ProtocolNumber, &sp.LegislaturePeriod,
			&sp.AgendaItemNumber, &sp.MatchAg, &sp.Lemmas, &sp.AbstractSummary); err != nil {
			return nil, fmt.Errorf("scan speech: %w", err)
		}
		out = append(out, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate speeches: %w", err)
	}
	return out, nil
}
