package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/roach88/plenar/internal/store"
)

// Snapshot is the store content converted to Neo4j parameter maps.
// NULL columns are left out of the maps, so they never become
// properties.
type Snapshot struct {
	Protocols   []map[string]any
	AgendaItems []map[string]any
	Speakers    []map[string]any
	Speeches    []map[string]any
}

// BuildSnapshot reads every row of the four tables.
func BuildSnapshot(ctx context.Context, s *store.Store) (*Snapshot, error) {
	protocols, err := s.Protocols(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	items, err := s.AgendaItems(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	speakers, err := s.Speakers(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	speeches, err := s.Speeches(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	snap := &Snapshot{
		Protocols:   make([]map[string]any, 0, len(protocols)),
		AgendaItems: make([]map[string]any, 0, len(items)),
		Speakers:    make([]map[string]any, 0, len(speakers)),
		Speeches:    make([]map[string]any, 0, len(speeches)),
	}
	for _, p := range protocols {
		snap.Protocols = append(snap.Protocols, protocolNode(p))
	}
	for _, a := range items {
		snap.AgendaItems = append(snap.AgendaItems, agendaItemNode(a))
	}
	for _, sp := range speakers {
		snap.Speakers = append(snap.Speakers, speakerNode(sp))
	}
	for _, sp := range speeches {
		snap.Speeches = append(snap.Speeches, speechNode(sp))
	}
	return snap, nil
}

// props collects non-nil values.
type props map[string]any

func (p props) text(key string, v *string) props {
	if v != nil {
		p[key] = *v
	}
	return p
}

func (p props) integer(key string, v *int64) props {
	if v != nil {
		p[key] = *v
	}
	return p
}

func (p props) timestamp(key string, v *time.Time) props {
	if v != nil {
		p[key] = v.UTC().Format(time.RFC3339)
	}
	return p
}

func protocolNode(p store.Protocol) map[string]any {
	return props{"id": p.ID}.
		timestamp("date", p.Date).
		integer("legislature_period", p.LegislaturePeriod).
		integer("number", p.Number).
		text("title", p.Title).
		integer("agenda_items_count", p.AgendaItemsCount)
}

func agendaItemNode(a store.AgendaItem) map[string]any {
	return props{"id": a.ID}.
		text("title", a.Title).
		integer("agenda_item_number", a.AgendaItemNumber).
		integer("item_order", a.ItemOrder).
		timestamp("date", a.Date).
		text("protocol_id", a.ProtocolID).
		integer("legislature_period", a.LegislaturePeriod).
		integer("number", a.Number).
		text("match_ag", a.MatchAg)
}

func speakerNode(s store.Speaker) map[string]any {
	return props{"id": s.SpeakerID}.
		text("first_name", s.FirstName).
		text("last_name", s.LastName).
		text("academic_title", s.AcademicTitle).
		text("gender", s.Gender).
		text("party", s.Party).
		text("fraction", s.Fraction).
		text("full_name", s.FullName)
}

func speechNode(s store.Speech) map[string]any {
	return props{"id": s.ID}.
		text("speaker_id", s.SpeakerID).
		integer("protocol_number", s.ProtocolNumber).
		integer("legislature_period", s.LegislaturePeriod).
		text("agenda_item_number", s.AgendaItemNumber).
		text("match_ag", s.MatchAg).
		text("lemmas", s.Lemmas).
		text("abstract_summary", s.AbstractSummary)
}
