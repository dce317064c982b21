package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Stats counts what an export sent to Neo4j.
type Stats struct {
	Protocols   int `json:"protocols"`
	AgendaItems int `json:"agenda_items"`
	Speakers    int `json:"speakers"`
	Speeches    int `json:"speeches"`
}

var constraints = []string{
	`CREATE CONSTRAINT protocol_id_unique IF NOT EXISTS FOR (p:Protocol) REQUIRE p.id IS UNIQUE`,
	`CREATE CONSTRAINT agenda_item_id_unique IF NOT EXISTS FOR (a:AgendaItem) REQUIRE a.id IS UNIQUE`,
	`CREATE CONSTRAINT speaker_id_unique IF NOT EXISTS FOR (s:Speaker) REQUIRE s.id IS UNIQUE`,
	`CREATE CONSTRAINT speech_id_unique IF NOT EXISTS FOR (s:Speech) REQUIRE s.id IS UNIQUE`,
	`CREATE INDEX agenda_item_match_ag IF NOT EXISTS FOR (a:AgendaItem) ON (a.match_ag)`,
}

// statement is one UNWIND write over a parameter list.
type statement struct {
	param  string
	cypher string
}

// statements run in order: nodes first, then the relationships that
// MATCH them.
var statements = []statement{
	{"protocols", `
UNWIND $protocols AS p
MERGE (n:Protocol {id: p.id})
SET n += p
`},
	{"items", `
UNWIND $items AS a
MERGE (n:AgendaItem {id: a.id})
SET n += a
`},
	{"speakers", `
UNWIND $speakers AS s
MERGE (n:Speaker {id: s.id})
SET n += s
`},
	{"speeches", `
UNWIND $speeches AS s
MERGE (n:Speech {id: s.id})
SET n += s
`},
	{"items", `
UNWIND $items AS a
WITH a WHERE a.protocol_id IS NOT NULL
MATCH (i:AgendaItem {id: a.id})
MATCH (p:Protocol {id: a.protocol_id})
MERGE (i)-[:PART_OF]->(p)
`},
	{"speeches", `
UNWIND $speeches AS s
WITH s WHERE s.speaker_id IS NOT NULL
MATCH (sp:Speech {id: s.id})
MATCH (k:Speaker {id: s.speaker_id})
MERGE (sp)-[:HELD_BY]->(k)
`},
	{"speeches", `
UNWIND $speeches AS s
WITH s WHERE s.match_ag IS NOT NULL
MATCH (sp:Speech {id: s.id})
MATCH (a:AgendaItem {match_ag: s.match_ag})
MERGE (sp)-[:ABOUT]->(a)
`},
}

// Export writes snap in one write transaction. Constraint creation is
// best-effort and runs before it.
func (c *Client) Export(ctx context.Context, snap *Snapshot) (Stats, error) {
	session := c.Driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: c.Database,
	})
	defer session.Close(ctx)

	for _, q := range constraints {
		if res, err := session.Run(ctx, q, nil); err != nil {
			c.log.Warn("neo4j schema init failed (continuing)", "error", err)
		} else {
			_, _ = res.Consume(ctx)
		}
	}

	params := map[string]any{
		"protocols": snap.Protocols,
		"items":     snap.AgendaItems,
		"speakers":  snap.Speakers,
		"speeches":  snap.Speeches,
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range statements {
			rows, _ := params[st.param].([]map[string]any)
			if len(rows) == 0 {
				continue
			}
			res, err := tx.Run(ctx, st.cypher, map[string]any{st.param: rows})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("neo4j export: %w", err)
	}

	stats := Stats{
		Protocols:   len(snap.Protocols),
		AgendaItems: len(snap.AgendaItems),
		Speakers:    len(snap.Speakers),
		Speeches:    len(snap.Speeches),
	}
	c.log.Info("graph export finished",
		"protocols", stats.Protocols,
		"agenda_items", stats.AgendaItems,
		"speakers", stats.Speakers,
		"speeches", stats.Speeches,
	)
	return stats, nil
}
