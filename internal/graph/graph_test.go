package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plenar/internal/config"
	"github.com/roach88/plenar/internal/logger"
	"github.com/roach88/plenar/internal/store"
)

func ptr[T any](v T) *T { return &v }

func createSeededStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	s, err := store.Open(ctx, store.SQLite.Driver, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	rows := []struct {
		table store.Table
		row   store.Row
	}{
		{store.ProtocolTable, store.Row{"id": "p1", "legislature_period": int64(20), "number": int64(5),
			"date": time.Date(2022, time.March, 2, 0, 0, 0, 0, time.UTC)}},
		{store.AgendaItemTable, store.Row{"id": "a1", "item_order": int64(1), "protocol_id": "p1"}},
		{store.SpeakerTable, store.Row{"speaker_id": "11004023", "full_name": "Dr. Anna Muster"}},
		{store.SpeechTable, store.Row{"nlp_speech_id": "c56a4180-65aa-42ec-a945-5fd21dec0538",
			"speaker_id": "11004023", "match_ag": "2051"}},
	}
	for _, r := range rows {
		_, err := s.Upsert(ctx, r.table, r.row)
		require.NoError(t, err)
	}
	_, err = s.BackfillAgendaItems(ctx)
	require.NoError(t, err)
	return s
}

func TestNodesOmitNullColumns(t *testing.T) {
	node := protocolNode(store.Protocol{ID: "p1", Number: ptr(int64(5))})
	assert.Equal(t, map[string]any{"id": "p1", "number": int64(5)}, node)

	node = speakerNode(store.Speaker{SpeakerID: "s1"})
	assert.Equal(t, map[string]any{"id": "s1"}, node)
}

func TestNodesFormatDates(t *testing.T) {
	date := time.Date(2022, time.March, 2, 9, 30, 0, 0, time.FixedZone("CET", 3600))
	node := agendaItemNode(store.AgendaItem{ID: "a1", Date: &date, MatchAg: ptr("2051")})
	assert.Equal(t, "2022-03-02T08:30:00Z", node["date"])
	assert.Equal(t, "2051", node["match_ag"])
}

func TestBuildSnapshot(t *testing.T) {
	s := createSeededStore(t)

	snap, err := BuildSnapshot(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, snap.Protocols, 1)
	require.Len(t, snap.AgendaItems, 1)
	require.Len(t, snap.Speakers, 1)
	require.Len(t, snap.Speeches, 1)

	assert.Equal(t, "2022-03-02T00:00:00Z", snap.Protocols[0]["date"])
	assert.Equal(t, "p1", snap.AgendaItems[0]["protocol_id"])
	assert.Equal(t, snap.AgendaItems[0]["match_ag"], snap.Speeches[0]["match_ag"])
	assert.Equal(t, "11004023", snap.Speeches[0]["speaker_id"])
	assert.Equal(t, "Dr. Anna Muster", snap.Speakers[0]["full_name"])
}

func TestOpen_Disabled(t *testing.T) {
	_, err := Open(context.Background(), config.Neo4j{}, nil)
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestExport_Neo4j(t *testing.T) {
	uri := os.Getenv("NEO4J_URI")
	if uri == "" {
		t.Skip("NEO4J_URI not set")
	}
	ctx := context.Background()
	cfg := config.Neo4j{
		URI:      uri,
		User:     os.Getenv("NEO4J_USER"),
		Password: os.Getenv("NEO4J_PASSWORD"),
		Database: os.Getenv("NEO4J_DATABASE"),
	}
	if cfg.User == "" {
		cfg.User = "neo4j"
	}

	c, err := Open(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close(ctx) })

	snap, err := BuildSnapshot(ctx, createSeededStore(t))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		stats, err := c.Export(ctx, snap)
		require.NoError(t, err)
		assert.Equal(t, Stats{Protocols: 1, AgendaItems: 1, Speakers: 1, Speeches: 1}, stats)
	}

	result, err := neo4j.ExecuteQuery(ctx, c.Driver, `
MATCH (:Speech {id: $id})-[r:ABOUT]->(:AgendaItem)-[:PART_OF]->(:Protocol {id: "p1"})
RETURN count(r) AS n`,
		map[string]any{"id": "c56a4180-65aa-42ec-a945-5fd21dec0538"},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(c.Database))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	n, _ := result.Records[0].Get("n")
	assert.Equal(t, int64(1), n, "repeated export must not duplicate relationships")
}
