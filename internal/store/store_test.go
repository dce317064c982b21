package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plenar/internal/joinkey"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(context.Background(), SQLite.Driver, path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		s, err := Open(ctx, SQLite.Driver, path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(ctx, SQLite.Driver, path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range Tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table.Name,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table.Name, err)
		}
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name     string
		expected string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"}, // NORMAL
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.verifyPragma(tt.name, tt.expected); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "whatever")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unsupported driver "mysql"`)
}

func TestDialect_Placeholder(t *testing.T) {
	assert.Equal(t, "?", SQLite.Placeholder(3))
	assert.Equal(t, "$3", Postgres.Placeholder(3))
}

func TestTable_InsertSQL(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO speaker (speaker_id, first_name, last_name, academic_title, gender, party, fraction, full_name) "+
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (speaker_id) DO NOTHING",
		SpeakerTable.insertSQL(Postgres))
}

func TestUpsert_SkipsConflict(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	inserted, err := s.Upsert(ctx, ProtocolTable, Row{"id": "p1", "title": "first"})
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = s.Upsert(ctx, ProtocolTable, Row{"id": "p1", "title": "second"})
	require.NoError(t, err, "a key conflict is not an error")
	assert.False(t, inserted)

	protocols, err := s.Protocols(ctx, 0)
	require.NoError(t, err)
	require.Len(t, protocols, 1)
	assert.Equal(t, "first", *protocols[0].Title, "existing row must not be overwritten")
}

func TestUpsert_MissingKey(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, key := range []any{nil, "", "   "} {
		_, err := s.Upsert(ctx, SpeakerTable, Row{"speaker_id": key, "first_name": "Anna"})
		assert.ErrorIs(t, err, ErrMissingKey)
	}

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Speakers)
}

func TestUpsert_AbsentColumnsAreNull(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, SpeakerTable, Row{"speaker_id": "11000001", "last_name": "Muster"})
	require.NoError(t, err)

	speakers, err := s.Speakers(ctx, 0)
	require.NoError(t, err)
	require.Len(t, speakers, 1)
	assert.Equal(t, "Muster", *speakers[0].LastName)
	assert.Nil(t, speakers[0].FirstName)
	assert.Nil(t, speakers[0].Party)
}

func TestSavepoint_IsolatesFailedRecord(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tx.Upsert(ctx, ProtocolTable, Row{"id": "p1"})
	require.NoError(t, err)

	err = tx.Savepoint(ctx, func() error {
		_, err := tx.Upsert(ctx, AgendaItemTable, Row{"id": "a1", "protocol_id": "p1"})
		return err
	})
	require.NoError(t, err)

	err = tx.Savepoint(ctx, func() error {
		_, err := tx.Upsert(ctx, AgendaItemTable, Row{"id": "a2", "protocol_id": "missing"})
		return err
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSavepoint)
	assert.True(t, IsForeignKeyViolation(err))

	err = tx.Savepoint(ctx, func() error {
		_, err := tx.Upsert(ctx, AgendaItemTable, Row{"id": "a3", "protocol_id": "p1"})
		return err
	})
	require.NoError(t, err, "transaction must stay usable after a failed record")

	require.NoError(t, tx.Commit())

	items, err := s.AgendaItems(ctx, 0)
	require.NoError(t, err)
	var ids []string
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	assert.Equal(t, []string{"a1", "a3"}, ids)
}

func TestSavepoint_RollsBackPartialWork(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	sentinel := errors.New("record rejected")

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback()

	err = tx.Savepoint(ctx, func() error {
		if _, err := tx.Upsert(ctx, SpeakerTable, Row{"speaker_id": "s1"}); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	require.NoError(t, tx.Commit())

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.Speakers)
}

func TestRollback_AfterCommitIsNoop(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	tx, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.NoError(t, tx.Rollback())
}

func TestDeleteProtocol_CascadesToAgendaItems(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Upsert(ctx, ProtocolTable, Row{"id": "p1"})
	require.NoError(t, err)
	_, err = s.Upsert(ctx, AgendaItemTable, Row{"id": "a1", "protocol_id": "p1"})
	require.NoError(t, err)

	_, err = s.db.ExecContext(ctx, "DELETE FROM protocol WHERE id = ?", "p1")
	require.NoError(t, err)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, counts.AgendaItems)
}

// seedBackfill loads one protocol (period 20, number 5) with two linked
// items, one item without order and one item without a protocol.
func seedBackfill(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	rows := []struct {
		table Table
		row   Row
	}{
		{ProtocolTable, Row{"id": "p1", "legislature_period": int64(20), "number": int64(5)}},
		{AgendaItemTable, Row{"id": "a1", "item_order": int64(1), "protocol_id": "p1"}},
		{AgendaItemTable, Row{"id": "a2", "item_order": int64(2), "protocol_id": "p1"}},
		{AgendaItemTable, Row{"id": "a3", "protocol_id": "p1"}},
		{AgendaItemTable, Row{"id": "a4", "item_order": int64(7)}},
	}
	for _, r := range rows {
		_, err := s.Upsert(ctx, r.table, r.row)
		require.NoError(t, err)
	}
}

func agendaItemsByID(t *testing.T, s *Store) map[string]AgendaItem {
	t.Helper()
	items, err := s.AgendaItems(context.Background(), 0)
	require.NoError(t, err)
	out := make(map[string]AgendaItem, len(items))
	for _, item := range items {
		out[item.ID] = item
	}
	return out
}

func assertBackfilled(t *testing.T, s *Store) {
	t.Helper()
	items := agendaItemsByID(t, s)

	for id, key := range map[string]string{"a1": "2051", "a2": "2052"} {
		item := items[id]
		require.NotNil(t, item.LegislaturePeriod, id)
		require.NotNil(t, item.Number, id)
		require.NotNil(t, item.MatchAg, id)
		assert.Equal(t, int64(20), *item.LegislaturePeriod, id)
		assert.Equal(t, int64(5), *item.Number, id)
		assert.Equal(t, key, *item.MatchAg, id)
	}

	assert.Equal(t, int64(20), *items["a3"].LegislaturePeriod)
	assert.Nil(t, items["a3"].MatchAg, "missing order yields no key")

	assert.Nil(t, items["a4"].LegislaturePeriod, "unlinked item is untouched")
	assert.Nil(t, items["a4"].MatchAg)
}

func TestBackfillAgendaItems(t *testing.T) {
	s := createTestStore(t)
	seedBackfill(t, s)

	n, err := s.BackfillAgendaItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assertBackfilled(t, s)
}

func TestBackfillAgendaItems_Idempotent(t *testing.T) {
	s := createTestStore(t)
	seedBackfill(t, s)
	ctx := context.Background()

	_, err := s.BackfillAgendaItems(ctx)
	require.NoError(t, err)
	first := agendaItemsByID(t, s)

	_, err = s.BackfillAgendaItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, agendaItemsByID(t, s))
}

func TestBackfillAgendaItems_EmptyStore(t *testing.T) {
	s := createTestStore(t)

	n, err := s.BackfillAgendaItems(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSpeechesByMatchKey(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, row := range []Row{
		{"nlp_speech_id": "b", "match_ag": "2052"},
		{"nlp_speech_id": "a", "match_ag": "2052"},
		{"nlp_speech_id": "c", "match_ag": "2051"},
		{"nlp_speech_id": "d"},
	} {
		_, err := s.Upsert(ctx, SpeechTable, row)
		require.NoError(t, err)
	}

	speeches, err := s.SpeechesByMatchKey(ctx, joinkey.Key("2052"))
	require.NoError(t, err)
	require.Len(t, speeches, 2)
	assert.Equal(t, "a", speeches[0].ID)
	assert.Equal(t, "b", speeches[1].ID)

	speeches, err = s.SpeechesByMatchKey(ctx, joinkey.Key("9999"))
	require.NoError(t, err)
	assert.Empty(t, speeches)
}

func TestProtocols_MostRecentFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2024, time.March, d, 9, 0, 0, 0, time.UTC) }
	for _, row := range []Row{
		{"id": "old", "date": day(1)},
		{"id": "undated"},
		{"id": "new", "date": day(20)},
		{"id": "mid", "date": day(10)},
	} {
		_, err := s.Upsert(ctx, ProtocolTable, row)
		require.NoError(t, err)
	}

	all, err := s.Protocols(ctx, 0)
	require.NoError(t, err)
	var ids []string
	for _, p := range all {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"new", "mid", "old", "undated"}, ids)
	require.NotNil(t, all[0].Date)
	assert.True(t, day(20).Equal(*all[0].Date))

	limited, err := s.Protocols(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCounts(t *testing.T) {
	s := createTestStore(t)
	seedBackfill(t, s)
	ctx := context.Background()

	_, err := s.Upsert(ctx, SpeakerTable, Row{"speaker_id": "s1"})
	require.NoError(t, err)

	counts, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, Counts{Protocols: 1, AgendaItems: 4, Speakers: 1}, counts)
}

func TestDescribe(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assert.NoError(t, Describe(nil))

	plain := errors.New("plain")
	assert.Equal(t, plain, Describe(plain))

	_, err := s.Upsert(ctx, AgendaItemTable, Row{"id": "a1", "protocol_id": "missing"})
	require.Error(t, err)
	described := Describe(err)
	assert.ErrorIs(t, described, err)
	assert.Contains(t, described.Error(), "(code 19/787)")
}

func TestPostgres_UpsertAndBackfill(t *testing.T) {
	s := createPostgresStore(t)
	seedBackfill(t, s)
	ctx := context.Background()

	inserted, err := s.Upsert(ctx, ProtocolTable, Row{"id": "p1", "number": int64(99)})
	require.NoError(t, err)
	assert.False(t, inserted)

	_, err = s.BackfillAgendaItems(ctx)
	require.NoError(t, err)
	assertBackfilled(t, s)

	_, err = s.Upsert(ctx, SpeechTable, Row{
		"nlp_speech_id": "9b2e8c4e-1f0a-4c57-9d43-2f3a4f1c8a11",
		"match_ag":      "2051",
	})
	require.NoError(t, err)
	speeches, err := s.SpeechesByMatchKey(ctx, joinkey.Key("2051"))
	require.NoError(t, err)
	require.Len(t, speeches, 1)
	assert.Equal(t, "9b2e8c4e-1f0a-4c57-9d43-2f3a4f1c8a11", speeches[0].ID)
}
