package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/plenar/internal/joinkey"
	"github.com/roach88/plenar/internal/store"
	"github.com/roach88/plenar/internal/tree"
)

// Speeches loads the speeches found under the "NLPSpeeches" key of
// every export file in dir.
//
// Every insert runs in its own transaction: a speech the store rejects
// is rolled back alone and all earlier speeches stay committed.
func (l *Loader) Speeches(ctx context.Context, dir string) (*Report, error) {
	files, err := ListJSONFiles(dir)
	if err != nil {
		return nil, err
	}
	r := l.start(EntitySpeech, dir)

	for _, path := range files {
		r.rep.Files++
		file := filepath.Base(path)
		r.log.Info("processing file", "file", file)

		doc, err := readDocument(path)
		if err != nil {
			r.skipFile(file, err)
			continue
		}
		found, ok := tree.Find(doc, "nlpspeeches")
		if !ok {
			r.log.Debug("no speeches", "file", file)
			continue
		}
		speeches, ok := found.(tree.Array)
		if !ok {
			r.skipRecord(file, "nlpspeeches", ErrNotList)
			continue
		}

		// Protocol number and period are searched across the whole
		// document, so the first match in traversal order applies to
		// every speech in the file.
		number, _ := tree.Find(doc, "number")
		period, _ := tree.Find(doc, "legislatureperiod")

		for i, speech := range speeches {
			record := fmt.Sprintf("#%d", i)
			if _, ok := speech.(tree.Object); !ok {
				r.skipRecord(file, record, ErrNotObject)
				continue
			}
			row, err := speechRow(speech, period, number)
			if err != nil {
				if row != nil {
					record, _ = row[store.SpeechTable.Key].(string)
				}
				if errors.Is(err, ErrMissingID) {
					r.skipRecord(file, record, err)
				} else {
					r.failRecord(file, record, err)
				}
				continue
			}
			record = row[store.SpeechTable.Key].(string)

			inserted, err := l.insertSpeech(ctx, row)
			if err != nil {
				r.failRecord(file, record, store.Describe(err))
				continue
			}
			r.wrote(inserted)
		}
	}
	return r.finish(), nil
}

// speechRow builds the speech row from the speech record and the
// document-level period and number. A speech without id yields
// ErrMissingID; one whose id is not a UUID yields ErrInvalidSpeechID
// together with the partial row.
func speechRow(speech, period, number tree.Value) (store.Row, error) {
	idValue, _ := tree.Get(speech, "id")
	id, ok := tree.Text(idValue)
	if !ok || strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}

	row := speechMapping.Row(speech)
	row[store.SpeechTable.Key] = id
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return row, fmt.Errorf("%w: %v", ErrInvalidSpeechID, err)
	}
	row[store.SpeechTable.Key] = parsed.String()

	row["protocol_number"] = nil
	if n, ok := tree.Int(number); ok {
		row["protocol_number"] = n
	}
	row["legislature_period"] = nil
	if p, ok := tree.Int(period); ok {
		row["legislature_period"] = p
	}

	row["lemmas"] = lemmas(speech)

	local, _ := tree.Get(speech, "agendaitemnumber")
	row["match_ag"] = nil
	if key, ok := joinkey.Synthesize(period, number, local); ok {
		row["match_ag"] = key.String()
	}
	return row, nil
}

// lemmas comma-joins the lemmaValue of every named entity that has
// one. Entities are looked up anywhere below the speech.
func lemmas(speech tree.Value) string {
	found, _ := tree.Find(speech, "namedentities")
	entities, ok := found.(tree.Array)
	if !ok {
		return ""
	}
	var values []string
	for _, entity := range entities {
		v, ok := tree.Get(entity, "lemmavalue")
		if !ok {
			continue
		}
		s, _ := tree.Text(v)
		values = append(values, s)
	}
	return strings.Join(values, ",")
}

// insertSpeech writes one speech in its own transaction.
func (l *Loader) insertSpeech(ctx context.Context, row store.Row) (bool, error) {
	tx, err := l.store.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	inserted, err := tx.Upsert(ctx, store.SpeechTable, row)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return inserted, nil
}
