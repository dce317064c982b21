package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/roach88/plenar/internal/store"
	"github.com/roach88/plenar/internal/tree"
)

// AgendaItems loads the protocol of every export file in dir together
// with the agenda items found under its "agendaItems" key, then runs
// the derived-column backfill.
//
// Protocols and items share one transaction committed at the end of
// the run. Each item is written inside its own savepoint, so an item
// the store rejects is rolled back alone and the run continues. Store
// errors outside the item savepoints abort the run.
func (l *Loader) AgendaItems(ctx context.Context, dir string) (*Report, error) {
	files, err := ListJSONFiles(dir)
	if err != nil {
		return nil, err
	}
	r := l.start(EntityAgendaItem, dir)

	tx, err := l.store.Begin(ctx)
	if err != nil {
		return r.rep, err
	}
	defer tx.Rollback()

	for _, path := range files {
		r.rep.Files++
		file := filepath.Base(path)
		r.log.Info("processing file", "file", file)

		doc, err := readDocument(path)
		if err != nil {
			r.skipFile(file, err)
			continue
		}
		protocol, ok := protocolObject(doc)
		if !ok {
			r.skipFile(file, ErrNoProtocol)
			continue
		}
		written, inserted, err := upsertProtocol(ctx, r, tx, file, protocol)
		if err != nil {
			return r.rep, err
		}
		if written && !inserted {
			r.log.Debug("protocol already loaded", "file", file)
		}

		if err := l.loadAgendaItems(ctx, r, tx, file, doc, protocol); err != nil {
			return r.rep, err
		}
	}

	if err := tx.Commit(); err != nil {
		return r.rep, err
	}

	n, err := l.store.BackfillAgendaItems(ctx)
	if err != nil {
		return r.rep, store.Describe(err)
	}
	r.rep.Backfilled = n
	r.log.Info("derived columns updated", "rows", n)
	return r.finish(), nil
}

// loadAgendaItems writes the items of one document. Only savepoint
// failures are returned.
func (l *Loader) loadAgendaItems(ctx context.Context, r *run, tx *store.Tx, file string, doc tree.Value, protocol tree.Object) error {
	found, ok := tree.Find(doc, "agendaitems")
	if !ok {
		r.log.Debug("no agenda items", "file", file)
		return nil
	}
	items, ok := found.(tree.Array)
	if !ok {
		r.skipRecord(file, "agendaitems", ErrNotList)
		return nil
	}

	// Items that omit protocolId belong to the enclosing protocol.
	id, _ := protocol.Get("id")
	owner, _ := tree.Text(id)

	for i, item := range items {
		record := fmt.Sprintf("#%d", i)
		if _, ok := item.(tree.Object); !ok {
			r.skipRecord(file, record, ErrNotObject)
			continue
		}

		row := agendaItemMapping.Row(item)
		if !hasKey(row, store.AgendaItemTable) {
			r.skipRecord(file, record, ErrMissingID)
			continue
		}
		record = row["id"].(string)
		r.checkDate(file, record, item, row)
		if row["protocol_id"] == nil && owner != "" {
			row["protocol_id"] = owner
		}

		var inserted bool
		err := tx.Savepoint(ctx, func() error {
			var err error
			inserted, err = tx.Upsert(ctx, store.AgendaItemTable, row)
			return err
		})
		switch {
		case errors.Is(err, store.ErrSavepoint):
			return fmt.Errorf("%s: %w", file, err)
		case err != nil:
			r.failRecord(file, record, store.Describe(err))
		default:
			r.wrote(inserted)
		}
	}
	return nil
}
