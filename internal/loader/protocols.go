package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/roach88/plenar/internal/store"
	"github.com/roach88/plenar/internal/tree"
)

// Protocols loads the top-level protocol object of every export file
// in dir. All inserts share one transaction that is committed at the
// end of the run; a store error aborts the run and nothing is kept.
func (l *Loader) Protocols(ctx context.Context, dir string) (*Report, error) {
	files, err := ListJSONFiles(dir)
	if err != nil {
		return nil, err
	}
	r := l.start(EntityProtocol, dir)

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
		if written {
			r.wrote(inserted)
		}
	}

	if err := tx.Commit(); err != nil {
		return r.rep, err
	}
	return r.finish(), nil
}

// protocolObject returns the document's top-level protocol object. An
// empty object counts as missing.
func protocolObject(doc tree.Value) (tree.Object, bool) {
	v, _ := tree.Get(doc, "protocol")
	obj, ok := v.(tree.Object)
	if !ok || len(obj) == 0 {
		return nil, false
	}
	return obj, true
}

// upsertProtocol writes one protocol row. written is false when the
// protocol has no id, which is recorded as a skip; inserted is false on
// a key conflict. Only store errors are returned.
func upsertProtocol(ctx context.Context, r *run, tx *store.Tx, file string, protocol tree.Object) (written, inserted bool, err error) {
	row := protocolMapping.Row(protocol)
	if !hasKey(row, store.ProtocolTable) {
		r.skipRecord(file, "protocol", ErrMissingID)
		return false, false, nil
	}
	r.checkDate(file, row["id"].(string), protocol, row)
	inserted, err = tx.Upsert(ctx, store.ProtocolTable, row)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", file, store.Describe(err))
	}
	return true, inserted, nil
}
