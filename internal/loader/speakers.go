package loader

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roach88/plenar/internal/store"
	"github.com/roach88/plenar/internal/tree"
)

// Speakers loads a speaker lookup file: a JSON list of responses, each
// with a status and a result object. Only responses with status "200"
// are loaded. Inserts are committed one by one; a store error aborts
// the run.
//
// The file is the whole input, so a file that cannot be read or parsed
// is an error rather than a skip.
func (l *Loader) Speakers(ctx context.Context, path string) (*Report, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, fmt.Errorf("speaker file %s: %w", path, err)
	}
	entries, ok := doc.(tree.Array)
	if !ok {
		return nil, fmt.Errorf("speaker file %s: %w", path, ErrNotList)
	}

	r := l.start(EntitySpeaker, path)
	r.rep.Files = 1
	file := filepath.Base(path)

	for i, entry := range entries {
		record := fmt.Sprintf("#%d", i)
		result, err := lookupResult(entry)
		if err != nil {
			r.skipRecord(file, record, err)
			continue
		}

		row := speakerRow(result)
		if !hasKey(row, store.SpeakerTable) {
			r.skipRecord(file, record, ErrMissingID)
			continue
		}

		inserted, err := l.store.Upsert(ctx, store.SpeakerTable, row)
		if err != nil {
			return r.rep, fmt.Errorf("%s: %w", file, store.Describe(err))
		}
		r.wrote(inserted)
	}
	return r.finish(), nil
}

// lookupResult returns the result object of a successful lookup
// response.
func lookupResult(entry tree.Value) (tree.Object, error) {
	if _, ok := entry.(tree.Object); !ok {
		return nil, ErrNotObject
	}
	status, _ := tree.Get(entry, "status")
	if s, _ := tree.Text(status); s != "200" {
		return nil, fmt.Errorf("%w: status %q", ErrLookupNotSuccess, s)
	}
	v, _ := tree.Get(entry, "result")
	result, ok := v.(tree.Object)
	if !ok {
		return nil, fmt.Errorf("%w: no result object", ErrLookupNotSuccess)
	}
	return result, nil
}

// speakerRow maps a lookup result and derives full_name.
func speakerRow(result tree.Object) store.Row {
	row := speakerMapping.Row(result)
	row["full_name"] = nil
	if name := fullName(row); name != "" {
		row["full_name"] = name
	}
	return row
}

// fullName joins academic title, first and last name with single
// spaces, ignoring missing parts.
func fullName(row store.Row) string {
	var parts []string
	for _, col := range []string{"academic_title", "first_name", "last_name"} {
		if s, ok := row[col].(string); ok {
			parts = append(parts, s)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}
