// Package joinkey builds the match_ag key that correlates protocols,
// agenda items and speeches loaded from independent files.
//
// A Key is a weak reference: records are joined by value equality on
// the key alone. No store-level constraint backs it and neither side
// owns the other.
//
// The key is the raw concatenation of legislature period, protocol
// number and local agenda number, with no delimiter. The encoding is
// lossy: period 1 / number 23 and period 12 / number 3 produce the same
// prefix. Existing data depends on this exact shape, so it is kept.
package joinkey

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/plenar/internal/tree"
)

// Key is a synthesized match_ag value.
type Key string

// String returns the key text.
func (k Key) String() string {
	return string(k)
}

// Synthesize concatenates the canonical text of period, number and
// local in that order. It is absent when any part is missing, null or
// blank (see part); an absent key is never the empty string.
func Synthesize(period, number, local tree.Value) (Key, bool) {
	p, ok := part(period)
	if !ok {
		return "", false
	}
	n, ok := part(number)
	if !ok {
		return "", false
	}
	l, ok := part(local)
	if !ok {
		return "", false
	}
	return Key(p + n + l), true
}

// part returns the text of one key component. Blank strings, zero
// numbers, false and empty collections count as absent, so an empty
// label never shortens a key into another protocol's key.
func part(v tree.Value) (string, bool) {
	s, ok := tree.Text(v)
	if !ok {
		return "", false
	}
	switch val := v.(type) {
	case tree.String:
		if strings.TrimSpace(string(val)) == "" {
			return "", false
		}
	case tree.Number:
		if f, err := strconv.ParseFloat(string(val), 64); err == nil && f == 0 {
			return "", false
		}
	case tree.Bool:
		if !bool(val) {
			return "", false
		}
	case tree.Array:
		if len(val) == 0 {
			return "", false
		}
	case tree.Object:
		if len(val) == 0 {
			return "", false
		}
	}
	return s, true
}

// FromInts builds the key from typed integer columns with the same
// rule as SQLExpr: only a NULL part makes the key absent.
func FromInts(period, number, local *int64) (Key, bool) {
	if period == nil || number == nil || local == nil {
		return "", false
	}
	return Key(strconv.FormatInt(*period, 10) +
		strconv.FormatInt(*number, 10) +
		strconv.FormatInt(*local, 10)), true
}

// SQLExpr renders the same rule as a SQL expression over three integer
// column references. The || operator yields NULL when any operand is
// NULL, on both SQLite and Postgres.
func SQLExpr(period, number, local string) string {
	return fmt.Sprintf("CAST(%s AS TEXT) || CAST(%s AS TEXT) || CAST(%s AS TEXT)", period, number, local)
}
