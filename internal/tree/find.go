package tree

import (
	"golang.org/x/text/cases"
)

// Find returns the first value stored under a field named name anywhere
// in v. Names are compared with Unicode case folding.
//
// Traversal is depth-first preorder and first match wins:
//   - fields are visited in source order;
//   - a field's name is checked before its value is searched;
//   - the next field is only visited when the current field's whole
//     subtree produced no match;
//   - array elements are searched in order.
//
// A deeper match inside an earlier field therefore beats a shallower
// match in a later field. A field whose value is null does not count as
// a match and the search moves on.
func Find(v Value, name string) (Value, bool) {
	fold := cases.Fold()
	return find(v, fold.String(name), fold)
}

func find(v Value, target string, fold cases.Caser) (Value, bool) {
	switch val := v.(type) {
	case Object:
		for _, f := range val {
			if fold.String(f.Key) == target && !IsNull(f.Value) {
				return f.Value, true
			}
			if found, ok := find(f.Value, target, fold); ok {
				return found, true
			}
		}
	case Array:
		for _, elem := range val {
			if found, ok := find(elem, target, fold); ok {
				return found, true
			}
		}
	}
	return nil, false
}
