package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Parse decodes a single JSON document into a Value.
//
// Object field order and number literals are kept as they appear in
// the source. Repeated names within one object collapse onto the first
// position with the last value. Trailing data after the document is an
// error.
func Parse(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse: empty document")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: trailing data after JSON value")
	}
	return v, nil
}

// decodeValue reads the next complete value from dec.
func decodeValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case string:
		return String(t), nil
	case json.Number:
		return Number(t), nil
	case bool:
		return Bool(t), nil
	case nil:
		return Null{}, nil
	default:
		return nil, fmt.Errorf("unsupported token %T", tok)
	}
}

func decodeObject(dec *json.Decoder) (Value, error) {
	obj := Object{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("object key is %T, not string", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("object key %q: %w", key, err)
		}
		obj = obj.set(key, val)
	}
	// Consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeArray(dec *json.Decoder) (Value, error) {
	arr := Array{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("array index %d: %w", len(arr), err)
		}
		arr = append(arr, val)
	}
	// Consume closing ']'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return arr, nil
}

// Normalize returns a copy of v with every object key lowercased and
// NFC-normalized, recursively. Keys that become equal collapse onto the
// first position with the last value.
func Normalize(v Value) Value {
	lower := cases.Lower(language.Und)
	return normalize(v, lower)
}

func normalize(v Value, lower cases.Caser) Value {
	switch val := v.(type) {
	case Object:
		out := make(Object, 0, len(val))
		for _, f := range val {
			key := norm.NFC.String(lower.String(f.Key))
			out = out.set(key, normalize(f.Value, lower))
		}
		return out
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = normalize(elem, lower)
		}
		return out
	default:
		return v
	}
}
