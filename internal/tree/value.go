package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value is a sealed interface over the decoded JSON variants.
// Only Null, String, Number, Bool, Array, and Object implement it.
type Value interface {
	treeValue() // Sealed - only these types implement it
}

// Null represents a JSON null.
// Using an explicit type keeps "present but null" distinct from "missing".
type Null struct{}

func (Null) treeValue() {}

// String represents a JSON string.
type String string

func (String) treeValue() {}

// Number holds a JSON number exactly as it appeared in the source.
// The literal is kept so that "19" and "19.0" stay distinguishable when
// the value is turned back into text.
type Number string

func (Number) treeValue() {}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) treeValue() {}

// Array represents a JSON array.
type Array []Value

func (Array) treeValue() {}

// Field is one named member of an Object.
type Field struct {
	Key   string
	Value Value
}

// Object represents a JSON object as an ordered field list.
// Source order is preserved; Find depends on it.
type Object []Field

func (Object) treeValue() {}

// Get returns the value stored under key (exact match).
func (obj Object) Get(key string) (Value, bool) {
	for _, f := range obj {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// Keys returns the field names in source order.
func (obj Object) Keys() []string {
	keys := make([]string, len(obj))
	for i, f := range obj {
		keys[i] = f.Key
	}
	return keys
}

// set stores v under key. An existing key keeps its position and takes
// the new value, which matches how a JSON object with repeated names is
// usually read (last value wins).
func (obj Object) set(key string, v Value) Object {
	for i := range obj {
		if obj[i].Key == key {
			obj[i].Value = v
			return obj
		}
	}
	return append(obj, Field{Key: key, Value: v})
}

// Get looks up key on v when v is an Object. Any other variant, and a
// nil v, yield absent.
func Get(v Value, key string) (Value, bool) {
	obj, ok := v.(Object)
	if !ok {
		return nil, false
	}
	return obj.Get(key)
}

// IsNull reports whether v is missing or JSON null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// MarshalJSON implements json.Marshaler for Object in source field order.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, f := range obj {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalString(f.Key)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", f.Key, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", f.Key, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for Array.
func (arr Array) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := Marshal(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// Marshal encodes v as compact JSON. A nil v encodes as null.
func Marshal(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return marshalString(string(val))
	case Number:
		return []byte(val), nil
	case Bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Array:
		return val.MarshalJSON()
	case Object:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown tree value type: %T", v)
	}
}

// marshalString encodes s without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// json.Encoder adds trailing newline, remove it
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
