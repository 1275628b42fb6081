// Package sad implements a JSON object that preserves field insertion order.
//
// KERI treats key order as part of an event's identity: the SAID is a hash
// of the exact serialization, so re-marshaling a decoded event must
// reproduce the original field order byte for byte. Go's encoding/json
// marshals map[string]any with keys sorted alphabetically, which silently
// breaks that invariant. Map works around it by keeping fields in an
// ordered slice and writing a custom MarshalJSON.
package sad

import (
	"bytes"
	"encoding/json"

	"github.com/cvsouth/kericore/kerierr"
)

// Field is one key/value pair of a Map, in the order it was set.
type Field struct {
	Key string
	Val any
}

// Map is an ordered JSON object.
type Map struct {
	fields []Field
	index  map[string]int
}

// New builds a Map from fields, in the order given. A repeated key keeps its
// first position but takes the last value, matching JSON object semantics.
func New(fields ...Field) *Map {
	m := &Map{index: make(map[string]int, len(fields))}
	for _, f := range fields {
		m.Set(f.Key, f.Val)
	}
	return m
}

// Get returns the value stored under key, and whether it was present.
func (m *Map) Get(key string) (any, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.fields[i].Val, true
}

// GetString returns the string stored under key, erroring if absent or of
// another type.
func (m *Map) GetString(key string) (string, error) {
	v, ok := m.Get(key)
	if !ok {
		return "", kerierr.ErrInvalidEvent
	}
	s, ok := v.(string)
	if !ok {
		return "", kerierr.ErrInvalidEvent
	}
	return s, nil
}

// Set inserts or updates the value under key. A new key is appended to the
// end; an existing key keeps its original position.
func (m *Map) Set(key string, val any) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.fields[i].Val = val
		return
	}
	m.index[key] = len(m.fields)
	m.fields = append(m.fields, Field{Key: key, Val: val})
}

// Keys returns the object's keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.Key
	}
	return out
}

// Len returns the number of fields.
func (m *Map) Len() int { return len(m.fields) }

// Clone makes a shallow copy of m: nested *Map values are themselves cloned
// (recursively), but other value types are copied by reference. This is
// sufficient for the dummy-substitute-then-restore pattern SAID derivation
// uses, since that pattern only ever mutates top-level string fields.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	out := &Map{
		fields: make([]Field, len(m.fields)),
		index:  make(map[string]int, len(m.index)),
	}
	for k, v := range m.index {
		out.index[k] = v
	}
	for i, f := range m.fields {
		if nested, ok := f.Val.(*Map); ok {
			out.fields[i] = Field{Key: f.Key, Val: nested.Clone()}
			continue
		}
		out.fields[i] = f
	}
	return out
}

// MarshalJSON writes the object with its fields in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil || len(m.fields) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range m.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(f.Val)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object into m, recording fields in the order
// they appear in the input.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	delim, ok := tok.(json.Delim)
	if !ok || delim != '{' {
		return kerierr.ErrInvalidEvent
	}

	m.fields = nil
	m.index = make(map[string]int)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return kerierr.ErrInvalidEvent
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		val, err := decodeValue(raw)
		if err != nil {
			return err
		}
		m.Set(key, val)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func decodeValue(raw json.RawMessage) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		nested := &Map{}
		if err := nested.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		return nested, nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, err
		}
		out := make([]any, len(arr))
		for i, elem := range arr {
			v, err := decodeValue(elem)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
