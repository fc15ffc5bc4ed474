package ctfmodel

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OrderedMap is a string-keyed map that remembers insertion order. The CTF
// input format relies on the declaration order of `services` and the inner
// objects of `flags_stored` to disambiguate otherwise-identical entries when
// two data sources describe the same round differently, so plain Go maps
// (which iterate in randomized order) cannot stand in for it.
type OrderedMap[V any] struct {
	keys []string
	data map[string]V
}

// NewOrderedMap returns an empty, ready-to-use OrderedMap.
func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{data: make(map[string]V)}
}

// Set inserts or overwrites a key. The first insertion of a key fixes its
// position; overwriting an existing key does not move it.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.data == nil {
		m.data = make(map[string]V)
	}
	if _, ok := m.data[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.data[key] = value
}

// Get looks up a key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	v, ok := m.data[key]
	return v, ok
}

// Keys returns the keys in insertion order. The caller must not mutate it.
func (m *OrderedMap[V]) Keys() []string {
	return m.keys
}

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// Range calls fn for every entry in insertion order.
func (m *OrderedMap[V]) Range(fn func(key string, value V)) {
	for _, k := range m.keys {
		fn(k, m.data[k])
	}
}

// UnmarshalJSON decodes a JSON object, preserving key order, and rejecting
// duplicate keys (the JSON spec permits them, but a duplicate key in a CTF
// round or service table is always an authoring mistake).
func (m *OrderedMap[V]) UnmarshalJSON(raw []byte) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ctfmodel: expected JSON object, got %v", tok)
	}

	*m = OrderedMap[V]{data: make(map[string]V)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ctfmodel: expected string object key, got %v", keyTok)
		}
		if _, dup := m.data[key]; dup {
			return fmt.Errorf("ctfmodel: duplicate key %q", key)
		}
		var value V
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("ctfmodel: decoding value for key %q: %w", key, err)
		}
		m.keys = append(m.keys, key)
		m.data[key] = value
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON re-emits the object in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(m.data[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
