// Copyright (c) 2025 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package ordered provides a map which remembers the order keys were first inserted in.
package ordered

import (
	"bytes"
	"encoding/json"
)

// Map is a map which iterates its entries in first-insertion order.
// The zero value is ready to use.
type Map[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	if m == nil || m.values == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[k]
	return v, ok
}

// Set stores v under k. A new key is appended to the iteration order,
// an existing key keeps its position.
func (m *Map[K, V]) Set(k K, v V) {
	if m.values == nil {
		m.values = make(map[K]V)
	}
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	keys := make([]K, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Each calls f for every entry in insertion order until f returns false.
func (m *Map[K, V]) Each(f func(K, V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !f(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy of m.
func (m *Map[K, V]) Clone() *Map[K, V] {
	c := &Map[K, V]{}
	m.Each(func(k K, v V) bool {
		c.Set(k, v)
		return true
	})
	return c
}

// MarshalJSON encodes the map as a JSON object with keys in insertion order.
// Keys are encoded with [json.Marshal] and must therefore encode to JSON strings.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	var err error
	i := 0
	m.Each(func(k K, v V) bool {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++

		var kb, vb []byte
		kb, err = json.Marshal(k)
		if err != nil {
			return false
		}
		vb, err = json.Marshal(v)
		if err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
