package crossref

import (
	"bytes"
	"encoding/json"
	"fmt"

	"sjsage522/rankscout/internal/crawler"
)

// Map is a search key to suppliers mapping that remembers insertion order
type Map struct {
	keys    []string
	entries map[string][]crawler.SupplierRecord
}

// NewMap creates an empty map
func NewMap() *Map {
	return &Map{entries: make(map[string][]crawler.SupplierRecord)}
}

// Set stores suppliers under key. A key seen before keeps its position and
// gets the new suppliers.
func (m *Map) Set(key string, suppliers []crawler.SupplierRecord) {
	if _, exists := m.entries[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = suppliers
}

// Get returns the suppliers stored for key
func (m *Map) Get(key string) ([]crawler.SupplierRecord, bool) {
	suppliers, ok := m.entries[key]
	return suppliers, ok
}

// Keys returns the keys in insertion order
func (m *Map) Keys() []string {
	keys := make([]string, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of keys
func (m *Map) Len() int {
	return len(m.keys)
}

// MarshalJSON encodes the map as an object with keys in insertion order
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}

		encodedKey, err := marshalNoEscape(key)
		if err != nil {
			return nil, err
		}
		buf.Write(encodedKey)
		buf.WriteByte(':')

		encodedValue, err := marshalNoEscape(m.entries[key])
		if err != nil {
			return nil, fmt.Errorf("failed to encode suppliers for %q: %w", key, err)
		}
		buf.Write(encodedValue)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping the order of its keys
func (m *Map) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))

	token, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("cross-reference map must be a JSON object")
	}

	*m = *NewMap()
	for decoder.More() {
		token, err := decoder.Token()
		if err != nil {
			return err
		}
		key, ok := token.(string)
		if !ok {
			return fmt.Errorf("unexpected key %v", token)
		}

		var suppliers []crawler.SupplierRecord
		if err := decoder.Decode(&suppliers); err != nil {
			return fmt.Errorf("failed to decode suppliers for %q: %w", key, err)
		}
		if suppliers == nil {
			suppliers = []crawler.SupplierRecord{}
		}
		m.Set(key, suppliers)
	}

	_, err = decoder.Token()
	return err
}

// marshalNoEscape keeps non-ASCII and markup characters readable
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
