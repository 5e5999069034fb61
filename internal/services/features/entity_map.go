package features

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// SymbolMap resolves trading symbols to the model's entity embedding index.
// It is built once at startup and never mutated.
type SymbolMap struct {
	ids    map[string]int
	sorted []string
}

func NewSymbolMap(ids map[string]int) *SymbolMap {
	m := &SymbolMap{ids: make(map[string]int, len(ids)), sorted: make([]string, 0, len(ids))}
	for k, v := range ids {
		m.ids[k] = v
		m.sorted = append(m.sorted, k)
	}
	sort.Strings(m.sorted)
	return m
}

// LoadSymbolMap reads a {"SYMBOL": id} JSON file.
func LoadSymbolMap(path string) (*SymbolMap, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entity map: %w", err)
	}
	var ids map[string]int
	if err := json.Unmarshal(b, &ids); err != nil {
		return nil, fmt.Errorf("parse entity map: %w", err)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("entity map %s is empty", path)
	}
	return NewSymbolMap(ids), nil
}

// Lookup is an exact-match lookup.
func (m *SymbolMap) Lookup(symbol string) (int, bool) {
	id, ok := m.ids[symbol]
	return id, ok
}

func (m *SymbolMap) Contains(symbol string) bool {
	_, ok := m.ids[symbol]
	return ok
}

// Sample returns up to n known symbols in sorted order.
func (m *SymbolMap) Sample(n int) []string {
	if n > len(m.sorted) || n < 0 {
		n = len(m.sorted)
	}
	return append([]string(nil), m.sorted[:n]...)
}

func (m *SymbolMap) Len() int { return len(m.ids) }
