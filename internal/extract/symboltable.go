package extract

import "sync"

// SymbolRef is a lightweight pointer into the graph for fuzzy lookups
//.
type SymbolRef struct {
	ID       string
	FilePath string
	Label    string
}

// SymbolTable is the two-index lookup structure built during extraction
//: exact per-file lookup and fuzzy global lookup by bare name.
// Safe for concurrent use so parallel extraction workers can share one
// instance; callers needing per-worker shards should construct one Table
// per worker and Merge them at phase end.
type SymbolTable struct {
	mu      sync.RWMutex
	byFile  map[string]map[string]string // filePath -> name -> id
	byName  map[string][]SymbolRef       // name -> candidates, insertion order
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		byFile: make(map[string]map[string]string),
		byName: make(map[string][]SymbolRef),
	}
}

// Add registers one symbol definition under both indices.
func (t *SymbolTable) Add(filePath, name, id, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	m, ok := t.byFile[filePath]
	if !ok {
		m = make(map[string]string)
		t.byFile[filePath] = m
	}
	if _, exists := m[name]; !exists {
		m[name] = id
	}
	t.byName[name] = append(t.byName[name], SymbolRef{ID: id, FilePath: filePath, Label: label})
}

// LookupExact returns the id registered for name within filePath.
func (t *SymbolTable) LookupExact(filePath, name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	m, ok := t.byFile[filePath]
	if !ok {
		return "", false
	}
	id, ok := m[name]
	return id, ok
}

// LookupFuzzy returns every candidate registered for name across all files,
// in insertion order.
func (t *SymbolTable) LookupFuzzy(name string) []SymbolRef {
	t.mu.RLock()
	defer t.mu.RUnlock()
	refs := t.byName[name]
	out := make([]SymbolRef, len(refs))
	copy(out, refs)
	return out
}

// Stats reports table size for diagnostics.
type Stats struct {
	Files   int
	Names   int
	Entries int
}

// Stats summarizes the table's contents.
func (t *SymbolTable) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	entries := 0
	for _, refs := range t.byName {
		entries += len(refs)
	}
	return Stats{Files: len(t.byFile), Names: len(t.byName), Entries: entries}
}

// Clear empties the table.
func (t *SymbolTable) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byFile = make(map[string]map[string]string)
	t.byName = make(map[string][]SymbolRef)
}

// Merge folds another table's entries into t, preserving other's insertion
// order after t's own entries — used to combine per-worker shards built
// during parallel extraction into the phase-final table.
func (t *SymbolTable) Merge(other *SymbolTable) {
	other.mu.RLock()
	defer other.mu.RUnlock()
	t.mu.Lock()
	defer t.mu.Unlock()
	for fp, names := range other.byFile {
		m, ok := t.byFile[fp]
		if !ok {
			m = make(map[string]string)
			t.byFile[fp] = m
		}
		for name, id := range names {
			if _, exists := m[name]; !exists {
				m[name] = id
			}
		}
	}
	for name, refs := range other.byName {
		t.byName[name] = append(t.byName[name], refs...)
	}
}
