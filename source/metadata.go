package source

import "github.com/poiesic/assessor/core"

// MetadataTable joins text entries to metadata entries by title.
// It is built once per run and read only afterwards.
//
// Each entry is indexed under one canonical key, the join key of its
// Titulo, and under the fallback keys of any alternate titles the house
// declares. The two indexes are kept apart: a fallback key never shadows
// another entry's canonical key.
type MetadataTable struct {
	canonical map[string]Entry
	fallback  map[string]Entry
}

// NewMetadataTable indexes entries. Within each index later entries win.
func NewMetadataTable(house *House, entries []Entry) *MetadataTable {
	t := &MetadataTable{
		canonical: make(map[string]Entry, len(entries)),
		fallback:  make(map[string]Entry),
	}
	for _, entry := range entries {
		title := entry.String("Titulo")
		t.canonical[core.JoinKey(title)] = entry
		if house == nil || house.AltKeys == nil {
			continue
		}
		for _, alt := range house.AltKeys(title) {
			t.fallback[core.JoinKey(alt)] = entry
		}
	}
	return t
}

// Lookup returns the metadata entry joined to title, trying the canonical
// index before the fallback one. A miss yields an empty entry and false.
func (t *MetadataTable) Lookup(title string) (Entry, bool) {
	if t == nil {
		return Entry{}, false
	}
	key := core.JoinKey(title)
	if entry, ok := t.canonical[key]; ok {
		return entry, true
	}
	if entry, ok := t.fallback[key]; ok {
		return entry, true
	}
	return Entry{}, false
}

// Len is the number of canonical keys in the table.
func (t *MetadataTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.canonical)
}

// Fallbacks is the number of fallback keys in the table.
func (t *MetadataTable) Fallbacks() int {
	if t == nil {
		return 0
	}
	return len(t.fallback)
}
