package model

import (
	"sort"
	"sync"
)

// GameDB is an in-memory snapshot of game metadata keyed by game id.
type GameDB struct {
	games map[int]*GameMetadata
	mu    sync.RWMutex
}

// NewGameDB creates an empty metadata snapshot.
func NewGameDB() *GameDB {
	return &GameDB{games: make(map[int]*GameMetadata)}
}

// Put stores or replaces the metadata for m.ID.
func (db *GameDB) Put(m *GameMetadata) {
	if m == nil {
		return
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	db.games[m.ID] = m
}

// Contains reports whether metadata exists for id.
func (db *GameDB) Contains(id int) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()
	_, ok := db.games[id]
	return ok
}

// Get returns the metadata for id.
func (db *GameDB) Get(id int) (*GameMetadata, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	m, ok := db.games[id]
	return m, ok
}

// Len returns the number of entries.
func (db *GameDB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.games)
}

// IDs returns every game id in the snapshot, ascending.
func (db *GameDB) IDs() []int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	ids := make([]int, 0, len(db.games))
	for id := range db.games {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// AllGenres returns every distinct genre, sorted.
func (db *GameDB) AllGenres() []string {
	return db.collect(func(m *GameMetadata) []string { return m.Genres })
}

// AllTags returns every distinct store tag, sorted.
func (db *GameDB) AllTags() []string {
	return db.collect(func(m *GameMetadata) []string { return m.Tags })
}

func (db *GameDB) collect(field func(*GameMetadata) []string) []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, m := range db.games {
		for _, v := range field(m) {
			seen[v] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
