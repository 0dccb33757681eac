package source

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

type StringID uint32

const NoStringID StringID = 0

// Interner maps identifiers to compact IDs. Names are stored in NFC form so
// that attribute names written with different Unicode compositions compare
// equal by ID. Safe for concurrent use.
type Interner struct {
	mu    sync.RWMutex
	byID  []string            // byID[0] = "" for NoStringID
	index map[string]StringID // string -> ID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern inserts s and returns its ID. Repeated calls return the same ID.
func (i *Interner) Intern(s string) StringID {
	s = norm.NFC.String(s)

	i.mu.RLock()
	id, ok := i.index[s]
	i.mu.RUnlock()
	if ok {
		return id
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if id, ok := i.index[s]; ok {
		return id
	}
	cpy := string([]byte(s))
	id = StringID(len(i.byID))
	i.byID = append(i.byID, cpy)
	i.index[cpy] = id
	return id
}

// Find returns the ID of s without inserting it.
func (i *Interner) Find(s string) (StringID, bool) {
	s = norm.NFC.String(s)
	i.mu.RLock()
	defer i.mu.RUnlock()
	id, ok := i.index[s]
	return id, ok
}

// Lookup returns the string for id, or "" and false for unknown IDs.
func (i *Interner) Lookup(id StringID) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// Len counts interned strings, NoStringID included. Never less than 1.
func (i *Interner) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.byID)
}
