// Package atom provides process-wide interning of identifier strings to
// small dense integer handles.
package atom

import "sync"

// Atom is a dense integer handle for an interned string. Handle 0 is
// reserved for the empty string.
type Atom uint32

// Empty is the atom for the empty string.
const Empty Atom = 0

// Table is a string-interning table. The zero value is not usable; use
// NewTable. A Table is safe for concurrent use.
type Table struct {
	mu      sync.RWMutex
	strings []string
	handles map[string]Atom
}

// NewTable creates a table with the empty string pre-interned as handle 0.
func NewTable() *Table {
	t := &Table{
		strings: make([]string, 0, 256),
		handles: make(map[string]Atom, 256),
	}
	t.strings = append(t.strings, "")
	t.handles[""] = Empty
	return t
}

// Intern returns the handle for s, allocating a new one if s has not been
// seen before. Intern(s1) == Intern(s2) iff s1 == s2.
func (t *Table) Intern(s string) Atom {
	t.mu.RLock()
	if a, ok := t.handles[s]; ok {
		t.mu.RUnlock()
		return a
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.handles[s]; ok {
		return a
	}
	a := Atom(len(t.strings))
	t.strings = append(t.strings, s)
	t.handles[s] = a
	return a
}

// Text returns the string for a handle. It panics if the handle was never
// produced by this table, which indicates an internal bug rather than a
// user error.
func (t *Table) Text(a Atom) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(a) >= len(t.strings) {
		panic("atom: handle out of range")
	}
	return t.strings[a]
}

// Size returns the number of distinct interned strings, including the
// empty string.
func (t *Table) Size() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.strings)
}
