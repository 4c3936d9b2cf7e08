// Package stringtab implements the process-wide string intern table.
//
// Every identifier, string literal and mangled name that flows through the
// compiler is interned here. The table is append-only: once a string has been
// interned its handle never changes, so handle identity is string equality for
// the lifetime of the process. All name comparisons in the AST, the type
// predicates and the reachability analyzer are pointer comparisons on interned
// handles.
package stringtab

import "sync"

var (
	mu    sync.Mutex
	table = make(map[string]*string)
)

// Intern returns the canonical handle for s. Equal strings always return the
// same pointer.
func Intern(s string) *string {
	mu.Lock()
	defer mu.Unlock()

	if h, ok := table[s]; ok {
		return h
	}

	h := new(string)
	*h = s
	table[s] = h
	return h
}

// Get returns the canonical handle for s, or nil if s has never been interned.
func Get(s string) *string {
	mu.Lock()
	defer mu.Unlock()
	return table[s]
}

// Len reports how many distinct strings have been interned.
func Len() int {
	mu.Lock()
	defer mu.Unlock()
	return len(table)
}
