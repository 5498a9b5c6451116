// Package arena implements the bump allocator backing the parser's AST.
// AST nodes carry a parent back-pointer alongside child pointers, which
// makes the tree a graph with cycles; rather than reference-count or try
// to free individual nodes, the whole tree is allocated out of one fixed
// backing store and released en bloc when the compilation context goes
// away.
package arena

import "github.com/moneylang/moneylang/internal/core"

// Arena is a fixed-capacity bump allocator over a slice of T. Handles into
// it are integer indices (Ref), never pointers, so the arena can be
// resized-by-copy without invalidating anything.
type Arena[T any] struct {
	items []T
	cap   int
}

// Ref is an index into an Arena. The zero Ref is a valid reference to
// slot 0; use NilRef to represent "no node".
type Ref int

// NilRef represents the absence of a node, used for a missing left/right
// child or function-argument list.
const NilRef Ref = -1

// New creates an arena able to hold up to capacity items before raising
// ArenaOverflow.
func New[T any](capacity int) *Arena[T] {
	return &Arena[T]{items: make([]T, 0, capacity), cap: capacity}
}

// Alloc appends v to the arena and returns its Ref.
func (a *Arena[T]) Alloc(v T) (Ref, error) {
	if len(a.items) >= a.cap {
		return NilRef, &core.ArenaOverflow{Capacity: a.cap}
	}
	a.items = append(a.items, v)
	return Ref(len(a.items) - 1), nil
}

// Get returns a pointer to the item at ref. The pointer is invalidated by
// any subsequent Alloc call, matching slice reallocation semantics.
func (a *Arena[T]) Get(ref Ref) *T {
	if ref == NilRef {
		return nil
	}
	return &a.items[ref]
}

// Len returns the number of allocated items.
func (a *Arena[T]) Len() int { return len(a.items) }
