// Package localsstack implements the IR builder's scope-aware address
// resolver: a stack of identifier/address records interleaved with scope
// sentinels, mirroring the original backend's explicit frame model rather
// than a general symbol-table-per-scope design.
package localsstack

import (
	"golang.org/x/exp/slices"

	"github.com/moneylang/moneylang/internal/core"
)

// ScopeKind distinguishes the two sentinel shapes pushed around blocks and
// function bodies.
type ScopeKind int

const (
	// FuncScope marks entry into a function body: it resets the address
	// cursor, and every variable/argument pushed while at least one
	// FuncScope is open is addressed relative to the frame pointer.
	FuncScope ScopeKind = iota
	// NormalScope (an if/while block) inherits the parent frame's address
	// cursor unchanged and has no effect on isLocal.
	NormalScope
)

type entry struct {
	isScope bool
	kind    ScopeKind // valid when isScope
	id      int       // valid when !isScope
	addr    int64     // valid when !isScope
	isLocal bool      // valid when !isScope; fixed at push time, see PushVar
}

// Stack is the locals stack. Because Money-lang rejects nested function
// declarations, at most one FuncScope is ever open at a time; isLocal is
// therefore decided once, when an entry is pushed, rather than recomputed
// by walking scope sentinels on every resolve.
type Stack struct {
	entries   []entry
	funcDepth int
}

// New creates an empty locals stack.
func New() *Stack { return &Stack{} }

// InitScope pushes a scope sentinel of the given kind.
func (s *Stack) InitScope(kind ScopeKind) {
	if kind == FuncScope {
		s.funcDepth++
	}
	s.entries = append(s.entries, entry{isScope: true, kind: kind})
}

// PopScope pops entries down through and including the most recently
// pushed scope sentinel, returning how many variable/argument entries were
// discarded (informational; Money-lang's lowering never needs to emit
// stack-cleanup instructions for a popped block, since a function's RET
// always restores rsp from rbp in one step).
func (s *Stack) PopScope() int {
	popped := 0
	for len(s.entries) > 0 {
		top := s.entries[len(s.entries)-1]
		s.entries = s.entries[:len(s.entries)-1]
		if top.isScope {
			if top.kind == FuncScope {
				s.funcDepth--
			}
			break
		}
		popped++
	}
	return popped
}

// currentAddr returns the address cursor the next push_var should extend
// from: the address of the most recently pushed variable/argument entry
// within the current frame, or 0 if the frame has no entries yet.
func (s *Stack) currentAddr() int64 {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.isScope {
			if e.kind == FuncScope {
				return 0
			}
			continue // NormalScope inherits the parent frame's cursor
		}
		return e.addr
	}
	return 0
}

// PushVar assigns the next local slot to id and records it. An empty frame
// (no variable/argument entries yet reachable without crossing a
// FuncScope) starts at -1; each subsequent local goes one slot more
// negative. isLocal is true exactly when the push happens inside an open
// function scope; a variable declared at the top level, outside every
// function, is a global and reports isLocal=false.
func (s *Stack) PushVar(id int) (addr int64, isLocal bool) {
	cur := s.currentAddr()
	if cur < 0 {
		addr = cur - 1
	} else {
		addr = -1
	}
	isLocal = s.funcDepth > 0
	s.entries = append(s.entries, entry{id: id, addr: addr, isLocal: isLocal})
	return addr, isLocal
}

// PushArg assigns the fixed positive slot for a function's argNumber-th
// (zero-based, left-to-right) formal parameter and records it. Arguments
// only exist inside a function body, so isLocal is always true.
func (s *Stack) PushArg(id int, argNumber int) int64 {
	addr := int64(argNumber) + 2
	s.entries = append(s.entries, entry{id: id, addr: addr, isLocal: true})
	return addr
}

// Resolve walks the stack top-down for the nearest entry matching id and
// returns the addr/isLocal recorded for it at push time. An unresolved id
// is a ScopeError.
func (s *Stack) Resolve(id int, name string, pos core.Position) (addr int64, isLocal bool, err error) {
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if e.isScope {
			continue
		}
		if e.id == id {
			return e.addr, e.isLocal, nil
		}
	}
	return 0, false, &core.ScopeError{Pos: pos, Name: name}
}

// Depth reports the number of live entries, scope sentinels included; used
// by tests to assert balanced push/pop sequences.
func (s *Stack) Depth() int { return len(s.entries) }

// ids is a debug helper returning the ids of all live variable/argument
// entries, sorted; handy when a test wants to assert exactly which names
// are currently visible.
func (s *Stack) ids() []int {
	var out []int
	for i := len(s.entries) - 1; i >= 0; i-- {
		if !s.entries[i].isScope {
			out = append(out, s.entries[i].id)
		}
	}
	slices.Sort(out)
	return out
}
