// Package nametable implements the compiler's symbol table: an
// append-only, stably-indexed mapping from identifier string to a small
// integer id, plus the per-identifier kind/argument-count/address record
// that the parser and IR builder attach to it.
package nametable

import (
	"github.com/dolthub/swiss"

	"github.com/moneylang/moneylang/internal/core"
)

// Kind classifies what an identifier turned out to be once the parser saw
// how it was used.
type Kind int

const (
	Undefined Kind = iota
	Var
	Func
)

// NullIdentifier is the sentinel id returned by lookups that fail to
// resolve, and used internally before an entry is assigned a table slot.
const NullIdentifier = -1

// Entry is one name-table record.
type Entry struct {
	Name      string
	Kind      Kind
	ArgsCount int
	Address   int64 // function code offset once resolved by lowering; unused for Var
	IsText    bool  // marks a Txt string-literal identifier (see Txt supplement)
}

// Table interns identifier strings into stable small integer ids backed by
// a swiss-table hash map for the hot string->id lookup path, with a plain
// slice holding the ordered Entry records themselves (serialization order
// must match insertion order, per the AST-file format).
type Table struct {
	entries      []Entry
	index        *swiss.Map[string, int]
	maxEntries   int
	maxNameBytes int
	nameBytes    int
}

// New creates an empty table with the given fixed capacities. Exceeding
// either raises NameTableOverflow from Insert.
func New(maxEntries, maxNameBytes int) *Table {
	return &Table{
		entries:      make([]Entry, 0, maxEntries),
		index:        swiss.NewMap[string, int](uint32(maxEntries)),
		maxEntries:   maxEntries,
		maxNameBytes: maxNameBytes,
	}
}

// Insert interns name, returning its stable id. Calling Insert twice with
// the same name returns the same id without growing the table.
func (t *Table) Insert(name string) (int, error) {
	if id, ok := t.index.Get(name); ok {
		return id, nil
	}
	if len(t.entries) >= t.maxEntries {
		return NullIdentifier, &core.NameTableOverflow{Reason: "entry count exceeded"}
	}
	if t.nameBytes+len(name) > t.maxNameBytes {
		return NullIdentifier, &core.NameTableOverflow{Reason: "total name length exceeded"}
	}
	id := len(t.entries)
	t.entries = append(t.entries, Entry{Name: name})
	t.index.Put(name, id)
	t.nameBytes += len(name)
	return id, nil
}

// Len returns the number of interned identifiers.
func (t *Table) Len() int { return len(t.entries) }

// Get returns a pointer to the mutable entry for id, or nil if id is out
// of range.
func (t *Table) Get(id int) *Entry {
	if id < 0 || id >= len(t.entries) {
		return nil
	}
	return &t.entries[id]
}

// Lookup returns the id for name without inserting it.
func (t *Table) Lookup(name string) (int, bool) { return t.index.Get(name) }

// MarkVar records that id is a variable.
func (t *Table) MarkVar(id int) {
	if e := t.Get(id); e != nil {
		e.Kind = Var
	}
}

// MarkFunc records that id is a function taking argsCount formal
// arguments.
func (t *Table) MarkFunc(id int, argsCount int) {
	if e := t.Get(id); e != nil {
		e.Kind = Func
		e.ArgsCount = argsCount
	}
}

// SetAddress records the resolved code offset for a function entry,
// called back by the lowering pass's pass 1 when it visits the function's
// label.
func (t *Table) SetAddress(id int, addr int64) {
	if e := t.Get(id); e != nil {
		e.Address = addr
	}
}

// Entries returns the table's entries in insertion order, the order the
// AST serializer must write them in for a deterministic round trip.
func (t *Table) Entries() []Entry { return t.entries }
