// Package ast defines the Money-lang abstract syntax tree: a node kind
// union over operator/identifier/number, arena-backed so that parent
// back-pointers can coexist with child ownership without creating a
// reference-counting or garbage-collection problem.
package ast

import (
	"github.com/moneylang/moneylang/internal/arena"
	"github.com/moneylang/moneylang/internal/core"
)

// Kind distinguishes the three node shapes.
type Kind int

const (
	KindOperator Kind = iota
	KindIdentifier
	KindNumber
)

// Node is one AST node. Left/Right are owned children; Parent is a
// non-owning back-pointer used for sugar transformations during parsing
// and ignored for tree traversal.
type Node struct {
	Parent arena.Ref
	Kind   Kind
	Op     core.OperatorKind // valid when Kind == KindOperator
	Id     int               // name-table index, valid when Kind == KindIdentifier
	NumVal float64           // valid when Kind == KindNumber
	Left   arena.Ref
	Right  arena.Ref
	Pos    core.Position
}

// Tree owns the arena backing every node reachable from Root.
type Tree struct {
	Nodes *arena.Arena[Node]
	Root  arena.Ref
}

// NewTree creates an empty tree whose arena can hold up to maxNodes nodes.
func NewTree(maxNodes int) *Tree {
	return &Tree{Nodes: arena.New[Node](maxNodes), Root: arena.NilRef}
}

// NewOperator allocates an operator node with the given children, fixing
// up their Parent back-pointers.
func (t *Tree) NewOperator(op core.OperatorKind, left, right arena.Ref, pos core.Position) (arena.Ref, error) {
	ref, err := t.Nodes.Alloc(Node{Kind: KindOperator, Op: op, Left: left, Right: right, Pos: pos})
	if err != nil {
		return arena.NilRef, err
	}
	t.setParent(left, ref)
	t.setParent(right, ref)
	return ref, nil
}

// NewIdentifier allocates a leaf node referencing name-table index id.
func (t *Tree) NewIdentifier(id int, pos core.Position) (arena.Ref, error) {
	return t.Nodes.Alloc(Node{Kind: KindIdentifier, Id: id, Left: arena.NilRef, Right: arena.NilRef, Pos: pos})
}

// NewNumber allocates a leaf node holding a literal value.
func (t *Tree) NewNumber(v float64, pos core.Position) (arena.Ref, error) {
	return t.Nodes.Alloc(Node{Kind: KindNumber, NumVal: v, Left: arena.NilRef, Right: arena.NilRef, Pos: pos})
}

func (t *Tree) setParent(child, parent arena.Ref) {
	if n := t.Nodes.Get(child); n != nil {
		n.Parent = parent
	}
}

// Get is shorthand for t.Nodes.Get.
func (t *Tree) Get(ref arena.Ref) *Node { return t.Nodes.Get(ref) }
