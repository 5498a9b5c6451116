package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/nametable"
)

func buildAddTree(t *testing.T) (*Tree, *nametable.Table) {
	t.Helper()
	names := nametable.New(16, 256)
	id, err := names.Insert("x")
	require.NoError(t, err)
	names.MarkVar(id)

	tree := NewTree(16)
	left, err := tree.NewNumber(3, core.Position{})
	require.NoError(t, err)
	right, err := tree.NewNumber(4, core.Position{})
	require.NoError(t, err)
	add, err := tree.NewOperator(core.OpAdd, left, right, core.Position{})
	require.NoError(t, err)
	idNode, err := tree.NewIdentifier(id, core.Position{})
	require.NoError(t, err)
	assign, err := tree.NewOperator(core.OpAssign, idNode, add, core.Position{})
	require.NoError(t, err)
	tree.Root = assign

	return tree, names
}

func TestWriteContainsSignatureAndNameTable(t *testing.T) {
	tree, names := buildAddTree(t)
	out := Write(tree, names)

	require.Contains(t, out, "IR312:1")
	require.Contains(t, out, `"x"`)
	require.Contains(t, out, "VAR_ID")
	require.Contains(t, out, "{OPR:ASSIGN")
	require.Contains(t, out, "{OPR:ADD")
	require.Contains(t, out, "{NUM:3}")
}

func TestRoundTrip(t *testing.T) {
	tree, names := buildAddTree(t)
	text := Write(tree, names)

	gotTree, gotNames, err := Read(text, 16, 16, 256)
	require.NoError(t, err)

	require.Equal(t, len(names.Entries()), len(gotNames.Entries()))
	require.Equal(t, names.Entries()[0].Name, gotNames.Entries()[0].Name)

	root := gotTree.Get(gotTree.Root)
	require.Equal(t, KindOperator, root.Kind)
	require.Equal(t, core.OpAssign, root.Op)

	right := gotTree.Get(root.Right)
	require.Equal(t, core.OpAdd, right.Op)

	leftLeaf := gotTree.Get(right.Left)
	require.Equal(t, KindNumber, leftLeaf.Kind)
	require.Equal(t, float64(3), leftLeaf.NumVal)
}

func TestReadRejectsBadSignature(t *testing.T) {
	_, _, err := Read("NOPE:1\nNAMETABLE size: 0 {}\n{}\n", 16, 16, 256)
	require.Error(t, err)
	require.IsType(t, &core.SignatureError{}, err)
}
