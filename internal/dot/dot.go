// Package dot renders an AST as Graphviz DOT source, for the compiler's
// optional --dot tree-dump flag. Never consulted during compilation itself.
package dot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moneylang/moneylang/internal/arena"
	"github.com/moneylang/moneylang/internal/ast"
	"github.com/moneylang/moneylang/internal/nametable"
)

// Write renders tree as a DOT digraph, labeling identifier nodes with their
// interned name and number nodes with their literal value.
func Write(tree *ast.Tree, names *nametable.Table) string {
	var b strings.Builder
	b.WriteString("digraph AST {\n")
	b.WriteString("  node [shape=box, fontname=\"monospace\"];\n")
	writeNode(&b, tree, names, tree.Root)
	b.WriteString("}\n")
	return b.String()
}

func writeNode(b *strings.Builder, tree *ast.Tree, names *nametable.Table, ref arena.Ref) {
	if ref == arena.NilRef {
		return
	}
	n := tree.Get(ref)
	if n == nil {
		return
	}

	label := nodeLabel(n, names)
	fmt.Fprintf(b, "  n%d [label=%q];\n", ref, label)

	for _, child := range []arena.Ref{n.Left, n.Right} {
		if child == arena.NilRef {
			continue
		}
		fmt.Fprintf(b, "  n%d -> n%d;\n", ref, child)
		writeNode(b, tree, names, child)
	}
}

func nodeLabel(n *ast.Node, names *nametable.Table) string {
	switch n.Kind {
	case ast.KindOperator:
		return n.Op.String()
	case ast.KindIdentifier:
		if e := names.Get(n.Id); e != nil {
			return e.Name
		}
		return fmt.Sprintf("id#%d", n.Id)
	case ast.KindNumber:
		return strconv.FormatFloat(n.NumVal, 'g', -1, 64)
	}
	return "?"
}
