package ir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moneylang/moneylang/internal/arena"
	"github.com/moneylang/moneylang/internal/ast"
	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/lexer"
	"github.com/moneylang/moneylang/internal/nametable"
	"github.com/moneylang/moneylang/internal/parser"
)

func compile(t *testing.T, src string, taxes bool) (*List, *nametable.Table) {
	t.Helper()
	names := nametable.New(64, 1024)
	for _, stdlibName := range []string{"__stdlib_in", "__stdlib_out"} {
		_, err := names.Insert(stdlibName)
		require.NoError(t, err)
	}

	toks, err := lexer.New(src, "t.ml", names).Tokenize()
	require.NoError(t, err)

	tree, err := parser.New(toks, ast.NewTree(256), names, src).Parse()
	require.NoError(t, err)

	list, err := New(tree, names, taxes).Build()
	require.NoError(t, err)
	return list, names
}

func opSeq(list *List) []OpKind {
	var out []OpKind
	for _, instr := range list.Instrs {
		out = append(out, instr.Op)
	}
	return out
}

func TestIntegerAddProgram(t *testing.T) {
	list, _ := compile(t, "Account x % x = 3₽ + 4₽ % ShowBalance x %", false)

	require.Equal(t, OpStart, list.Instrs[0].Op)
	require.Equal(t, OpExit, list.Instrs[len(list.Instrs)-1].Op)

	ops := opSeq(list)
	require.Contains(t, ops, OpVarDecl)
	require.Contains(t, ops, OpAdd)
	require.Contains(t, ops, OpPop)
	require.Contains(t, ops, OpCall)

	for _, instr := range list.Instrs {
		if instr.Op == OpPush && instr.Push == PushImm {
			require.Contains(t, []float64{3, 4}, instr.DVal)
		}
	}
}

func TestWhileLoopEmitsBackwardJump(t *testing.T) {
	list, _ := compile(t, "Account i % i = 0₽ % while i < 3₽ -> < ShowBalance i % i = i + 1₽ % >", false)

	jmpIdx, labelIdx := -1, -1
	for i, instr := range list.Instrs {
		if instr.Op == OpJmp {
			jmpIdx = i
		}
		if instr.Op == OpLabel && instr.Local && labelIdx == -1 {
			labelIdx = i
		}
	}
	require.NotEqual(t, -1, jmpIdx)
	require.NotEqual(t, -1, labelIdx)
	// The loop's backward jump targets the top-of-loop label, which was
	// placed before the jump itself was emitted.
	require.EqualValues(t, labelIdx, list.Instrs[jmpIdx].AddrOrID)
}

func TestIfElseEmitsTwoLabels(t *testing.T) {
	list, _ := compile(t, "Account x % Invest x % if x > 0₽ -> ShowBalance 1₽ % else ShowBalance 0₽ %", false)

	labelCount := 0
	for _, instr := range list.Instrs {
		if instr.Op == OpLabel {
			labelCount++
		}
	}
	require.Equal(t, 2, labelCount)
}

func TestFunctionDeclEmitsNonLocalLabel(t *testing.T) {
	list, names := compile(t, "Transaction a, b -> add -> Pay a + b % Account x % x = add(1₽, 2₽) %", false)

	found := false
	for _, instr := range list.Instrs {
		if instr.Op == OpLabel && !instr.Local {
			found = true
			id := int(instr.AddrOrID)
			require.Equal(t, "add", names.Get(id).Name)
		}
	}
	require.True(t, found)
}

func TestTaxedReturnSetsTaxedFlag(t *testing.T) {
	list, _ := compile(t, "Transaction a -> f -> Pay a % Account x % x = f(1₽) %", true)
	found := false
	for _, instr := range list.Instrs {
		if instr.Op == OpRet {
			found = true
			require.True(t, instr.Taxed)
		}
	}
	require.True(t, found)
}

func TestScopeErrorOnUnresolvedIdentifier(t *testing.T) {
	names := nametable.New(64, 1024)
	names.Insert("__stdlib_in")
	names.Insert("__stdlib_out")

	// Manually build an AST referencing an identifier that was never
	// declared, bypassing the parser's own VarDecl/Assign bookkeeping.
	tree := ast.NewTree(16)
	id, err := names.Insert("ghost")
	require.NoError(t, err)
	idNode, err := tree.NewIdentifier(id, core.Position{})
	require.NoError(t, err)
	payNode, err := tree.NewOperator(core.OpPay, idNode, arena.NilRef, core.Position{})
	require.NoError(t, err)
	tree.Root = payNode

	_, err = New(tree, names, false).Build()
	require.Error(t, err)
	require.IsType(t, &core.ScopeError{}, err)
}
