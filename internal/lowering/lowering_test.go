package lowering

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moneylang/moneylang/internal/ast"
	"github.com/moneylang/moneylang/internal/ir"
	"github.com/moneylang/moneylang/internal/lexer"
	"github.com/moneylang/moneylang/internal/nametable"
	"github.com/moneylang/moneylang/internal/parser"
	"github.com/moneylang/moneylang/internal/x64"
)

func build(t *testing.T, src string, taxes bool) (*ir.List, *nametable.Table) {
	t.Helper()
	names := nametable.New(64, 1024)
	for _, n := range []string{"__stdlib_in", "__stdlib_out", "__stdlib_out_text"} {
		_, err := names.Insert(n)
		require.NoError(t, err)
	}
	toks, err := lexer.New(src, "t.ml", names).Tokenize()
	require.NoError(t, err)
	tree, err := parser.New(toks, ast.NewTree(256), names, src).Parse()
	require.NoError(t, err)
	list, err := ir.New(tree, names, taxes).Build()
	require.NoError(t, err)
	return list, names
}

func TestPass1SizesMatchPass2Sizes(t *testing.T) {
	list, names := build(t, "Account x % x = 3₽ + 4₽ % ShowBalance x %", false)
	sizesBefore := make([]int32, len(list.Instrs))

	d := New(list, names)
	result, err := d.Run()
	require.NoError(t, err)
	require.NotEmpty(t, result.Code)

	for i, instr := range list.Instrs {
		sizesBefore[i] = instr.BlockSize
	}
	// Run the whole thing again from a fresh build, sizes must be identical
	// (the same program always lowers to the same byte lengths).
	list2, names2 := build(t, "Account x % x = 3₽ + 4₽ % ShowBalance x %", false)
	d2 := New(list2, names2)
	_, err = d2.Run()
	require.NoError(t, err)
	for i, instr := range list2.Instrs {
		require.Equal(t, sizesBefore[i], instr.BlockSize)
	}
}

func TestFunctionEntryAddressBackfilled(t *testing.T) {
	list, names := build(t, "Transaction a -> f -> Pay a % Account r % r = f(1₽) %", false)
	d := New(list, names)
	_, err := d.Run()
	require.NoError(t, err)

	id, ok := names.Lookup("f")
	require.True(t, ok)
	require.Greater(t, names.Get(id).Address, int64(0))
}

func TestCallRel32MatchesTargetMinusSelfPlusFive(t *testing.T) {
	list, names := build(t, "Transaction a -> f -> Pay a % Account r % r = f(1₽) %", false)
	d := New(list, names)
	_, err := d.Run()
	require.NoError(t, err)

	var callIdx = -1
	for i, instr := range list.Instrs {
		if instr.Op == ir.OpCall && instr.Comment == "f" {
			callIdx = i
		}
	}
	require.NotEqual(t, -1, callIdx)

	callInstr := list.Instrs[callIdx]
	id, _ := names.Lookup("f")
	targetAddr := names.Get(id).Address

	bytes, _, err := d.encode(callIdx, 0, nil)
	require.NoError(t, err)
	require.Equal(t, byte(0xE8), bytes[0])

	wantRel := int32(targetAddr - (callInstr.StartOffset + 5))
	gotRel := int32(bytes[1]) | int32(bytes[2])<<8 | int32(bytes[3])<<16 | int32(bytes[4])<<24
	require.Equal(t, wantRel, gotRel)
}

func TestTaxedRetMultipliesReturnValue(t *testing.T) {
	list, names := build(t, "Transaction a -> f -> Pay a % Account r % r = f(1₽) %", true)
	d := New(list, names)
	result, err := d.Run()
	require.NoError(t, err)
	require.NotEmpty(t, result.Code)

	for _, instr := range list.Instrs {
		if instr.Op == ir.OpRet {
			require.True(t, instr.Taxed)
		}
	}
	// The taxed RET loads 0.8 into xmm1 and multiplies xmm0 by it.
	require.True(t, bytes.Contains(result.Code, x64.MovImm64(x64.RCX, math.Float64bits(0.8))))
	require.True(t, bytes.Contains(result.Code, x64.MulsdRR(0, 1)))
}

func TestPrintTextAppendsDataAfterCode(t *testing.T) {
	list, names := build(t, `Txt "hello" %`, false)
	d := New(list, names)
	result, err := d.Run()
	require.NoError(t, err)

	var codeSize int64
	for _, instr := range list.Instrs {
		codeSize = instr.StartOffset + int64(instr.BlockSize)
	}
	require.Equal(t, "hello", string(result.Code[codeSize:codeSize+5]))
}

func TestWhileLoopBackwardJumpRel32IsNegative(t *testing.T) {
	list, names := build(t, "Account i % i = 0₽ % while i < 3₽ -> < ShowBalance i % i = i + 1₽ % >", false)
	d := New(list, names)
	_, err := d.Run()
	require.NoError(t, err)

	for i, instr := range list.Instrs {
		if instr.Op == ir.OpJmp {
			bytes, _, err := d.encode(i, 0, nil)
			require.NoError(t, err)
			rel := int32(bytes[1]) | int32(bytes[2])<<8 | int32(bytes[3])<<16 | int32(bytes[4])<<24
			require.Less(t, rel, int32(0))
		}
	}
}
