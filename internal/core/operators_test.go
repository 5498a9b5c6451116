package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescReportsArityLexemeAndPrecedence(t *testing.T) {
	d := OpAdd.Desc()
	require.Equal(t, Binary, d.Arity)
	require.Equal(t, "+", d.Lexeme)
	require.Equal(t, 4, d.Precedence)
	require.False(t, d.IsFunction)

	d = OpSqrt.Desc()
	require.Equal(t, Unary, d.Arity)
	require.True(t, d.IsFunction)
}

func TestStringReturnsDumpName(t *testing.T) {
	require.Equal(t, "ADD", OpAdd.String())
	require.Equal(t, "SEP", OpSep.String())
	require.Equal(t, "TEXT", OpTxt.String())
}

func TestSyntheticMarkersHaveNoLexeme(t *testing.T) {
	for _, k := range []OperatorKind{OpEOF, OpSep, OpCall, OpFuncHeader, OpFuncDecl, OpVarDecl, OpIfElse} {
		require.Empty(t, k.Desc().Lexeme)
	}
}

func TestMatchOperatorPrefersLongestLexeme(t *testing.T) {
	k, n, ok := MatchOperator([]rune("<=3"), 0)
	require.True(t, ok)
	require.Equal(t, OpLe, k)
	require.Equal(t, 2, n)

	k, n, ok = MatchOperator([]rune("<3"), 0)
	require.True(t, ok)
	require.Equal(t, OpLt, k)
	require.Equal(t, 1, n)
}

func TestMatchOperatorRequiresWordBoundaryAfterKeyword(t *testing.T) {
	_, _, ok := MatchOperator([]rune("ifx"), 0)
	require.False(t, ok)

	k, n, ok := MatchOperator([]rune("if x"), 0)
	require.True(t, ok)
	require.Equal(t, OpIf, k)
	require.Equal(t, 2, n)
}

func TestMatchOperatorNoMatchReturnsUndefined(t *testing.T) {
	k, n, ok := MatchOperator([]rune("abc"), 0)
	require.False(t, ok)
	require.Equal(t, OpUndefined, k)
	require.Equal(t, 0, n)
}

func TestMatchOperatorOutOfRangeLexemeIsSkipped(t *testing.T) {
	_, _, ok := MatchOperator([]rune("wh"), 0)
	require.False(t, ok)
}

func TestIsIdentRune(t *testing.T) {
	require.True(t, IsIdentRune('_'))
	require.True(t, IsIdentRune('a'))
	require.True(t, IsIdentRune('9'))
	require.False(t, IsIdentRune('+'))
	require.False(t, IsIdentRune(' '))
}
