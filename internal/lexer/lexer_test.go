package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/nametable"
)

func tokenize(t *testing.T, src string) []core.Token {
	t.Helper()
	names := nametable.New(64, 1024)
	toks, err := New(src, "test.ml", names).Tokenize()
	require.NoError(t, err)
	return toks
}

func TestTokenizeSimpleAssign(t *testing.T) {
	toks := tokenize(t, "Account x % x = 3₽ + 4₽ % ShowBalance x %")

	var kinds []core.OperatorKind
	for _, tok := range toks {
		if tok.Kind == core.TokOperator {
			kinds = append(kinds, tok.Op)
		}
	}
	require.Contains(t, kinds, core.OpAccount)
	require.Contains(t, kinds, core.OpAssign)
	require.Contains(t, kinds, core.OpAdd)
	require.Contains(t, kinds, core.OpShowBalance)
	require.Equal(t, core.OpEOF, toks[len(toks)-1].Op)
}

func TestDollarConversion(t *testing.T) {
	toks := tokenize(t, "2$")
	require.Equal(t, core.TokNumber, toks[0].Kind)
	require.Equal(t, 70.0, toks[0].NumVal)
}

func TestRubleNoConversion(t *testing.T) {
	toks := tokenize(t, "2₽")
	require.Equal(t, 2.0, toks[0].NumVal)
}

func TestLongestMatchOperator(t *testing.T) {
	toks := tokenize(t, ">=")
	require.Equal(t, core.OpGe, toks[0].Op)
}

func TestKeywordNotSwallowedByIdentifier(t *testing.T) {
	toks := tokenize(t, "ifCondition")
	require.Equal(t, core.TokIdentifier, toks[0].Kind)
}

func TestKeywordBoundary(t *testing.T) {
	toks := tokenize(t, "if x")
	require.Equal(t, core.OpIf, toks[0].Op)
}

func TestCommentSkipped(t *testing.T) {
	toks := tokenize(t, "@ comment\nAccount x %")
	require.Equal(t, core.OpAccount, toks[0].Op)
}

func TestQuotedIdentifier(t *testing.T) {
	toks := tokenize(t, `Txt "hello world" %`)
	require.Equal(t, core.OpTxt, toks[0].Op)
	require.Equal(t, core.OpQuote, toks[1].Op)
	require.Equal(t, core.TokIdentifier, toks[2].Kind)
	require.Equal(t, core.OpQuote, toks[3].Op)
}

func TestNumberWithoutCurrencyIsError(t *testing.T) {
	names := nametable.New(64, 1024)
	_, err := New("5 +", "test.ml", names).Tokenize()
	require.Error(t, err)
	require.IsType(t, &core.LexError{}, err)
}

func TestIdentifierInternStability(t *testing.T) {
	toks := tokenize(t, "x x")
	require.Equal(t, toks[0].Id, toks[1].Id)
}

func TestWhitespaceEquivalenceIsIdempotent(t *testing.T) {
	a := tokenize(t, "Account x % x=3₽%")
	b := tokenize(t, "Account   x   %   x  =  3₽  %")
	require.Equal(t, len(a), len(b))
	for i := range a {
		require.Equal(t, a[i].Kind, b[i].Kind)
		require.Equal(t, a[i].Op, b[i].Op)
		require.Equal(t, a[i].NumVal, b[i].NumVal)
	}
}
