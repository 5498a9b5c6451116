package core

import "unicode"

// OperatorKind is the closed set of operators, keywords, punctuation and
// synthetic AST markers that make up a Money-lang program. Every AST node
// that is not a bare number or identifier carries one of these as its tag,
// the same way a lexical token does - synthetic markers such as OpSep or
// OpFuncHeader never come from the lexer, only from the parser's sugar
// transformations.
type OperatorKind int

const (
	OpUndefined OperatorKind = iota

	// arithmetic
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpPow
	OpSqrt
	OpSin
	OpCos

	// comparisons
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNeq

	// assignment
	OpAssign

	// control flow / declarations
	OpIf
	OpElse
	OpWhile
	OpTransaction
	OpAccount
	OpInvest
	OpShowBalance
	OpTxt
	OpPay

	// punctuation
	OpLParen
	OpRParen
	OpArrow
	OpQuote
	OpComma
	OpDollar
	OpRuble
	OpPercent

	// synthetic
	OpEOF
	OpSep
	OpCall
	OpFuncHeader
	OpFuncDecl
	OpVarDecl
	OpIfElse

	numOperatorKinds
)

// NumOperatorKinds is the number of OperatorKind values, including
// OpUndefined, letting other packages iterate the whole table without
// reaching into its unexported sentinel.
const NumOperatorKinds = int(numOperatorKinds)

// Arity describes how many operands an operator's AST node carries.
type Arity int

const (
	Nullary Arity = iota
	Unary
	Binary
)

// OperatorDesc is the static descriptor for one OperatorKind: its arity,
// its source lexeme (empty for synthetic markers), its dump name used by
// the AST serializer, its reverse-print precedence, and whether it takes
// the parenthesized call form (sin, cos, sqrt).
type OperatorDesc struct {
	Arity      Arity
	Lexeme     string
	DumpName   string
	Precedence int
	IsFunction bool
}

// operatorTable is indexed by OperatorKind. Entries left zero-valued are
// synthetic markers with no source lexeme.
var operatorTable = [numOperatorKinds]OperatorDesc{
	OpAdd:         {Binary, "+", "ADD", 4, false},
	OpSub:         {Binary, "-", "SUB", 4, false},
	OpMul:         {Binary, "*", "MUL", 5, false},
	OpDiv:         {Binary, "/", "DIV", 5, false},
	OpPow:         {Binary, "^", "POW", 6, false},
	OpSqrt:        {Unary, "sqrt", "SQRT", 7, true},
	OpSin:         {Unary, "sin", "SIN", 7, true},
	OpCos:         {Unary, "cos", "COS", 7, true},
	OpLt:          {Binary, "<", "LT", 3, false},
	OpGt:          {Binary, ">", "GT", 3, false},
	OpLe:          {Binary, "<=", "LE", 3, false},
	OpGe:          {Binary, ">=", "GE", 3, false},
	OpEq:          {Binary, "==", "EQ", 3, false},
	OpNeq:         {Binary, "!=", "NEQ", 3, false},
	OpAssign:      {Binary, "=", "ASSIGN", 2, false},
	OpIf:          {Unary, "if", "IF", 0, false},
	OpElse:        {Unary, "else", "ELSE", 0, false},
	OpWhile:       {Unary, "while", "WHILE", 0, false},
	OpTransaction: {Unary, "Transaction", "TRANSACTION", 0, false},
	OpAccount:     {Unary, "Account", "ACCOUNT", 0, false},
	OpInvest:      {Unary, "Invest", "IN", 0, false},
	OpShowBalance: {Unary, "ShowBalance", "OUT", 0, false},
	OpTxt:         {Unary, "Txt", "TEXT", 0, false},
	OpPay:         {Unary, "Pay", "RET", 0, false},
	OpLParen:      {Nullary, "(", "LPAREN", 0, false},
	OpRParen:      {Nullary, ")", "RPAREN", 0, false},
	OpArrow:       {Nullary, "->", "ARROW", 0, false},
	OpQuote:       {Nullary, "\"", "QUOTE", 0, false},
	OpComma:       {Binary, ",", "COMMA", 1, false},
	OpDollar:      {Nullary, "$", "DOLLAR", 0, false},
	OpRuble:       {Nullary, "₽", "RUBLE", 0, false},
	OpPercent:     {Nullary, "%", "PERCENT", 0, false},
	OpEOF:         {Nullary, "", "EOF", 0, false},
	OpSep:         {Binary, "", "SEP", 0, false},
	OpCall:        {Binary, "", "CALL", 0, false},
	OpFuncHeader:  {Binary, "", "FUNC_HEADER", 0, false},
	OpFuncDecl:    {Binary, "", "FUNC_DECL", 0, false},
	OpVarDecl:     {Unary, "", "VAR_DECL", 0, false},
	OpIfElse:      {Binary, "", "IF_ELSE", 0, false},
}

// Desc returns the static descriptor for k.
func (k OperatorKind) Desc() OperatorDesc { return operatorTable[k] }

// String returns the AST-serializer dump name for k (e.g. "ADD", "SEP").
func (k OperatorKind) String() string { return operatorTable[k].DumpName }

// lexemeOperators lists every OperatorKind with a non-empty source lexeme,
// longest lexeme first, so the lexer's longest-match rule can scan it in
// order without a secondary length sort.
var lexemeOperators = func() []OperatorKind {
	kinds := make([]OperatorKind, 0, numOperatorKinds)
	for k := OperatorKind(1); k < numOperatorKinds; k++ {
		if operatorTable[k].Lexeme != "" {
			kinds = append(kinds, k)
		}
	}
	// insertion sort by descending lexeme length; table is small (~30
	// entries) so this beats pulling in sort for a one-time startup cost.
	for i := 1; i < len(kinds); i++ {
		j := i
		for j > 0 && len(operatorTable[kinds[j]].Lexeme) > len(operatorTable[kinds[j-1]].Lexeme) {
			kinds[j], kinds[j-1] = kinds[j-1], kinds[j]
			j--
		}
	}
	return kinds
}()

// FuncOperators is the set of unary math operators with call syntax,
// e.g. "sqrt(x)".
var FuncOperators = []OperatorKind{OpSqrt, OpSin, OpCos}

// IsIdentRune reports whether r can appear inside an identifier or a
// word-shaped operator lexeme (a keyword like "while" or "sqrt").
func IsIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// MatchOperator attempts the longest match of text[pos:] against the
// operator lexeme table. Word-shaped lexemes (keywords, function names)
// additionally require a non-identifier rune (or end of input) right
// after the match, so "ifx" lexes as one identifier rather than "if"+"x".
func MatchOperator(text []rune, pos int) (OperatorKind, int, bool) {
	for _, k := range lexemeOperators {
		lex := []rune(operatorTable[k].Lexeme)
		n := len(lex)
		if pos+n > len(text) {
			continue
		}
		matched := true
		for i, r := range lex {
			if text[pos+i] != r {
				matched = false
				break
			}
		}
		if !matched {
			continue
		}
		if n > 0 && IsIdentRune(lex[0]) && pos+n < len(text) && IsIdentRune(text[pos+n]) {
			continue
		}
		return k, n, true
	}
	return OpUndefined, 0, false
}
