// Package parser implements the Money-lang recursive-descent grammar,
// producing an AST and populating the shared name table with each
// identifier's resolved kind (variable or function) and, for functions,
// its formal argument count.
package parser

import (
	"fmt"
	"strings"

	"github.com/moneylang/moneylang/internal/arena"
	"github.com/moneylang/moneylang/internal/ast"
	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/nametable"
)

// Status is the tri-valued result every grammar production returns.
// Success means the production matched and produced a node. Soft means the
// production did not match at the current position and the caller is free
// to try an alternative, rewinding the token pointer itself. Hard means a
// production committed to a keyword or punctuation token, then failed to
// find what necessarily follows it; a Hard result aborts the whole parse.
type Status int

const (
	StatusSuccess Status = iota
	StatusSoft
	StatusHard
)

// Parser holds the token cursor and the shared tree/name-table being
// built. It has no persistent counters: every production resets its own
// local state on entry, and backtracking on StatusSoft is just restoring
// the saved token index.
type Parser struct {
	toks  []core.Token
	pos   int
	tree  *ast.Tree
	names *nametable.Table
	lines []string
}

// New creates a Parser over toks, writing nodes into tree and consulting
// names for identifier kinds. src is kept only to render caret-annotated
// snippets in SyntaxError.
func New(toks []core.Token, tree *ast.Tree, names *nametable.Table, src string) *Parser {
	return &Parser{toks: toks, tree: tree, names: names, lines: strings.Split(src, "\n")}
}

// Parse consumes the whole token stream and returns the populated tree.
func (p *Parser) Parse() (*ast.Tree, error) {
	var items []arena.Ref
	for !p.at(core.OpEOF) {
		ref, status, err := p.parseFunctionDecl()
		if status == StatusSoft {
			ref, status, err = p.parseBlock()
		}
		switch status {
		case StatusHard:
			return nil, err
		case StatusSoft:
			return nil, p.syntaxErrorf("expected a statement or function declaration")
		}
		items = append(items, ref)
	}

	root, err := p.buildSepChain(items)
	if err != nil {
		return nil, err
	}
	p.tree.Root = root
	return p.tree, nil
}

// --- token cursor helpers ---

func (p *Parser) cur() core.Token { return p.toks[p.pos] }

func (p *Parser) at(op core.OperatorKind) bool {
	t := p.cur()
	return t.Kind == core.TokOperator && t.Op == op
}

func (p *Parser) atAny(ops ...core.OperatorKind) bool {
	t := p.cur()
	if t.Kind != core.TokOperator {
		return false
	}
	for _, op := range ops {
		if t.Op == op {
			return true
		}
	}
	return false
}

func (p *Parser) advance() core.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) expectOp(op core.OperatorKind, msg string) error {
	if !p.at(op) {
		return p.syntaxErrorf("%s", msg)
	}
	p.advance()
	return nil
}

func (p *Parser) syntaxErrorf(format string, args ...any) error {
	pos := p.cur().Pos
	msg := fmt.Sprintf(format, args...)
	var snippet string
	if pos.Line-1 >= 0 && pos.Line-1 < len(p.lines) {
		line := p.lines[pos.Line-1]
		col := pos.Column - 1
		if col < 0 {
			col = 0
		}
		snippet = line + "\n" + strings.Repeat(" ", col) + "^"
	}
	return &core.SyntaxError{Pos: pos, Msg: msg, Snippet: snippet}
}

func (p *Parser) markVarIfUndefined(id int, pos core.Position) error {
	e := p.names.Get(id)
	if e.Kind == nametable.Func {
		return &core.TypeError{Pos: pos, Name: e.Name, Msg: "function name used as a variable"}
	}
	if e.Kind == nametable.Undefined {
		p.names.MarkVar(id)
	}
	return nil
}

func (p *Parser) buildSepChain(items []arena.Ref) (arena.Ref, error) {
	if len(items) == 0 {
		return arena.NilRef, nil
	}
	tail := items[len(items)-1]
	for i := len(items) - 2; i >= 0; i-- {
		node, err := p.tree.NewOperator(core.OpSep, items[i], tail, core.Position{})
		if err != nil {
			return arena.NilRef, err
		}
		tail = node
	}
	return tail, nil
}

func (p *Parser) buildCommaChain(refs []arena.Ref) (arena.Ref, error) {
	if len(refs) == 0 {
		return arena.NilRef, nil
	}
	if len(refs) == 1 {
		return refs[0], nil
	}
	tail := refs[len(refs)-1]
	for i := len(refs) - 2; i >= 0; i-- {
		node, err := p.tree.NewOperator(core.OpComma, refs[i], tail, core.Position{})
		if err != nil {
			return arena.NilRef, err
		}
		tail = node
	}
	return tail, nil
}

// --- FunctionDecl ---

// parseFunctionDecl implements:
//
//	FunctionDecl ::= "Transaction" IdChain "->" Identifier "->" Block
func (p *Parser) parseFunctionDecl() (arena.Ref, Status, error) {
	if !p.at(core.OpTransaction) {
		return arena.NilRef, StatusSoft, nil
	}
	pos := p.cur().Pos
	p.advance()

	var argRefs []arena.Ref
	if !p.at(core.OpArrow) {
		for {
			if p.cur().Kind != core.TokIdentifier {
				return arena.NilRef, StatusHard, p.syntaxErrorf("expected parameter name")
			}
			id, idPos := p.cur().Id, p.cur().Pos
			p.advance()
			p.names.MarkVar(id)
			ref, err := p.tree.NewIdentifier(id, idPos)
			if err != nil {
				return arena.NilRef, StatusHard, err
			}
			argRefs = append(argRefs, ref)
			if p.at(core.OpComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectOp(core.OpArrow, "expected '->' after parameter list"); err != nil {
		return arena.NilRef, StatusHard, err
	}

	if p.cur().Kind != core.TokIdentifier {
		return arena.NilRef, StatusHard, p.syntaxErrorf("expected function name")
	}
	nameId, namePos := p.cur().Id, p.cur().Pos
	p.advance()
	if err := p.expectOp(core.OpArrow, "expected '->' before function body"); err != nil {
		return arena.NilRef, StatusHard, err
	}

	p.names.MarkFunc(nameId, len(argRefs))
	nameRef, err := p.tree.NewIdentifier(nameId, namePos)
	if err != nil {
		return arena.NilRef, StatusHard, err
	}
	argsChain, err := p.buildCommaChain(argRefs)
	if err != nil {
		return arena.NilRef, StatusHard, err
	}
	header, err := p.tree.NewOperator(core.OpFuncHeader, nameRef, argsChain, pos)
	if err != nil {
		return arena.NilRef, StatusHard, err
	}

	body, status, err := p.parseBlock()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected function body")
		}
		return arena.NilRef, StatusHard, err
	}

	decl, err := p.tree.NewOperator(core.OpFuncDecl, header, body, pos)
	return decl, StatusSuccess, err
}

// --- Block / Statement ---

// parseBlock implements:
//
//	Block ::= "<" Block+ ">" | Statement
func (p *Parser) parseBlock() (arena.Ref, Status, error) {
	if !p.at(core.OpLt) {
		return p.parseStatement()
	}
	p.advance()

	var items []arena.Ref
	for !p.at(core.OpGt) {
		if p.at(core.OpEOF) {
			return arena.NilRef, StatusHard, p.syntaxErrorf("unterminated block, expected '>'")
		}
		ref, status, err := p.parseBlock()
		if status != StatusSuccess {
			if status == StatusSoft {
				return arena.NilRef, StatusHard, p.syntaxErrorf("expected statement inside block")
			}
			return arena.NilRef, StatusHard, err
		}
		items = append(items, ref)
	}
	p.advance()

	chain, err := p.buildSepChain(items)
	return chain, StatusSuccess, err
}

// parseStatement implements:
//
//	Statement ::= (Input | Print | Pay | Text | VarDecl | Call | Assign) "%"
//	            | If | While
func (p *Parser) parseStatement() (arena.Ref, Status, error) {
	if p.at(core.OpTransaction) {
		return arena.NilRef, StatusHard, &core.NestedFuncError{Pos: p.cur().Pos, Name: "Transaction"}
	}

	if ref, status, err := p.parseIf(); status != StatusSoft {
		return ref, status, err
	}
	if ref, status, err := p.parseWhile(); status != StatusSoft {
		return ref, status, err
	}

	ref, status, err := p.parseSimpleStatement()
	if status != StatusSuccess {
		return arena.NilRef, status, err
	}
	if err := p.expectOp(core.OpPercent, "expected '%' to terminate statement"); err != nil {
		return arena.NilRef, StatusHard, err
	}
	return ref, StatusSuccess, nil
}

func (p *Parser) parseSimpleStatement() (arena.Ref, Status, error) {
	prods := [...]func() (arena.Ref, Status, error){
		p.parseInput, p.parsePrint, p.parsePay, p.parseText, p.parseVarDecl, p.parseCallOrAssign,
	}
	for _, prod := range prods {
		ref, status, err := prod()
		if status != StatusSoft {
			return ref, status, err
		}
	}
	return arena.NilRef, StatusSoft, nil
}

// --- If / While ---

// parseIf implements:
//
//	If   ::= "if" Expr "->" Block Else?
//	Else ::= "else" Block
//
// The AST shape is IF_ELSE(cond, SEP(then, else-or-null)): the SEP node
// pairs the two branches together under the if node's single right child,
// the same linker role SEP plays for plain statement sequences.
func (p *Parser) parseIf() (arena.Ref, Status, error) {
	if !p.at(core.OpIf) {
		return arena.NilRef, StatusSoft, nil
	}
	pos := p.cur().Pos
	p.advance()

	cond, status, err := p.parseExpr()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected condition after 'if'")
		}
		return arena.NilRef, StatusHard, err
	}
	if err := p.expectOp(core.OpArrow, "expected '->' after if condition"); err != nil {
		return arena.NilRef, StatusHard, err
	}

	thenRef, status, err := p.parseBlock()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected block after if")
		}
		return arena.NilRef, StatusHard, err
	}

	elseRef := arena.NilRef
	if p.at(core.OpElse) {
		p.advance()
		elseRef, status, err = p.parseBlock()
		if status != StatusSuccess {
			if status == StatusSoft {
				return arena.NilRef, StatusHard, p.syntaxErrorf("expected block after else")
			}
			return arena.NilRef, StatusHard, err
		}
	}

	branches, err := p.tree.NewOperator(core.OpSep, thenRef, elseRef, pos)
	if err != nil {
		return arena.NilRef, StatusHard, err
	}
	ref, err := p.tree.NewOperator(core.OpIfElse, cond, branches, pos)
	return ref, StatusSuccess, err
}

// parseWhile implements:
//
//	While ::= "while" Expr "->" Block
func (p *Parser) parseWhile() (arena.Ref, Status, error) {
	if !p.at(core.OpWhile) {
		return arena.NilRef, StatusSoft, nil
	}
	pos := p.cur().Pos
	p.advance()

	cond, status, err := p.parseExpr()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected condition after 'while'")
		}
		return arena.NilRef, StatusHard, err
	}
	if err := p.expectOp(core.OpArrow, "expected '->' after while condition"); err != nil {
		return arena.NilRef, StatusHard, err
	}

	body, status, err := p.parseBlock()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected block after while")
		}
		return arena.NilRef, StatusHard, err
	}

	ref, err := p.tree.NewOperator(core.OpWhile, cond, body, pos)
	return ref, StatusSuccess, err
}

// --- Input / Print / Pay / Text / VarDecl / Call / Assign ---

// parseInput implements: Input ::= "Invest" Identifier
func (p *Parser) parseInput() (arena.Ref, Status, error) {
	if !p.at(core.OpInvest) {
		return arena.NilRef, StatusSoft, nil
	}
	pos := p.cur().Pos
	p.advance()
	if p.cur().Kind != core.TokIdentifier {
		return arena.NilRef, StatusHard, p.syntaxErrorf("expected identifier after Invest")
	}
	id, idPos := p.cur().Id, p.cur().Pos
	p.advance()
	if err := p.markVarIfUndefined(id, idPos); err != nil {
		return arena.NilRef, StatusHard, err
	}
	idRef, err := p.tree.NewIdentifier(id, idPos)
	if err != nil {
		return arena.NilRef, StatusHard, err
	}
	ref, err := p.tree.NewOperator(core.OpInvest, idRef, arena.NilRef, pos)
	return ref, StatusSuccess, err
}

// parsePrint implements: Print ::= "ShowBalance" Expr
func (p *Parser) parsePrint() (arena.Ref, Status, error) {
	if !p.at(core.OpShowBalance) {
		return arena.NilRef, StatusSoft, nil
	}
	pos := p.cur().Pos
	p.advance()
	expr, status, err := p.parseExpr()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected expression after ShowBalance")
		}
		return arena.NilRef, StatusHard, err
	}
	ref, err := p.tree.NewOperator(core.OpShowBalance, expr, arena.NilRef, pos)
	return ref, StatusSuccess, err
}

// parsePay implements: Pay ::= "Pay" Expr
func (p *Parser) parsePay() (arena.Ref, Status, error) {
	if !p.at(core.OpPay) {
		return arena.NilRef, StatusSoft, nil
	}
	pos := p.cur().Pos
	p.advance()
	expr, status, err := p.parseExpr()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected expression after Pay")
		}
		return arena.NilRef, StatusHard, err
	}
	ref, err := p.tree.NewOperator(core.OpPay, expr, arena.NilRef, pos)
	return ref, StatusSuccess, err
}

// parseText implements: Text ::= "Txt" "\"" Identifier "\""
func (p *Parser) parseText() (arena.Ref, Status, error) {
	if !p.at(core.OpTxt) {
		return arena.NilRef, StatusSoft, nil
	}
	pos := p.cur().Pos
	p.advance()
	if err := p.expectOp(core.OpQuote, "expected '\"' after Txt"); err != nil {
		return arena.NilRef, StatusHard, err
	}
	if p.cur().Kind != core.TokIdentifier {
		return arena.NilRef, StatusHard, p.syntaxErrorf("expected text inside quotes")
	}
	id, idPos := p.cur().Id, p.cur().Pos
	p.advance()
	if err := p.expectOp(core.OpQuote, "expected closing '\"'"); err != nil {
		return arena.NilRef, StatusHard, err
	}
	p.names.Get(id).IsText = true
	idRef, err := p.tree.NewIdentifier(id, idPos)
	if err != nil {
		return arena.NilRef, StatusHard, err
	}
	ref, err := p.tree.NewOperator(core.OpTxt, idRef, arena.NilRef, pos)
	return ref, StatusSuccess, err
}

// parseVarDecl implements: VarDecl ::= "Account" Identifier
func (p *Parser) parseVarDecl() (arena.Ref, Status, error) {
	if !p.at(core.OpAccount) {
		return arena.NilRef, StatusSoft, nil
	}
	pos := p.cur().Pos
	p.advance()
	if p.cur().Kind != core.TokIdentifier {
		return arena.NilRef, StatusHard, p.syntaxErrorf("expected identifier after Account")
	}
	id, idPos := p.cur().Id, p.cur().Pos
	p.advance()
	p.names.MarkVar(id)
	idRef, err := p.tree.NewIdentifier(id, idPos)
	if err != nil {
		return arena.NilRef, StatusHard, err
	}
	ref, err := p.tree.NewOperator(core.OpVarDecl, idRef, arena.NilRef, pos)
	return ref, StatusSuccess, err
}

// parseCallOrAssign implements Call and Assign, both of which start with
// an Identifier and need one token of lookahead to disambiguate:
//
//	Call   ::= Identifier "(" ExprChain ")"
//	Assign ::= Identifier "=" Expr
func (p *Parser) parseCallOrAssign() (arena.Ref, Status, error) {
	if p.cur().Kind != core.TokIdentifier {
		return arena.NilRef, StatusSoft, nil
	}
	save := p.pos
	id, idPos := p.cur().Id, p.cur().Pos
	p.advance()

	if p.at(core.OpLParen) {
		ref, err := p.finishCall(id, idPos)
		if err != nil {
			return arena.NilRef, StatusHard, err
		}
		return ref, StatusSuccess, nil
	}

	if p.at(core.OpAssign) {
		p.advance()
		expr, status, err := p.parseExpr()
		if status != StatusSuccess {
			if status == StatusSoft {
				return arena.NilRef, StatusHard, p.syntaxErrorf("expected expression after '='")
			}
			return arena.NilRef, StatusHard, err
		}
		if err := p.markVarIfUndefined(id, idPos); err != nil {
			return arena.NilRef, StatusHard, err
		}
		idRef, err := p.tree.NewIdentifier(id, idPos)
		if err != nil {
			return arena.NilRef, StatusHard, err
		}
		ref, err := p.tree.NewOperator(core.OpAssign, idRef, expr, idPos)
		return ref, StatusSuccess, err
	}

	p.pos = save
	return arena.NilRef, StatusSoft, nil
}

// finishCall parses the "(" ExprChain ")" tail of a call once the callee
// identifier and the opening paren's presence are already known.
func (p *Parser) finishCall(id int, pos core.Position) (arena.Ref, error) {
	p.advance() // consume '('

	e := p.names.Get(id)
	if e.Kind == nametable.Var {
		return arena.NilRef, &core.TypeError{Pos: pos, Name: e.Name, Msg: "variable used as a function"}
	}

	var args []arena.Ref
	if !p.at(core.OpRParen) {
		for {
			expr, status, err := p.parseExpr()
			if status != StatusSuccess {
				if status == StatusSoft {
					return arena.NilRef, p.syntaxErrorf("expected argument expression")
				}
				return arena.NilRef, err
			}
			args = append(args, expr)
			if p.at(core.OpComma) {
				p.advance()
				continue
			}
			break
		}
	}
	if err := p.expectOp(core.OpRParen, "expected ')' to close call"); err != nil {
		return arena.NilRef, err
	}

	switch e.Kind {
	case nametable.Func:
		if e.ArgsCount != len(args) {
			return arena.NilRef, &core.ArgsCountError{Pos: pos, Name: e.Name, Want: e.ArgsCount, Got: len(args)}
		}
	case nametable.Undefined:
		// No declaration has been seen yet for this name; record it as a
		// function with the arity of this call site. A later
		// FunctionDecl for the same name overwrites the arity with its
		// real one via MarkFunc.
		p.names.MarkFunc(id, len(args))
	}

	idRef, err := p.tree.NewIdentifier(id, pos)
	if err != nil {
		return arena.NilRef, err
	}
	argsChain, err := p.buildCommaChain(args)
	if err != nil {
		return arena.NilRef, err
	}
	return p.tree.NewOperator(core.OpCall, idRef, argsChain, pos)
}

// --- Expr / AddPr / MulPr / PowPr / Primary ---

// parseExpr implements:
//
//	Expr ::= AddPr (("<"|">"|"<="|">="|"=="|"!=") AddPr)*
func (p *Parser) parseExpr() (arena.Ref, Status, error) {
	left, status, err := p.parseAddPr()
	if status != StatusSuccess {
		return left, status, err
	}
	for p.atAny(core.OpLt, core.OpGt, core.OpLe, core.OpGe, core.OpEq, core.OpNeq) {
		op, pos := p.cur().Op, p.cur().Pos
		p.advance()
		right, status, err := p.parseAddPr()
		if status != StatusSuccess {
			if status == StatusSoft {
				return arena.NilRef, StatusHard, p.syntaxErrorf("expected right-hand operand")
			}
			return arena.NilRef, StatusHard, err
		}
		left, err = p.tree.NewOperator(op, left, right, pos)
		if err != nil {
			return arena.NilRef, StatusHard, err
		}
	}
	return left, StatusSuccess, nil
}

// parseAddPr implements: AddPr ::= MulPr (("+"|"-") MulPr)*
func (p *Parser) parseAddPr() (arena.Ref, Status, error) {
	left, status, err := p.parseMulPr()
	if status != StatusSuccess {
		return left, status, err
	}
	for p.atAny(core.OpAdd, core.OpSub) {
		op, pos := p.cur().Op, p.cur().Pos
		p.advance()
		right, status, err := p.parseMulPr()
		if status != StatusSuccess {
			if status == StatusSoft {
				return arena.NilRef, StatusHard, p.syntaxErrorf("expected right-hand operand")
			}
			return arena.NilRef, StatusHard, err
		}
		left, err = p.tree.NewOperator(op, left, right, pos)
		if err != nil {
			return arena.NilRef, StatusHard, err
		}
	}
	return left, StatusSuccess, nil
}

// parseMulPr implements: MulPr ::= PowPr (("*"|"/") PowPr)*
func (p *Parser) parseMulPr() (arena.Ref, Status, error) {
	left, status, err := p.parsePowPr()
	if status != StatusSuccess {
		return left, status, err
	}
	for p.atAny(core.OpMul, core.OpDiv) {
		op, pos := p.cur().Op, p.cur().Pos
		p.advance()
		right, status, err := p.parsePowPr()
		if status != StatusSuccess {
			if status == StatusSoft {
				return arena.NilRef, StatusHard, p.syntaxErrorf("expected right-hand operand")
			}
			return arena.NilRef, StatusHard, err
		}
		left, err = p.tree.NewOperator(op, left, right, pos)
		if err != nil {
			return arena.NilRef, StatusHard, err
		}
	}
	return left, StatusSuccess, nil
}

// parsePowPr implements: PowPr ::= Primary ("^" PowPr)?
func (p *Parser) parsePowPr() (arena.Ref, Status, error) {
	left, status, err := p.parsePrimary()
	if status != StatusSuccess {
		return left, status, err
	}
	if !p.at(core.OpPow) {
		return left, StatusSuccess, nil
	}
	pos := p.cur().Pos
	p.advance()
	right, status, err := p.parsePowPr()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected exponent")
		}
		return arena.NilRef, StatusHard, err
	}
	ref, err := p.tree.NewOperator(core.OpPow, left, right, pos)
	return ref, StatusSuccess, err
}

// parsePrimary implements: Primary ::= "(" Expr ")" | FuncOp | Call | Identifier | Num
func (p *Parser) parsePrimary() (arena.Ref, Status, error) {
	if p.at(core.OpLParen) {
		p.advance()
		expr, status, err := p.parseExpr()
		if status != StatusSuccess {
			if status == StatusSoft {
				return arena.NilRef, StatusHard, p.syntaxErrorf("expected expression after '('")
			}
			return arena.NilRef, StatusHard, err
		}
		if err := p.expectOp(core.OpRParen, "expected ')'"); err != nil {
			return arena.NilRef, StatusHard, err
		}
		return expr, StatusSuccess, nil
	}

	if ref, status, err := p.parseFuncOp(); status != StatusSoft {
		return ref, status, err
	}

	if p.cur().Kind == core.TokIdentifier {
		id, pos := p.cur().Id, p.cur().Pos
		p.advance()
		if p.at(core.OpLParen) {
			ref, err := p.finishCall(id, pos)
			if err != nil {
				return arena.NilRef, StatusHard, err
			}
			return ref, StatusSuccess, nil
		}
		if e := p.names.Get(id); e.Kind == nametable.Func {
			return arena.NilRef, StatusHard, &core.TypeError{Pos: pos, Name: e.Name, Msg: "function used as a value"}
		}
		ref, err := p.tree.NewIdentifier(id, pos)
		return ref, StatusSuccess, err
	}

	if p.cur().Kind == core.TokNumber {
		v, pos := p.cur().NumVal, p.cur().Pos
		p.advance()
		ref, err := p.tree.NewNumber(v, pos)
		return ref, StatusSuccess, err
	}

	return arena.NilRef, StatusSoft, nil
}

// parseFuncOp implements: FuncOp ::= ("sin"|"cos"|"sqrt") "(" Expr ")"
func (p *Parser) parseFuncOp() (arena.Ref, Status, error) {
	t := p.cur()
	if t.Kind != core.TokOperator {
		return arena.NilRef, StatusSoft, nil
	}
	matched := false
	for _, op := range core.FuncOperators {
		if t.Op == op {
			matched = true
			break
		}
	}
	if !matched {
		return arena.NilRef, StatusSoft, nil
	}
	op, pos := t.Op, t.Pos
	p.advance()
	if err := p.expectOp(core.OpLParen, "expected '(' after "+op.Desc().Lexeme); err != nil {
		return arena.NilRef, StatusHard, err
	}
	expr, status, err := p.parseExpr()
	if status != StatusSuccess {
		if status == StatusSoft {
			return arena.NilRef, StatusHard, p.syntaxErrorf("expected expression")
		}
		return arena.NilRef, StatusHard, err
	}
	if err := p.expectOp(core.OpRParen, "expected ')'"); err != nil {
		return arena.NilRef, StatusHard, err
	}
	ref, err := p.tree.NewOperator(op, expr, arena.NilRef, pos)
	return ref, StatusSuccess, err
}
