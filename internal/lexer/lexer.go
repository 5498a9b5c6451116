// Package lexer tokenizes Money-lang source text into the flat token
// sequence the parser consumes.
package lexer

import (
	"strconv"
	"strings"

	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/nametable"
)

// Lexer converts source text into tokens, interning every identifier it
// sees into a shared name table as it goes.
type Lexer struct {
	src   []rune
	pos   int
	line  int
	col   int
	file  string
	names *nametable.Table
}

// New creates a Lexer over src, attributing positions to file and
// interning identifiers into names.
func New(src, file string, names *nametable.Table) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1, file: file, names: names}
}

func (l *Lexer) eof() bool  { return l.pos >= len(l.src) }
func (l *Lexer) peek() rune { if l.eof() { return 0 }; return l.src[l.pos] }

func (l *Lexer) position() core.Position {
	return core.Position{File: l.file, Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) advance() rune {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) skipSpaceAndComments() {
	for !l.eof() {
		c := l.peek()
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '@':
			for !l.eof() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

// Tokenize consumes the whole source and returns its token sequence,
// always ending with a synthetic EOF token.
func (l *Lexer) Tokenize() ([]core.Token, error) {
	var toks []core.Token
	afterOpenQuote := false
	quoteOpen := false

	for {
		l.skipSpaceAndComments()
		pos := l.position()

		if l.eof() {
			toks = append(toks, core.Token{Kind: core.TokOperator, Op: core.OpEOF, Pos: pos})
			return toks, nil
		}

		if afterOpenQuote {
			tok, err := l.lexQuotedIdentifier(pos)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			afterOpenQuote = false
			continue
		}

		if isDigit(l.peek()) {
			tok, err := l.lexNumber(pos)
			if err != nil {
				return nil, err
			}
			toks = append(toks, tok)
			continue
		}

		if op, n, ok := core.MatchOperator(l.src, l.pos); ok {
			for i := 0; i < n; i++ {
				l.advance()
			}
			toks = append(toks, core.Token{Kind: core.TokOperator, Op: op, Pos: pos})
			if op == core.OpQuote {
				// Only an opening quote is followed by a free-form
				// identifier; the closing quote ends the literal.
				quoteOpen = !quoteOpen
				afterOpenQuote = quoteOpen
			}
			continue
		}

		tok, err := l.lexIdentifier(pos)
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func (l *Lexer) lexNumber(pos core.Position) (core.Token, error) {
	start := l.pos
	for !l.eof() && isDigit(l.peek()) {
		l.advance()
	}
	if !l.eof() && l.peek() == '.' {
		l.advance()
		if !l.eof() && isDigit(l.peek()) {
			for !l.eof() && isDigit(l.peek()) {
				l.advance()
			}
		}
	}
	if !l.eof() && (l.peek() == 'e' || l.peek() == 'E') {
		save := l.pos
		l.advance()
		if !l.eof() && (l.peek() == '+' || l.peek() == '-') {
			l.advance()
		}
		if !l.eof() && isDigit(l.peek()) {
			for !l.eof() && isDigit(l.peek()) {
				l.advance()
			}
		} else {
			l.pos = save // not actually an exponent, back off
		}
	}

	lit := string(l.src[start:l.pos])
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return core.Token{}, &core.LexError{Pos: pos, Msg: "invalid numeric literal: " + lit}
	}

	op, n, ok := core.MatchOperator(l.src, l.pos)
	if !ok || (op != core.OpDollar && op != core.OpRuble) {
		return core.Token{}, &core.LexError{Pos: pos, Msg: "numeric literal must be followed by $ or ₽"}
	}
	for i := 0; i < n; i++ {
		l.advance()
	}
	if op == core.OpDollar {
		v *= core.DollarToRubleRate
	}

	return core.Token{Kind: core.TokNumber, NumVal: v, Pos: pos}, nil
}

func (l *Lexer) lexIdentifier(pos core.Position) (core.Token, error) {
	start := l.pos
	if l.eof() || !core.IsIdentRune(l.peek()) {
		return core.Token{}, &core.LexError{Pos: pos, Msg: "unexpected character " + strconv.QuoteRune(l.peek())}
	}
	for !l.eof() && core.IsIdentRune(l.peek()) {
		l.advance()
	}
	name := string(l.src[start:l.pos])
	id, err := l.names.Insert(name)
	if err != nil {
		return core.Token{}, err
	}
	return core.Token{Kind: core.TokIdentifier, Id: id, Pos: pos}, nil
}

func (l *Lexer) lexQuotedIdentifier(pos core.Position) (core.Token, error) {
	var sb strings.Builder
	for !l.eof() && l.peek() != '"' {
		sb.WriteRune(l.advance())
	}
	if l.eof() {
		return core.Token{}, &core.LexError{Pos: pos, Msg: "unterminated quoted identifier"}
	}
	id, err := l.names.Insert(sb.String())
	if err != nil {
		return core.Token{}, err
	}
	return core.Token{Kind: core.TokIdentifier, Id: id, Pos: pos}, nil
}
