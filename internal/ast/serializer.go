package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/moneylang/moneylang/internal/arena"
	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/nametable"
)

// Signature is the versioned magic string every AST file begins with.
const Signature = "IR312"

// FormatVersion is the current AST file format version.
const FormatVersion = 1

var kindNames = [...]string{
	nametable.Undefined: "UNDEFINED_ID",
	nametable.Var:       "VAR_ID",
	nametable.Func:      "FUNC_ID",
}

var kindByName = map[string]nametable.Kind{
	"UNDEFINED_ID": nametable.Undefined,
	"VAR_ID":       nametable.Var,
	"FUNC_ID":      nametable.Func,
}

var dumpNameToOp = func() map[string]core.OperatorKind {
	m := make(map[string]core.OperatorKind)
	for i := 1; i < core.NumOperatorKinds; i++ {
		k := core.OperatorKind(i)
		if name := k.String(); name != "" {
			m[name] = k
		}
	}
	return m
}()

// Write renders tree and names in the IR312 textual format.
func Write(tree *Tree, names *nametable.Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d\n", Signature, FormatVersion)

	entries := names.Entries()
	fmt.Fprintf(&b, "NAMETABLE size: %d {\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&b, "  %d: %q, %s, %d;\n", i, e.Name, kindNames[e.Kind], e.ArgsCount)
	}
	b.WriteString("}\n")

	writeNode(&b, tree, tree.Root, 0)
	return b.String()
}

func writeNode(b *strings.Builder, tree *Tree, ref arena.Ref, depth int) {
	indent := strings.Repeat("  ", depth)
	n := tree.Get(ref)
	if n == nil {
		fmt.Fprintf(b, "%s{}\n", indent)
		return
	}
	switch n.Kind {
	case KindNumber:
		fmt.Fprintf(b, "%s{NUM:%s}\n", indent, strconv.FormatFloat(n.NumVal, 'g', -1, 64))
	case KindIdentifier:
		fmt.Fprintf(b, "%s{IDR:%d}\n", indent, n.Id)
	case KindOperator:
		fmt.Fprintf(b, "%s{OPR:%s\n", indent, n.Op.String())
		writeNode(b, tree, n.Left, depth+1)
		writeNode(b, tree, n.Right, depth+1)
		fmt.Fprintf(b, "%s}\n", indent)
	}
}

// reader is a rune-cursor over the AST file text, used to keep Read's
// control flow a plain recursive descent instead of a general tokenizer.
type reader struct {
	text []rune
	pos  int
}

func (r *reader) eof() bool        { return r.pos >= len(r.text) }
func (r *reader) peek() rune       { if r.eof() { return 0 }; return r.text[r.pos] }
func (r *reader) advance() rune    { c := r.peek(); r.pos++; return c }
func (r *reader) skipSpace() {
	for !r.eof() && (r.peek() == ' ' || r.peek() == '\n' || r.peek() == '\t' || r.peek() == '\r') {
		r.pos++
	}
}

func (r *reader) expect(s string) error {
	r.skipSpace()
	for _, want := range s {
		if r.eof() || r.advance() != want {
			return &core.FormatError{Msg: fmt.Sprintf("expected %q", s)}
		}
	}
	return nil
}

func (r *reader) readInt() (int, error) {
	r.skipSpace()
	start := r.pos
	if !r.eof() && (r.peek() == '-' || r.peek() == '+') {
		r.pos++
	}
	for !r.eof() && r.peek() >= '0' && r.peek() <= '9' {
		r.pos++
	}
	if start == r.pos {
		return 0, &core.FormatError{Msg: "expected integer"}
	}
	return strconv.Atoi(string(r.text[start:r.pos]))
}

func (r *reader) readFloat() (float64, error) {
	r.skipSpace()
	start := r.pos
	for !r.eof() && strings.ContainsRune("+-0123456789.eE", r.peek()) {
		r.pos++
	}
	if start == r.pos {
		return 0, &core.FormatError{Msg: "expected number"}
	}
	return strconv.ParseFloat(string(r.text[start:r.pos]), 64)
}

func (r *reader) readQuoted() (string, error) {
	r.skipSpace()
	if r.eof() || r.advance() != '"' {
		return "", &core.FormatError{Msg: "expected quoted string"}
	}
	start := r.pos
	for !r.eof() && r.peek() != '"' {
		r.pos++
	}
	if r.eof() {
		return "", &core.FormatError{Msg: "unterminated quoted string"}
	}
	// Write quotes names with %q, so undo its escapes here.
	s, err := strconv.Unquote(string(r.text[start-1 : r.pos+1]))
	if err != nil {
		return "", &core.FormatError{Msg: "malformed quoted string"}
	}
	r.pos++ // closing quote
	return s, nil
}

func (r *reader) readIdent() string {
	r.skipSpace()
	start := r.pos
	for !r.eof() && (isAlnum(r.peek()) || r.peek() == '_') {
		r.pos++
	}
	return string(r.text[start:r.pos])
}

func isAlnum(c rune) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

// Read parses the IR312 format back into a Tree and its NameTable.
// maxNodes/maxEntries/maxNameBytes size the backing stores exactly as the
// CLI -t/-n/-l flags do for a fresh compilation.
func Read(text string, maxNodes, maxEntries, maxNameBytes int) (*Tree, *nametable.Table, error) {
	r := &reader{text: []rune(text)}

	r.skipSpace()
	sigStart := r.pos
	for !r.eof() && r.peek() != ':' && r.peek() != '\n' {
		r.pos++
	}
	if string(r.text[sigStart:r.pos]) != Signature {
		return nil, nil, &core.SignatureError{Got: string(r.text[sigStart:r.pos])}
	}
	if err := r.expect(":"); err != nil {
		return nil, nil, err
	}
	if _, err := r.readInt(); err != nil {
		return nil, nil, &core.SignatureError{Got: "missing version"}
	}

	if err := r.expect("NAMETABLE"); err != nil {
		return nil, nil, err
	}
	if err := r.expect("size:"); err != nil {
		return nil, nil, err
	}
	n, err := r.readInt()
	if err != nil {
		return nil, nil, err
	}
	if err := r.expect("{"); err != nil {
		return nil, nil, err
	}

	names := nametable.New(maxEntries, maxNameBytes)
	for i := 0; i < n; i++ {
		if _, err := r.readInt(); err != nil {
			return nil, nil, err
		}
		if err := r.expect(":"); err != nil {
			return nil, nil, err
		}
		name, err := r.readQuoted()
		if err != nil {
			return nil, nil, err
		}
		if err := r.expect(","); err != nil {
			return nil, nil, err
		}
		kindWord := r.readIdent()
		kind, ok := kindByName[kindWord]
		if !ok {
			return nil, nil, &core.FormatError{Msg: fmt.Sprintf("unknown kind %q", kindWord)}
		}
		if err := r.expect(","); err != nil {
			return nil, nil, err
		}
		argc, err := r.readInt()
		if err != nil {
			return nil, nil, err
		}
		if err := r.expect(";"); err != nil {
			return nil, nil, err
		}
		id, err := names.Insert(name)
		if err != nil {
			return nil, nil, err
		}
		switch kind {
		case nametable.Func:
			names.MarkFunc(id, argc)
		case nametable.Var:
			names.MarkVar(id)
		}
	}
	if err := r.expect("}"); err != nil {
		return nil, nil, err
	}

	tree := NewTree(maxNodes)
	root, err := readNode(r, tree)
	if err != nil {
		return nil, nil, err
	}
	tree.Root = root
	return tree, names, nil
}

func readNode(r *reader, tree *Tree) (arena.Ref, error) {
	if err := r.expect("{"); err != nil {
		return arena.NilRef, err
	}
	r.skipSpace()
	if r.peek() == '}' {
		r.pos++
		return arena.NilRef, nil
	}

	tag := r.readIdent()
	switch tag {
	case "NUM":
		if err := r.expect(":"); err != nil {
			return arena.NilRef, err
		}
		v, err := r.readFloat()
		if err != nil {
			return arena.NilRef, err
		}
		if err := r.expect("}"); err != nil {
			return arena.NilRef, err
		}
		return tree.NewNumber(v, core.Position{})
	case "IDR":
		if err := r.expect(":"); err != nil {
			return arena.NilRef, err
		}
		id, err := r.readInt()
		if err != nil {
			return arena.NilRef, err
		}
		if err := r.expect("}"); err != nil {
			return arena.NilRef, err
		}
		return tree.NewIdentifier(id, core.Position{})
	case "OPR":
		if err := r.expect(":"); err != nil {
			return arena.NilRef, err
		}
		opName := r.readIdent()
		op, ok := dumpNameToOp[opName]
		if !ok {
			return arena.NilRef, &core.FormatError{Msg: fmt.Sprintf("unknown operator %q", opName)}
		}
		left, err := readNode(r, tree)
		if err != nil {
			return arena.NilRef, err
		}
		right, err := readNode(r, tree)
		if err != nil {
			return arena.NilRef, err
		}
		if err := r.expect("}"); err != nil {
			return arena.NilRef, err
		}
		return tree.NewOperator(op, left, right, core.Position{})
	default:
		return arena.NilRef, &core.FormatError{Msg: fmt.Sprintf("unknown node tag %q", tag)}
	}
}
