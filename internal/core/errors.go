package core

import "fmt"

// FileError reports a failure to open an input, output or stdlib file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("file error: %s: %v", e.Path, e.Err) }
func (e *FileError) Unwrap() error { return e.Err }

// LexError reports a position at which the lexer found no applicable rule.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s:%d:%d: lex error: %s", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Msg)
}

// SyntaxError reports a grammar production that failed to match after
// committing to it.
type SyntaxError struct {
	Pos     Position
	Msg     string
	Snippet string // offending source line, for the caret-annotated report
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Msg)
}

// ArenaOverflow reports that a bump allocator has exhausted its fixed
// capacity.
type ArenaOverflow struct {
	Capacity int
}

func (e *ArenaOverflow) Error() string {
	return fmt.Sprintf("arena overflow: capacity %d exceeded", e.Capacity)
}

// NameTableOverflow reports that the name table's fixed capacity (entry
// count or total string bytes) has been exhausted.
type NameTableOverflow struct {
	Reason string
}

func (e *NameTableOverflow) Error() string { return fmt.Sprintf("name table overflow: %s", e.Reason) }

// SignatureError reports an AST file missing or mismatching the expected
// "IR312:<version>" signature line.
type SignatureError struct {
	Got string
}

func (e *SignatureError) Error() string { return fmt.Sprintf("bad AST signature: %q", e.Got) }

// FormatError reports malformed contents in an otherwise signature-valid
// AST file.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return fmt.Sprintf("malformed AST file: %s", e.Msg) }

// TypeError reports an identifier used inconsistently with its recorded
// kind, e.g. calling a variable or referencing a function as a value.
type TypeError struct {
	Pos  Position
	Name string
	Msg  string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s:%d:%d: type error: %s: %s", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Name, e.Msg)
}

// ScopeError reports a reference to an identifier that is not reachable
// from the current scope stack.
type ScopeError struct {
	Pos  Position
	Name string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("%s:%d:%d: scope error: %q is not in scope", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Name)
}

// NestedFuncError reports a Transaction declaration found inside the body
// of another Transaction.
type NestedFuncError struct {
	Pos  Position
	Name string
}

func (e *NestedFuncError) Error() string {
	return fmt.Sprintf("%s:%d:%d: nested function declaration: %q", e.Pos.File, e.Pos.Line, e.Pos.Column, e.Name)
}

// ArgsCountError reports a call whose argument count does not match the
// callee's declared formal-argument count.
type ArgsCountError struct {
	Pos      Position
	Name     string
	Want     int
	Got      int
}

func (e *ArgsCountError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %q expects %d argument(s), got %d",
		e.Pos.File, e.Pos.Line, e.Pos.Column, e.Name, e.Want, e.Got)
}

// UnsupportedEncoding reports an instruction form outside the x86-64
// encoder's supported subset (for example an SSE memory operand based on
// r8-r15, or rbp).
type UnsupportedEncoding struct {
	Msg string
}

func (e *UnsupportedEncoding) Error() string { return fmt.Sprintf("unsupported encoding: %s", e.Msg) }

// MemoryError reports that the output code buffer would exceed its fixed
// maximum size.
type MemoryError struct {
	Limit int
}

func (e *MemoryError) Error() string {
	return fmt.Sprintf("memory error: output buffer would exceed %d bytes", e.Limit)
}
