// Package ir defines the linear intermediate representation the builder
// produces from an AST and the two-pass lowering driver consumes.
package ir

import "github.com/moneylang/moneylang/internal/core"

// OpKind is the closed set of IR instruction opcodes.
type OpKind int

const (
	OpNop OpKind = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpSqrt
	OpCmp
	OpPush
	OpPop
	OpVarDecl
	OpLabel
	OpJmp
	OpJz
	OpCall
	OpRet
	OpSetFramePtr
	OpStart
	OpExit
	OpPrintText
)

var opNames = [...]string{
	OpNop:         "NOP",
	OpAdd:         "ADD",
	OpSub:         "SUB",
	OpMul:         "MUL",
	OpDiv:         "DIV",
	OpSqrt:        "SQRT",
	OpCmp:         "CMP",
	OpPush:        "PUSH",
	OpPop:         "POP",
	OpVarDecl:     "VAR_DECL",
	OpLabel:       "LABEL",
	OpJmp:         "JMP",
	OpJz:          "JZ",
	OpCall:        "CALL",
	OpRet:         "RET",
	OpSetFramePtr: "SET_FRAME_PTR",
	OpStart:       "START",
	OpExit:        "EXIT",
	OpPrintText:   "PRINT_TEXT",
}

// String returns the listing-file mnemonic for k.
func (k OpKind) String() string { return opNames[k] }

// PushKind distinguishes the three operand sources a PUSH instruction can
// have.
type PushKind int

const (
	PushNone PushKind = iota
	PushImm
	PushMem
	PushReg
)

// CmpKind is the comparison carried by a CMP instruction.
type CmpKind int

const (
	CmpNone CmpKind = iota
	CmpLt
	CmpGt
	CmpLe
	CmpGe
	CmpEq
	CmpNeq
)

// CmpKindFromOp maps a comparison OperatorKind to its CmpKind, or CmpNone
// if op is not a comparison.
func CmpKindFromOp(op core.OperatorKind) CmpKind {
	switch op {
	case core.OpLt:
		return CmpLt
	case core.OpGt:
		return CmpGt
	case core.OpLe:
		return CmpLe
	case core.OpGe:
		return CmpGe
	case core.OpEq:
		return CmpEq
	case core.OpNeq:
		return CmpNeq
	default:
		return CmpNone
	}
}

// CMPSDImm returns the CMPSD immediate byte for k, per the fixed mapping
// LT=1, LE=2, EQ=0, NEQ=4, GE=5, GT=6.
func (k CmpKind) CMPSDImm() byte {
	switch k {
	case CmpLt:
		return 1
	case CmpLe:
		return 2
	case CmpEq:
		return 0
	case CmpNeq:
		return 4
	case CmpGe:
		return 5
	case CmpGt:
		return 6
	default:
		return 0
	}
}

// Instr is one IR instruction. Only the fields relevant to Op carry
// meaning; see the per-op lowering table for which ones.
type Instr struct {
	Op   OpKind
	Push PushKind // valid when Op == OpPush
	Cmp  CmpKind  // valid when Op == OpCmp

	// IsLocal selects rbp-relative (true) vs rbx-relative (false)
	// addressing; valid when Op is OpPush/OpPop/OpVarDecl.
	IsLocal bool

	// Local distinguishes an ordinary jump-target label (true) from a
	// non-local function-entry label (false); valid when Op == OpLabel.
	Local bool

	// Taxed marks a RET whose value must be scaled by the active tax rate
	// before returning; valid when Op == OpRet.
	Taxed bool

	// AddrOrID means different things by Op:
	//   OpPush/OpPop  - the locals-stack memory slot address
	//   OpJmp/OpJz    - the IR-list index of the target LABEL instruction
	//   OpCall        - the name-table index of the callee
	//   OpLabel       - the name-table index to back-fill, when !Local
	//   OpPrintText   - the name-table index of the string literal
	AddrOrID int64

	// DVal is the literal value pushed by a PUSH IMM.
	DVal float64

	// Comment annotates the listing/NASM output; never affects bytes.
	Comment string

	// BlockSize and StartOffset are filled in by lowering pass 1.
	BlockSize   int32
	StartOffset int64
}

// List is the linear IR program: a START head, the program body, and an
// EXIT tail, in instruction order.
type List struct {
	Instrs []Instr
}

// Emit appends instr and returns its index in the list.
func (l *List) Emit(instr Instr) int {
	l.Instrs = append(l.Instrs, instr)
	return len(l.Instrs) - 1
}

// Len returns the number of instructions.
func (l *List) Len() int { return len(l.Instrs) }
