// Package lowering implements the two-pass IR-to-x86-64 driver: pass 1
// sizes every instruction and back-fills function entry addresses into the
// name table, pass 2 emits the final bytes, NASM-style text, and a
// byte-offset listing using those resolved addresses.
package lowering

import (
	"fmt"
	"math"
	"strconv"

	"github.com/moneylang/moneylang/internal/asmtext"
	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/ir"
	"github.com/moneylang/moneylang/internal/nametable"
	"github.com/moneylang/moneylang/internal/x64"
)

// Driver runs the two-pass lowering over a single IR list.
type Driver struct {
	list  *ir.List
	names *nametable.Table
}

// New creates a Driver over list, resolving CALL targets and stdlib calls
// against names. The Txt feature requires "__stdlib_out_text" to already be
// interned (with its Address set by the stdlib loader, §4.9) before Run is
// called if the program contains any PRINT_TEXT instruction.
func New(list *ir.List, names *nametable.Table) *Driver {
	return &Driver{list: list, names: names}
}

// Result is the output of a completed lowering run.
type Result struct {
	Code    []byte
	AsmText string
	Listing string
}

// Run executes pass 1 (sizing + address back-fill) then pass 2 (emission).
func (d *Driver) Run() (*Result, error) {
	strOffsets, textData := d.layoutTextData()

	var offset int64
	for i := range d.list.Instrs {
		instr := &d.list.Instrs[i]
		instr.StartOffset = offset
		bytes, _, err := d.encode(i, 0, strOffsets)
		if err != nil {
			return nil, err
		}
		instr.BlockSize = int32(len(bytes))
		offset += int64(instr.BlockSize)
		if instr.Op == ir.OpLabel && !instr.Local {
			d.names.SetAddress(int(instr.AddrOrID), instr.StartOffset)
		}
	}
	codeSize := offset

	em := asmtext.NewEmitter()
	em.Header()

	var code []byte
	for i := range d.list.Instrs {
		instr := &d.list.Instrs[i]
		bytes, asmLine, err := d.encode(i, codeSize, strOffsets)
		if err != nil {
			return nil, err
		}
		if int32(len(bytes)) != instr.BlockSize {
			return nil, fmt.Errorf("lowering: instruction %d changed size between passes (%d vs %d)", i, instr.BlockSize, len(bytes))
		}
		em.Instruction(instr.StartOffset, bytes, asmLine)
		code = append(code, bytes...)
	}
	code = append(code, textData...)

	return &Result{Code: code, AsmText: em.AsmText(), Listing: em.Listing()}, nil
}

// layoutTextData assigns each distinct Txt payload an offset within the
// data blob appended after the code segment, in first-use order.
func (d *Driver) layoutTextData() (map[int]int64, []byte) {
	offsets := make(map[int]int64)
	var data []byte
	for i := range d.list.Instrs {
		instr := &d.list.Instrs[i]
		if instr.Op != ir.OpPrintText {
			continue
		}
		id := int(instr.AddrOrID)
		if _, seen := offsets[id]; seen {
			continue
		}
		offsets[id] = int64(len(data))
		if e := d.names.Get(id); e != nil {
			data = append(data, []byte(e.Name)...)
		}
	}
	return offsets, data
}

func regName(r x64.Reg) string {
	names := [...]string{"rax", "rcx", "rdx", "rbx", "rsp", "rbp", "rsi", "rdi",
		"r8", "r9", "r10", "r11", "r12", "r13", "r14", "r15"}
	return names[r]
}

// encode produces the bytes and asm text for instruction i. codeSize and
// strOffsets are only meaningful on pass 2 (pass 1 passes zero/partial
// values); every encoder here is length-stable regardless of the actual
// jump/call target, so pass 1 can size instructions before any address is
// resolved.
func (d *Driver) encode(i int, codeSize int64, strOffsets map[int]int64) ([]byte, string, error) {
	instr := &d.list.Instrs[i]

	switch instr.Op {
	case ir.OpNop:
		return nil, "; nop", nil

	case ir.OpStart:
		var buf []byte
		buf = append(buf, x64.MovRR(x64.RBX, x64.RSP)...)
		buf = append(buf, x64.MovImm64(x64.RCX, math.Float64bits(1.0))...)
		buf = append(buf, x64.MovqXmmReg(7, x64.RCX)...)
		return buf, "; START", nil

	case ir.OpExit:
		var buf []byte
		buf = append(buf, x64.MovImm32(x64.RAX, 0x3c)...)
		buf = append(buf, x64.MovImm32(x64.RDI, 0)...)
		buf = append(buf, x64.Syscall()...)
		return buf, "; EXIT", nil

	case ir.OpVarDecl:
		return x64.SubImm32(x64.RSP, 8), "sub rsp, 8", nil

	case ir.OpPush:
		return d.encodePush(instr)

	case ir.OpPop:
		base := x64.RBX
		if instr.IsLocal {
			base = x64.RBP
		}
		b, err := x64.PopMem(base, int32(instr.AddrOrID*8))
		if err != nil {
			return nil, "", err
		}
		return b, fmt.Sprintf("pop qword [%s+%d]", regName(base), instr.AddrOrID*8), nil

	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv:
		return d.encodeArith(instr)

	case ir.OpSqrt:
		var buf []byte
		b1, err := x64.MovqXmmMem(0, x64.RSP, 0)
		if err != nil {
			return nil, "", err
		}
		buf = append(buf, b1...)
		buf = append(buf, x64.SqrtsdRR(0, 0)...)
		b2, err := x64.MovqMemXmm(x64.RSP, 0, 0)
		if err != nil {
			return nil, "", err
		}
		return append(buf, b2...), "; SQRT", nil

	case ir.OpCmp:
		return d.encodeCmp(instr)

	case ir.OpJmp:
		target := d.labelOffset(instr.AddrOrID)
		rel := int32(target - (instr.StartOffset + 5))
		return x64.JmpRel32(rel), fmt.Sprintf("jmp L%d", instr.AddrOrID), nil

	case ir.OpJz:
		var buf []byte
		buf = append(buf, x64.PopReg(x64.RDI)...)
		buf = append(buf, x64.TestRR(x64.RDI, x64.RDI)...)
		target := d.labelOffset(instr.AddrOrID)
		rel := int32(target - (instr.StartOffset + int64(len(buf)) + 6))
		return append(buf, x64.JzRel32(rel)...), fmt.Sprintf("jz L%d", instr.AddrOrID), nil

	case ir.OpCall:
		return d.encodeCall(instr)

	case ir.OpSetFramePtr:
		var buf []byte
		buf = append(buf, x64.PushReg(x64.RBP)...)
		buf = append(buf, x64.MovRR(x64.RBP, x64.RSP)...)
		return buf, "; SET_FRAME_PTR", nil

	case ir.OpRet:
		return d.encodeRet(instr)

	case ir.OpLabel:
		return nil, labelComment(i, instr), nil

	case ir.OpPrintText:
		return d.encodePrintText(instr, codeSize, strOffsets)
	}

	return nil, "", &core.FormatError{Msg: fmt.Sprintf("lowering: unhandled IR op %s", instr.Op)}
}

func (d *Driver) labelOffset(ref int64) int64 {
	idx := int(ref)
	if idx < 0 || idx >= len(d.list.Instrs) {
		return 0
	}
	return d.list.Instrs[idx].StartOffset
}

func (d *Driver) encodePush(instr *ir.Instr) ([]byte, string, error) {
	switch instr.Push {
	case ir.PushImm:
		var buf []byte
		buf = append(buf, x64.MovImm64(x64.RCX, math.Float64bits(instr.DVal))...)
		buf = append(buf, x64.PushReg(x64.RCX)...)
		return buf, fmt.Sprintf("; push imm %s", strconv.FormatFloat(instr.DVal, 'g', -1, 64)), nil
	case ir.PushReg:
		return x64.PushReg(x64.RAX), "push rax", nil
	case ir.PushMem:
		base := x64.RBX
		if instr.IsLocal {
			base = x64.RBP
		}
		b, err := x64.PushMem(base, int32(instr.AddrOrID*8))
		if err != nil {
			return nil, "", err
		}
		return b, fmt.Sprintf("push qword [%s+%d]", regName(base), instr.AddrOrID*8), nil
	}
	return nil, "", &core.FormatError{Msg: "lowering: PUSH instruction with unset kind"}
}

func (d *Driver) encodeArith(instr *ir.Instr) ([]byte, string, error) {
	var buf []byte
	b1, err := x64.MovqXmmMem(0, x64.RSP, 8)
	if err != nil {
		return nil, "", err
	}
	buf = append(buf, b1...)

	var arith []byte
	switch instr.Op {
	case ir.OpAdd:
		arith, err = x64.AddsdMem(0, x64.RSP, 0)
	case ir.OpSub:
		arith, err = x64.SubsdMem(0, x64.RSP, 0)
	case ir.OpMul:
		arith, err = x64.MulsdMem(0, x64.RSP, 0)
	case ir.OpDiv:
		arith, err = x64.DivsdMem(0, x64.RSP, 0)
	}
	if err != nil {
		return nil, "", err
	}
	buf = append(buf, arith...)
	buf = append(buf, x64.AddImm32(x64.RSP, 8)...)
	b2, err := x64.MovqMemXmm(x64.RSP, 0, 0)
	if err != nil {
		return nil, "", err
	}
	return append(buf, b2...), "; " + instr.Op.String(), nil
}

func (d *Driver) encodeCmp(instr *ir.Instr) ([]byte, string, error) {
	var buf []byte
	b1, err := x64.MovqXmmMem(0, x64.RSP, 8)
	if err != nil {
		return nil, "", err
	}
	buf = append(buf, b1...)
	b2, err := x64.CmpsdMem(0, x64.RSP, 0, instr.Cmp.CMPSDImm())
	if err != nil {
		return nil, "", err
	}
	buf = append(buf, b2...)
	buf = append(buf, x64.AddImm32(x64.RSP, 8)...)
	buf = append(buf, x64.AndpdRR(0, 7)...)
	b3, err := x64.MovqMemXmm(x64.RSP, 0, 0)
	if err != nil {
		return nil, "", err
	}
	return append(buf, b3...), "; CMP", nil
}

func (d *Driver) encodeCall(instr *ir.Instr) ([]byte, string, error) {
	e := d.names.Get(int(instr.AddrOrID))
	var targetAddr int64
	name := ""
	argsCount := 0
	if e != nil {
		targetAddr = e.Address
		name = e.Name
		argsCount = e.ArgsCount
	}
	rel := int32(targetAddr - (instr.StartOffset + 5))
	buf := x64.CallRel32(rel)
	if argsCount > 0 {
		buf = append(buf, x64.AddImm32(x64.RSP, int32(8*argsCount))...)
	}
	return buf, fmt.Sprintf("call %s", name), nil
}

func (d *Driver) encodeRet(instr *ir.Instr) ([]byte, string, error) {
	var buf []byte
	if instr.Taxed {
		b1, err := x64.MovqXmmMem(0, x64.RSP, 0)
		if err != nil {
			return nil, "", err
		}
		buf = append(buf, b1...)
		buf = append(buf, x64.MovImm64(x64.RCX, math.Float64bits(0.8))...)
		buf = append(buf, x64.MovqXmmReg(1, x64.RCX)...)
		buf = append(buf, x64.MulsdRR(0, 1)...)
		b2, err := x64.MovqMemXmm(x64.RSP, 0, 0)
		if err != nil {
			return nil, "", err
		}
		buf = append(buf, b2...)
	}
	buf = append(buf, x64.PopReg(x64.RAX)...)
	buf = append(buf, x64.MovRR(x64.RSP, x64.RBP)...)
	buf = append(buf, x64.PopReg(x64.RBP)...)
	buf = append(buf, x64.Ret()...)
	return buf, "ret", nil
}

// encodePrintText lowers PRINT_TEXT: lea rsi, [rip+stringOffset] ; mov rdx,
// stringLen ; call __stdlib_out_text. The string bytes live in the data
// blob appended right after the code segment; codeSize is that segment's
// final size, known only on pass 2 (pass 1 passes 0, which does not affect
// any of these encoders' byte length).
func (d *Driver) encodePrintText(instr *ir.Instr, codeSize int64, strOffsets map[int]int64) ([]byte, string, error) {
	id := int(instr.AddrOrID)
	name := ""
	if e := d.names.Get(id); e != nil {
		name = e.Name
	}

	const leaSize = 7
	leaSelfEnd := instr.StartOffset + leaSize
	dataAddr := codeSize + strOffsets[id]
	leaRel := int32(dataAddr - leaSelfEnd)
	buf := x64.LeaRipRel32(x64.RSI, leaRel)

	buf = append(buf, x64.MovImm32(x64.RDX, int32(len(name)))...)

	calleeID, _ := d.names.Lookup("__stdlib_out_text")
	var targetAddr int64
	if e := d.names.Get(calleeID); e != nil {
		targetAddr = e.Address
	}
	callSelf := instr.StartOffset + int64(len(buf))
	rel := int32(targetAddr - (callSelf + 5))
	buf = append(buf, x64.CallRel32(rel)...)

	return buf, fmt.Sprintf("; print %q", name), nil
}

func labelComment(i int, instr *ir.Instr) string {
	if instr.Comment != "" {
		return instr.Comment + ":"
	}
	// Local labels are named by IR index, the same name jmp/jz print.
	return fmt.Sprintf("L%d:", i)
}
