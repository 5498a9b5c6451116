// Package x64 encodes the fixed subset of x86-64 instructions the backend
// needs, as pure functions over arbitrary registers rather than the
// teacher's fixed-register encoders.
//
// For details on x86-64 instruction encoding (REX prefixes, ModRM, SIB
// bytes), see: https://wiki.osdev.org/X86-64_Instruction_Encoding
package x64

import (
	"encoding/binary"

	"github.com/moneylang/moneylang/internal/core"
)

// Reg is a general-purpose register index, rax=0 .. r15=15, matching the
// hardware encoding (low 3 bits go in ModRM/opcode, bit 3 is REX.B/R/X).
type Reg byte

const (
	RAX Reg = iota
	RCX
	RDX
	RBX
	RSP
	RBP
	RSI
	RDI
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

// Xmm is an SSE register index, xmm0=0 .. xmm15=15.
type Xmm byte

func le32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func le64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func modrm(mod, reg, rm byte) byte {
	return (mod << 6) | ((reg & 7) << 3) | (rm & 7)
}

// sibNoIndex packs a SIB byte selecting base with no index register, needed
// whenever the low 3 bits of a ModRM rm/base field are 100 (rsp/r12).
func sibNoIndex(base byte) byte {
	return (0 << 6) | (4 << 3) | (base & 7)
}

func needsSIB(r Reg) bool { return r&7 == 4 }

// memEncoding builds the ModRM[+SIB]+disp32 tail shared by every
// `[reg+disp32]` addressing form. reg is the ModRM reg field (opcode
// extension or xmm/register operand); base is the memory operand's base
// register, already validated by the caller.
func memEncoding(reg, base byte, disp32 int32) []byte {
	buf := []byte{modrm(0b10, reg, base)}
	if needsSIB(Reg(base)) {
		buf = append(buf, sibNoIndex(base))
	}
	return append(buf, le32(uint32(disp32))...)
}

// checkMemBase enforces the pedagogical operand restrictions: r8-r15 are
// never allowed as a memory base here (push/pop-mem or SSE), and rbp is
// additionally rejected as an SSE memory base.
func checkMemBase(base Reg, forSSE bool) error {
	if base >= R8 {
		return &core.UnsupportedEncoding{Msg: "r8-r15 not allowed as memory base"}
	}
	if forSSE && base == RBP {
		return &core.UnsupportedEncoding{Msg: "rbp not allowed as SSE memory base"}
	}
	return nil
}

// PushReg encodes: push r64 (opcode 50+r, REX.B if r >= r8).
func PushReg(r Reg) []byte {
	var buf []byte
	if r >= R8 {
		buf = append(buf, 0x41)
	}
	return append(buf, 0x50+byte(r&7))
}

// PopReg encodes: pop r64 (opcode 58+r, REX.B if r >= r8).
func PopReg(r Reg) []byte {
	var buf []byte
	if r >= R8 {
		buf = append(buf, 0x41)
	}
	return append(buf, 0x58+byte(r&7))
}

// PushMem encodes: push qword [base+disp32] (FF /6).
func PushMem(base Reg, disp32 int32) ([]byte, error) {
	if err := checkMemBase(base, false); err != nil {
		return nil, err
	}
	buf := []byte{0xFF}
	return append(buf, memEncoding(6, byte(base), disp32)...), nil
}

// PopMem encodes: pop qword [base+disp32] (8F /0).
func PopMem(base Reg, disp32 int32) ([]byte, error) {
	if err := checkMemBase(base, false); err != nil {
		return nil, err
	}
	buf := []byte{0x8F}
	return append(buf, memEncoding(0, byte(base), disp32)...), nil
}

// MovRR encodes: mov dst, src (REX.W 89 /r, mov r/m64, r64).
func MovRR(dst, src Reg) []byte {
	rex := byte(0x48)
	if src >= R8 {
		rex |= 0x04 // REX.R
	}
	if dst >= R8 {
		rex |= 0x01 // REX.B
	}
	return []byte{rex, 0x89, modrm(0b11, byte(src&7), byte(dst&7))}
}

// MovImm64 encodes: movabs dst, imm64 (REX.W B8+r id).
func MovImm64(dst Reg, imm64 uint64) []byte {
	rex := byte(0x48)
	if dst >= R8 {
		rex |= 0x01
	}
	buf := []byte{rex, 0xB8 + byte(dst&7)}
	return append(buf, le64(imm64)...)
}

// AddImm32 encodes: add dst, imm32 (REX.W 81 /0 id).
func AddImm32(dst Reg, imm32 int32) []byte {
	rex := byte(0x48)
	if dst >= R8 {
		rex |= 0x01
	}
	buf := []byte{rex, 0x81, modrm(0b11, 0, byte(dst&7))}
	return append(buf, le32(uint32(imm32))...)
}

// SubImm32 encodes: sub dst, imm32 (REX.W 81 /5 id).
func SubImm32(dst Reg, imm32 int32) []byte {
	rex := byte(0x48)
	if dst >= R8 {
		rex |= 0x01
	}
	buf := []byte{rex, 0x81, modrm(0b11, 5, byte(dst&7))}
	return append(buf, le32(uint32(imm32))...)
}

// TestRR encodes: test a, b (REX.W 85 /r).
func TestRR(a, b Reg) []byte {
	rex := byte(0x48)
	if b >= R8 {
		rex |= 0x04
	}
	if a >= R8 {
		rex |= 0x01
	}
	return []byte{rex, 0x85, modrm(0b11, byte(b&7), byte(a&7))}
}

// Ret encodes: ret (C3).
func Ret() []byte { return []byte{0xC3} }

// Syscall encodes: syscall (0F 05).
func Syscall() []byte { return []byte{0x0F, 0x05} }

// JmpRel32 encodes: jmp rel32 (E9 id).
func JmpRel32(rel32 int32) []byte {
	return append([]byte{0xE9}, le32(uint32(rel32))...)
}

// JzRel32 encodes: jz rel32 (0F 84 id).
func JzRel32(rel32 int32) []byte {
	return append([]byte{0x0F, 0x84}, le32(uint32(rel32))...)
}

// CallRel32 encodes: call rel32 (E8 id).
func CallRel32(rel32 int32) []byte {
	return append([]byte{0xE8}, le32(uint32(rel32))...)
}

// MovqXmmMem encodes: movq dst, [base+disp32] (F3 0F 7E /r).
func MovqXmmMem(dst Xmm, base Reg, disp32 int32) ([]byte, error) {
	if err := checkMemBase(base, true); err != nil {
		return nil, err
	}
	buf := []byte{0xF3}
	if dst >= 8 {
		buf = append(buf, 0x44) // REX.R
	}
	buf = append(buf, 0x0F, 0x7E)
	return append(buf, memEncoding(byte(dst), byte(base), disp32)...), nil
}

// MovqMemXmm encodes: movq [base+disp32], src (66 0F D6 /r).
func MovqMemXmm(base Reg, disp32 int32, src Xmm) ([]byte, error) {
	if err := checkMemBase(base, true); err != nil {
		return nil, err
	}
	buf := []byte{0x66}
	if src >= 8 {
		buf = append(buf, 0x44)
	}
	buf = append(buf, 0x0F, 0xD6)
	return append(buf, memEncoding(byte(src), byte(base), disp32)...), nil
}

// MovqXmmReg encodes: movq dst, src (66 REX.W 0F 6E /r).
func MovqXmmReg(dst Xmm, src Reg) []byte {
	rex := byte(0x48)
	if dst >= 8 {
		rex |= 0x04
	}
	if src >= R8 {
		rex |= 0x01
	}
	return []byte{0x66, rex, 0x0F, 0x6E, modrm(0b11, byte(dst), byte(src&7))}
}

func sseArithMem(op byte, dst Xmm, base Reg, disp32 int32) ([]byte, error) {
	if err := checkMemBase(base, true); err != nil {
		return nil, err
	}
	buf := []byte{0xF2}
	if dst >= 8 {
		buf = append(buf, 0x44)
	}
	buf = append(buf, 0x0F, op)
	return append(buf, memEncoding(byte(dst), byte(base), disp32)...), nil
}

// AddsdMem encodes: addsd dst, [base+disp32] (F2 0F 58 /r).
func AddsdMem(dst Xmm, base Reg, disp32 int32) ([]byte, error) {
	return sseArithMem(0x58, dst, base, disp32)
}

// SubsdMem encodes: subsd dst, [base+disp32] (F2 0F 5C /r).
func SubsdMem(dst Xmm, base Reg, disp32 int32) ([]byte, error) {
	return sseArithMem(0x5C, dst, base, disp32)
}

// MulsdMem encodes: mulsd dst, [base+disp32] (F2 0F 59 /r).
func MulsdMem(dst Xmm, base Reg, disp32 int32) ([]byte, error) {
	return sseArithMem(0x59, dst, base, disp32)
}

// DivsdMem encodes: divsd dst, [base+disp32] (F2 0F 5E /r).
func DivsdMem(dst Xmm, base Reg, disp32 int32) ([]byte, error) {
	return sseArithMem(0x5E, dst, base, disp32)
}

// SqrtsdRR encodes: sqrtsd dst, src (F2 0F 51 /r).
func SqrtsdRR(dst, src Xmm) []byte {
	buf := []byte{0xF2}
	rex := byte(0)
	if dst >= 8 {
		rex |= 0x04
	}
	if src >= 8 {
		rex |= 0x01
	}
	if rex != 0 {
		buf = append(buf, 0x40|rex)
	}
	buf = append(buf, 0x0F, 0x51)
	return append(buf, modrm(0b11, byte(dst), byte(src)))
}

// CmpsdMem encodes: cmpsd dst, [base+disp32], imm8 (F2 0F C2 /r ib).
func CmpsdMem(dst Xmm, base Reg, disp32 int32, imm8 byte) ([]byte, error) {
	buf, err := sseArithMem(0xC2, dst, base, disp32)
	if err != nil {
		return nil, err
	}
	return append(buf, imm8), nil
}

// AndpdRR encodes: andpd dst, src (66 0F 54 /r).
func AndpdRR(dst, src Xmm) []byte {
	buf := []byte{0x66}
	rex := byte(0)
	if dst >= 8 {
		rex |= 0x04
	}
	if src >= 8 {
		rex |= 0x01
	}
	if rex != 0 {
		buf = append(buf, 0x40|rex)
	}
	buf = append(buf, 0x0F, 0x54)
	return append(buf, modrm(0b11, byte(dst), byte(src)))
}

// MulsdRR encodes: mulsd dst, src (F2 0F 59 /r), the register-register form
// used to scale a return value by a register-loaded constant rather than a
// memory operand (there is no data section to hold one).
func MulsdRR(dst, src Xmm) []byte {
	buf := []byte{0xF2}
	rex := byte(0)
	if dst >= 8 {
		rex |= 0x04
	}
	if src >= 8 {
		rex |= 0x01
	}
	if rex != 0 {
		buf = append(buf, 0x40|rex)
	}
	buf = append(buf, 0x0F, 0x59)
	return append(buf, modrm(0b11, byte(dst), byte(src)))
}

// MovImm32 encodes: mov dst, imm32 (REX.W C7 /0 id), a shorter form than
// MovImm64 for small sign-extended constants.
func MovImm32(dst Reg, imm32 int32) []byte {
	rex := byte(0x48)
	if dst >= R8 {
		rex |= 0x01
	}
	buf := []byte{rex, 0xC7, modrm(0b11, 0, byte(dst&7))}
	return append(buf, le32(uint32(imm32))...)
}

// LeaRipRel32 encodes: lea dst, [rip+rel32] (REX.W 8D /r, mod=00 rm=101).
// Not part of the base supported-encodings table; added for PRINT_TEXT's
// RIP-relative string load, the one place the lowering table names a `lea`
// form the encoder otherwise has no entry for.
func LeaRipRel32(dst Reg, rel32 int32) []byte {
	rex := byte(0x48)
	if dst >= R8 {
		rex |= 0x04 // REX.R, dst occupies the ModRM reg field here
	}
	buf := []byte{rex, 0x8D, modrm(0b00, byte(dst&7), 0b101)}
	return append(buf, le32(uint32(rel32))...)
}
