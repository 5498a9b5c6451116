package x64

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moneylang/moneylang/internal/core"
)

func TestPushPopRegNoRexBelowR8(t *testing.T) {
	require.Equal(t, []byte{0x50}, PushReg(RAX))
	require.Equal(t, []byte{0x58}, PopReg(RAX))
}

func TestPushPopRegRexBAboveR8(t *testing.T) {
	require.Equal(t, []byte{0x41, 0x50 + 0}, PushReg(R8))
	require.Equal(t, []byte{0x41, 0x58 + 7}, PopReg(R15))
}

func TestPushMemRejectsR8PlusBase(t *testing.T) {
	_, err := PushMem(R12, 8)
	require.Error(t, err)
	require.IsType(t, &core.UnsupportedEncoding{}, err)
}

func TestPushMemRbpBaseAllowed(t *testing.T) {
	buf, err := PushMem(RBP, 16)
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), buf[0])
	require.Len(t, buf, 1+1+4)
}

func TestPushMemRspBaseEmitsSIB(t *testing.T) {
	buf, err := PushMem(RSP, 0)
	require.NoError(t, err)
	require.Equal(t, byte(0xFF), buf[0])
	require.Len(t, buf, 1+1+1+4) // opcode + modrm + sib + disp32
}

func TestMovRRSetsRexBits(t *testing.T) {
	buf := MovRR(R8, RAX)
	require.Equal(t, byte(0x49), buf[0]) // REX.W + REX.B
	require.Equal(t, byte(0x89), buf[1])
}

func TestMovImm64RoundTripsLength(t *testing.T) {
	buf := MovImm64(RCX, 0x3FF0000000000000)
	require.Len(t, buf, 10)
}

func TestJmpRel32Length(t *testing.T) {
	require.Len(t, JmpRel32(0), 5)
}

func TestJzRel32Length(t *testing.T) {
	require.Len(t, JzRel32(0), 6)
}

func TestCallRel32Length(t *testing.T) {
	require.Len(t, CallRel32(0), 5)
}

func TestMovqXmmMemRejectsRbpBase(t *testing.T) {
	_, err := MovqXmmMem(0, RBP, 0)
	require.Error(t, err)
	require.IsType(t, &core.UnsupportedEncoding{}, err)
}

func TestMovqXmmMemRejectsR8Base(t *testing.T) {
	_, err := MovqXmmMem(0, R9, 0)
	require.Error(t, err)
}

func TestMovqXmmMemAcceptsRbxBase(t *testing.T) {
	buf, err := MovqXmmMem(0, RBX, 8)
	require.NoError(t, err)
	require.Equal(t, byte(0xF3), buf[0])
}

func TestCmpsdMemAppendsImmediate(t *testing.T) {
	buf, err := CmpsdMem(0, RSP, 0, 1)
	require.NoError(t, err)
	require.Equal(t, byte(1), buf[len(buf)-1])
}

func TestSqrtsdRRIsRegisterForm(t *testing.T) {
	buf := SqrtsdRR(0, 0)
	require.Equal(t, []byte{0xF2, 0x0F, 0x51, modrm(0b11, 0, 0)}, buf)
}

func TestAndpdRR(t *testing.T) {
	buf := AndpdRR(0, 7)
	require.Equal(t, []byte{0x66, 0x0F, 0x54, modrm(0b11, 0, 7)}, buf)
}

func TestMulsdRR(t *testing.T) {
	buf := MulsdRR(0, 1)
	require.Equal(t, []byte{0xF2, 0x0F, 0x59, modrm(0b11, 0, 1)}, buf)
}

func TestMovImm32Length(t *testing.T) {
	require.Len(t, MovImm32(RAX, 0x3c), 7)
}

func TestLeaRipRel32Length(t *testing.T) {
	require.Len(t, LeaRipRel32(RSI, 0), 7)
}
