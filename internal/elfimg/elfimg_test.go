package elfimg

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildLayoutMatchesSpecConstants(t *testing.T) {
	code := []byte{0x90, 0x90, 0x90, 0x90}
	b := NewBuilder()
	b.SetCode(code)
	b.SetEntry(CodeVAddr + 2)
	out := b.Build()

	require.Equal(t, byte(0x7f), out[0])
	require.Equal(t, byte('E'), out[1])
	require.Equal(t, byte('L'), out[2])
	require.Equal(t, byte('F'), out[3])
	require.Equal(t, byte(elfClass64), out[4])

	require.Len(t, out, HeaderRegion+len(code))
	require.Equal(t, code, out[HeaderRegion:])
}

func TestBuildTwoProgramHeaders(t *testing.T) {
	b := NewBuilder()
	b.SetCode([]byte{0x90})
	out := b.Build()

	phOff, phEntSize, phNum, err := ParseHeader(out)
	require.NoError(t, err)
	require.EqualValues(t, headerSize64, phOff)
	require.EqualValues(t, phdrSize64, phEntSize)
	require.EqualValues(t, 2, phNum)

	p0, err := ParsePhdr(out, phOff)
	require.NoError(t, err)
	require.EqualValues(t, pfR, p0.Flags)
	require.EqualValues(t, HeaderVAddr, p0.VAddr)
	require.EqualValues(t, HeaderRegion, p0.FileSz)

	p1, err := ParsePhdr(out, phOff+phdrSize64)
	require.NoError(t, err)
	require.EqualValues(t, pfR|pfX, p1.Flags)
	require.EqualValues(t, CodeVAddr, p1.VAddr)
	require.EqualValues(t, HeaderRegion, p1.Off)
	require.EqualValues(t, 1, p1.FileSz)
}

func TestParseHeaderRejectsBadMagic(t *testing.T) {
	_, _, _, err := ParseHeader(make([]byte, 64))
	require.Error(t, err)
}
