package stdlib

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/moneylang/moneylang/internal/elfimg"
	"github.com/moneylang/moneylang/internal/nametable"
)

// fakeStdlibImage builds a synthetic stdlib image whose entry-offset table
// holds raw in-segment offsets in word order (out, in, out_text), matching
// what Load expects to read before it biases them by -stdlibSize.
func fakeStdlibImage(t *testing.T, outOff, inOff, textOff int64, withText bool) string {
	t.Helper()
	words := 2
	if withText {
		words = 3
	}
	code := make([]byte, words*8+4) // entry table + a few filler bytes of "code"
	binary.LittleEndian.PutUint64(code[0:8], uint64(outOff))
	binary.LittleEndian.PutUint64(code[8:16], uint64(inOff))
	if withText {
		binary.LittleEndian.PutUint64(code[16:24], uint64(textOff))
	}

	b := elfimg.NewBuilder()
	b.SetCode(code)
	b.SetEntry(elfimg.CodeVAddr)
	data := b.Build()

	path := filepath.Join(t.TempDir(), "stdlib.bin")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadResolvesInAndOutOffsets(t *testing.T) {
	path := fakeStdlibImage(t, 40, 10, 0, false)
	names := nametable.New(16, 256)
	stdlibSize := int64(2*8 + 4)

	seg, err := Load(path, names, false)
	require.NoError(t, err)
	require.NotEmpty(t, seg)

	inId, ok := names.Lookup("__stdlib_in")
	require.True(t, ok)
	require.EqualValues(t, 10-stdlibSize, names.Get(inId).Address)
	require.Equal(t, 0, names.Get(inId).ArgsCount)

	outId, ok := names.Lookup("__stdlib_out")
	require.True(t, ok)
	require.EqualValues(t, 40-stdlibSize, names.Get(outId).Address)
	require.Equal(t, 1, names.Get(outId).ArgsCount)

	_, ok = names.Lookup("__stdlib_out_text")
	require.False(t, ok)
}

func TestLoadWithTextResolvesThirdOffset(t *testing.T) {
	path := fakeStdlibImage(t, 40, 10, 90, true)
	names := nametable.New(16, 256)
	stdlibSize := int64(3*8 + 4)

	_, err := Load(path, names, true)
	require.NoError(t, err)

	textId, ok := names.Lookup("__stdlib_out_text")
	require.True(t, ok)
	require.EqualValues(t, 90-stdlibSize, names.Get(textId).Address)
}

func TestLoadMissingFileIsFileError(t *testing.T) {
	names := nametable.New(16, 256)
	_, err := Load(filepath.Join(t.TempDir(), "missing.bin"), names, false)
	require.Error(t, err)
}
