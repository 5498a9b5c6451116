// Package stdlib loads the prebuilt runtime support binary that every
// compiled program links against for "Invest"/"ShowBalance"/"Txt" I/O, per
// §4.9: a tiny ELF64 image whose code segment starts with a small table of
// 8-byte entry offsets.
package stdlib

import (
	"encoding/binary"
	"os"

	"github.com/moneylang/moneylang/internal/core"
	"github.com/moneylang/moneylang/internal/elfimg"
	"github.com/moneylang/moneylang/internal/nametable"
)

// reserved names the stdlib image's code segment exports, in the same order
// as the entry-offset words at the start of the segment, and the argument
// count each takes on Money-lang's stack-argument calling convention
// (__stdlib_out_text's two arguments travel in rsi/rdx instead, hence 0).
var reservedFuncs = []struct {
	name      string
	argsCount int
}{
	{"__stdlib_out", 1},
	{"__stdlib_in", 0},
	{"__stdlib_out_text", 0},
}

// Load reads the ELF image at path, extracts its code segment, and writes
// the resolved entry offsets into names under the reserved symbol names.
// withText also expects and resolves the third "__stdlib_out_text" word;
// when false, only the first two reserved names are inserted.
func Load(path string, names *nametable.Table, withText bool) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.FileError{Path: path, Err: err}
	}

	phOff, phEntSize, phNum, err := elfimg.ParseHeader(data)
	if err != nil {
		return nil, err
	}
	if phNum < 2 {
		return nil, &core.FormatError{Msg: "stdlib image has no code segment"}
	}
	codePhdr, err := elfimg.ParsePhdr(data, phOff+uint64(phEntSize))
	if err != nil {
		return nil, err
	}
	if codePhdr.Off+codePhdr.FileSz > uint64(len(data)) {
		return nil, &core.FormatError{Msg: "stdlib code segment extends past end of file"}
	}

	seg := make([]byte, codePhdr.FileSz)
	copy(seg, data[codePhdr.Off:codePhdr.Off+codePhdr.FileSz])

	wantWords := 2
	if withText {
		wantWords = 3
	}
	if len(seg) < wantWords*8 {
		return nil, &core.FormatError{Msg: "stdlib code segment too short for its entry-offset table"}
	}

	count := 2
	if withText {
		count = 3
	}
	// Entry offsets are absolute positions within this segment, but the
	// generated code that calls them is placed after it and numbered from
	// 0 (internal/lowering's StartOffset is generated-code-relative).
	// Bias by -stdlibSize so both sides of encodeCall's rel32 computation
	// share the same frame.
	stdlibSize := int64(len(seg))
	for i := 0; i < count; i++ {
		offset := int64(binary.LittleEndian.Uint64(seg[i*8:i*8+8])) - stdlibSize
		if err := insertReserved(names, reservedFuncs[i].name, reservedFuncs[i].argsCount, offset); err != nil {
			return nil, err
		}
	}

	return seg, nil
}

func insertReserved(names *nametable.Table, name string, argsCount int, addr int64) error {
	id, err := names.Insert(name)
	if err != nil {
		return err
	}
	names.MarkFunc(id, argsCount)
	names.SetAddress(id, addr)
	return nil
}
