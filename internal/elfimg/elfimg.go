// Package elfimg writes the compiler's fixed ELF64 executable layout: a
// page of headers at vaddr 0x400000 followed by a single R+X code segment
// at vaddr 0x401000 holding the stdlib and the generated code back to back.
// Specialized to this exact two-segment shape rather than a general
// multi-segment builder.
package elfimg

import (
	"encoding/binary"
	"os"

	"github.com/moneylang/moneylang/internal/core"
)

const (
	elfMag0       = 0x7f
	elfMag1       = 'E'
	elfMag2       = 'L'
	elfMag3       = 'F'
	elfClass64    = 2
	elfData2LSB   = 1
	evCurrent     = 1
	elfOSABILinux = 3
	etExec        = 2
	emX8664       = 62
	ptLoad        = 1
	pfX           = 0x1
	pfW           = 0x2
	pfR           = 0x4
	headerSize64  = 64
	phdrSize64    = 56
	pageSize      = 0x1000
	HeaderVAddr   = 0x400000
	CodeVAddr     = 0x401000
	HeaderRegion  = pageSize
)

// Header64 is the ELF64 file header.
type Header64 struct {
	Ident     [16]byte
	Type      uint16
	Machine   uint16
	Version   uint32
	Entry     uint64
	PhOff     uint64
	ShOff     uint64
	Flags     uint32
	EhSize    uint16
	PhEntSize uint16
	PhNum     uint16
	ShEntSize uint16
	ShNum     uint16
	ShStrNdx  uint16
}

// Phdr64 is an ELF64 program header.
type Phdr64 struct {
	Type   uint32
	Flags  uint32
	Off    uint64
	VAddr  uint64
	PAddr  uint64
	FileSz uint64
	MemSz  uint64
	Align  uint64
}

// Builder assembles the two-segment executable image.
type Builder struct {
	entry uint64
	code  []byte
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// SetEntry sets the entry point virtual address (0x401000 + stdlibSize).
func (b *Builder) SetEntry(vaddr uint64) { b.entry = vaddr }

// SetCode sets the concatenation of stdlib bytes and generated code that
// fills the R+X segment.
func (b *Builder) SetCode(code []byte) { b.code = code }

// Build produces the final ELF binary bytes.
func (b *Builder) Build() []byte {
	out := make([]byte, 0, HeaderRegion+len(b.code))
	out = b.writeHeader(out)
	out = writePhdr(out, &Phdr64{
		Type: ptLoad, Flags: pfR,
		Off: 0, VAddr: HeaderVAddr, PAddr: HeaderVAddr,
		FileSz: HeaderRegion, MemSz: HeaderRegion, Align: pageSize,
	})
	out = writePhdr(out, &Phdr64{
		Type: ptLoad, Flags: pfR | pfX,
		Off: HeaderRegion, VAddr: CodeVAddr, PAddr: CodeVAddr,
		FileSz: uint64(len(b.code)), MemSz: uint64(len(b.code)), Align: pageSize,
	})
	for len(out) < HeaderRegion {
		out = append(out, 0)
	}
	return append(out, b.code...)
}

// Write builds the image and writes it to path with mode 0755.
func (b *Builder) Write(path string) error {
	data := b.Build()
	if err := os.WriteFile(path, data, 0755); err != nil {
		return &core.FileError{Path: path, Err: err}
	}
	return nil
}

func (b *Builder) writeHeader(out []byte) []byte {
	var hdr Header64
	hdr.Ident[0], hdr.Ident[1], hdr.Ident[2], hdr.Ident[3] = elfMag0, elfMag1, elfMag2, elfMag3
	hdr.Ident[4] = elfClass64
	hdr.Ident[5] = elfData2LSB
	hdr.Ident[6] = evCurrent
	hdr.Ident[7] = elfOSABILinux
	hdr.Type = etExec
	hdr.Machine = emX8664
	hdr.Version = evCurrent
	hdr.Entry = b.entry
	hdr.PhOff = headerSize64
	hdr.EhSize = headerSize64
	hdr.PhEntSize = phdrSize64
	hdr.PhNum = 2

	out = append(out, hdr.Ident[:]...)
	out = appendLE16(out, hdr.Type)
	out = appendLE16(out, hdr.Machine)
	out = appendLE32(out, hdr.Version)
	out = appendLE64(out, hdr.Entry)
	out = appendLE64(out, hdr.PhOff)
	out = appendLE64(out, hdr.ShOff)
	out = appendLE32(out, hdr.Flags)
	out = appendLE16(out, hdr.EhSize)
	out = appendLE16(out, hdr.PhEntSize)
	out = appendLE16(out, hdr.PhNum)
	out = appendLE16(out, hdr.ShEntSize)
	out = appendLE16(out, hdr.ShNum)
	out = appendLE16(out, hdr.ShStrNdx)
	return out
}

func writePhdr(out []byte, p *Phdr64) []byte {
	out = appendLE32(out, p.Type)
	out = appendLE32(out, p.Flags)
	out = appendLE64(out, p.Off)
	out = appendLE64(out, p.VAddr)
	out = appendLE64(out, p.PAddr)
	out = appendLE64(out, p.FileSz)
	out = appendLE64(out, p.MemSz)
	out = appendLE64(out, p.Align)
	return out
}

func appendLE16(out []byte, v uint16) []byte {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	return append(out, buf[:]...)
}

func appendLE32(out []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(out, buf[:]...)
}

func appendLE64(out []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(out, buf[:]...)
}

// ParseHeader reads just enough of an ELF64 image to locate its second
// program header (the code segment), for the stdlib loader (§4.9).
func ParseHeader(data []byte) (phOff uint64, phEntSize, phNum uint16, err error) {
	if len(data) < headerSize64 {
		return 0, 0, 0, &core.FormatError{Msg: "elf image shorter than the ELF64 header"}
	}
	if data[0] != elfMag0 || data[1] != elfMag1 || data[2] != elfMag2 || data[3] != elfMag3 {
		return 0, 0, 0, &core.FormatError{Msg: "missing ELF magic"}
	}
	phOff = binary.LittleEndian.Uint64(data[32:40])
	phEntSize = binary.LittleEndian.Uint16(data[54:56])
	phNum = binary.LittleEndian.Uint16(data[56:58])
	return phOff, phEntSize, phNum, nil
}

// ParsePhdr decodes the program header at byte offset off within data.
func ParsePhdr(data []byte, off uint64) (Phdr64, error) {
	if off+phdrSize64 > uint64(len(data)) {
		return Phdr64{}, &core.FormatError{Msg: "program header out of range"}
	}
	b := data[off:]
	return Phdr64{
		Type:   binary.LittleEndian.Uint32(b[0:4]),
		Flags:  binary.LittleEndian.Uint32(b[4:8]),
		Off:    binary.LittleEndian.Uint64(b[8:16]),
		VAddr:  binary.LittleEndian.Uint64(b[16:24]),
		PAddr:  binary.LittleEndian.Uint64(b[24:32]),
		FileSz: binary.LittleEndian.Uint64(b[32:40]),
		MemSz:  binary.LittleEndian.Uint64(b[40:48]),
		Align:  binary.LittleEndian.Uint64(b[48:56]),
	}, nil
}
