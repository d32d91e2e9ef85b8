package wasmbin

import "bytes"

const (
	sectionMemory byte = 0x05
	sectionExport byte = 0x07

	externMemory byte = 0x02

	limitsNoMax byte = 0x00
	limitsMax   byte = 0x01
)

var header = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
}

// Writer provides buffered writing utilities for WASM binary encoding.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) WriteU32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteName writes a length-prefixed UTF-8 name.
func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *Writer) section(id byte, body *Writer) {
	w.Byte(id)
	w.WriteU32(uint32(len(body.Bytes())))
	w.WriteBytes(body.Bytes())
}

// MemoryModule returns a module with a single memory of minPages pages
// exported under name. A maxPages of zero leaves the memory unbounded.
func MemoryModule(name string, minPages, maxPages uint32) []byte {
	var w Writer
	w.WriteBytes(header)

	var mem Writer
	mem.WriteU32(1)
	if maxPages == 0 {
		mem.Byte(limitsNoMax)
		mem.WriteU32(minPages)
	} else {
		mem.Byte(limitsMax)
		mem.WriteU32(minPages)
		mem.WriteU32(maxPages)
	}
	w.section(sectionMemory, &mem)

	var exp Writer
	exp.WriteU32(1)
	exp.WriteName(name)
	exp.Byte(externMemory)
	exp.WriteU32(0)
	w.section(sectionExport, &exp)

	return w.Bytes()
}
