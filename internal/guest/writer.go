package guest

import (
	"bytes"
)

// writer provides buffered writing utilities for WASM binary encoding.
type writer struct {
	buf bytes.Buffer
}

func (w *writer) bytes() []byte {
	return w.buf.Bytes()
}

func (w *writer) byte(b byte) {
	w.buf.WriteByte(b)
}

func (w *writer) write(data []byte) {
	w.buf.Write(data)
}

// u32 writes an unsigned LEB128 encoded uint32.
func (w *writer) u32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			return
		}
	}
}

// s32 writes a signed LEB128 encoded int32.
func (w *writer) s32(v int32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			w.buf.WriteByte(b)
			return
		}
		w.buf.WriteByte(b | 0x80)
	}
}

// name writes a length-prefixed UTF-8 string.
func (w *writer) name(s string) {
	w.u32(uint32(len(s))) //nolint:gosec // G115: names are short
	w.buf.WriteString(s)
}

// section writes a section with its id and size prefix.
func (w *writer) section(id byte, content []byte) {
	w.byte(id)
	w.u32(uint32(len(content))) //nolint:gosec // G115: sections are small
	w.write(content)
}
