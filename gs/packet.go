package gs

import (
	"encoding/binary"
	"math"
)

// PacketWriter appends GIF tags and data blocks to a byte slice.
// It does not check that the blocks written match the preceding tag.
type PacketWriter struct {
	buf []byte
}

// NewPacketWriter creates a writer with room for sizeHint bytes.
func NewPacketWriter(sizeHint int) *PacketWriter {
	return &PacketWriter{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the packet written so far.
func (w *PacketWriter) Bytes() []byte { return w.buf }

// Len returns the number of bytes written.
func (w *PacketWriter) Len() int { return len(w.buf) }

// Reset discards the written data, keeping the buffer.
func (w *PacketWriter) Reset() { w.buf = w.buf[:0] }

// Tag appends a tag.
func (w *PacketWriter) Tag(t Tag) *PacketWriter {
	b := t.Bytes()
	w.buf = append(w.buf, b[:]...)
	return w
}

// Raw appends a 128-bit PACKED block given as two 64-bit halves.
func (w *PacketWriter) Raw(lo, hi uint64) *PacketWriter {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, lo)
	w.buf = binary.LittleEndian.AppendUint64(w.buf, hi)
	return w
}

// Reg appends a 64-bit REGLIST block.
func (w *PacketWriter) Reg(v uint64) *PacketWriter {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

// AD appends a PACKED A+D block writing value to addr.
func (w *PacketWriter) AD(addr Address, value uint64) *PacketWriter {
	return w.Raw(value, uint64(addr))
}

// ST appends a PACKED ST block.
func (w *PacketWriter) ST(s, t, q float32) *PacketWriter {
	lo := uint64(math.Float32bits(s)) | uint64(math.Float32bits(t))<<32
	return w.Raw(lo, uint64(math.Float32bits(q)))
}

// RGBAQ appends a PACKED RGBAQ block.
func (w *PacketWriter) RGBAQ(r, g, b, a uint8) *PacketWriter {
	return w.Raw(uint64(r)|uint64(g)<<32, uint64(b)|uint64(a)<<32)
}

// XYZF2 appends a PACKED XYZF2 block with integer coordinates. X and Y are
// 12.4 fixed point. noDraw sets ADC, which suppresses the primitive kick.
func (w *PacketWriter) XYZF2(x, y, z uint32, fog uint8, noDraw bool) *PacketWriter {
	lo := uint64(x) | uint64(y)<<32
	hi := uint64(z&0xffffff)<<4 | uint64(fog)<<36
	if noDraw {
		hi |= 1 << 47
	}
	return w.Raw(lo, hi)
}

// XYZF2Float appends a PACKED XYZF2 block in the floating point layout
// some microcode emits: X and Y in pixels, Z as a float.
func (w *PacketWriter) XYZF2Float(x, y, z float32, fog uint8, noDraw bool) *PacketWriter {
	lo := uint64(math.Float32bits(x)) | uint64(math.Float32bits(y))<<32
	hi := uint64(math.Float32bits(z)) | uint64(fog)<<36
	if noDraw {
		hi |= 1 << 47
	}
	return w.Raw(lo, hi)
}
