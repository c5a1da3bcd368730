package gs

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TagSize is the size of a GIF tag and of one PACKED data block.
const TagSize = 16

// Errors returned while decoding packets.
var (
	// ErrShortPacket is returned when a tag or data block runs past the
	// end of the input.
	ErrShortPacket = errors.New("gs: packet truncated")

	// ErrUnsupportedFormat is returned for IMAGE and DISABLE tags.
	ErrUnsupportedFormat = errors.New("gs: unsupported GIF tag format")
)

// Format is the FLG field of a GIF tag.
type Format uint8

// GIF tag data formats.
const (
	FormatPacked  Format = 0
	FormatRegList Format = 1
	FormatImage   Format = 2
	FormatDisable Format = 3
)

// String returns the manual's name for the format.
func (f Format) String() string {
	switch f {
	case FormatPacked:
		return "PACKED"
	case FormatRegList:
		return "REGLIST"
	case FormatImage:
		return "IMAGE"
	case FormatDisable:
		return "DISABLE"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// BlockSize returns the size in bytes of one data block in this format.
func (f Format) BlockSize() int {
	if f == FormatRegList {
		return 8
	}
	return 16
}

// Tag is a decoded GIF tag. The zero value is an empty PACKED tag.
type Tag struct {
	lo, hi uint64
}

// ParseTag decodes the tag at the start of b.
// Only PACKED and REGLIST tags are accepted.
func ParseTag(b []byte) (Tag, error) {
	if len(b) < TagSize {
		return Tag{}, fmt.Errorf("tag needs %d bytes, have %d: %w", TagSize, len(b), ErrShortPacket)
	}
	t := Tag{
		lo: binary.LittleEndian.Uint64(b[0:8]),
		hi: binary.LittleEndian.Uint64(b[8:16]),
	}
	if f := t.Format(); f != FormatPacked && f != FormatRegList {
		return Tag{}, fmt.Errorf("%v: %w", f, ErrUnsupportedFormat)
	}
	return t, nil
}

// MakeTag encodes a tag. A nil prim leaves PRE clear. Up to 16 registers
// may be given; 16 is encoded as NREG=0.
func MakeTag(format Format, nloop int, eop bool, prim *Prim, regs ...RegisterDescriptor) Tag {
	var t Tag
	t.lo = uint64(nloop) & 0x7fff
	if eop {
		t.lo |= 1 << 15
	}
	if prim != nil {
		t.lo |= 1 << 46
		t.lo |= (uint64(*prim) & 0x7ff) << 47
	}
	t.lo |= uint64(format&3) << 58
	t.lo |= uint64(len(regs)&0xf) << 60
	for i, r := range regs {
		t.hi |= uint64(r&0xf) << (4 * i)
	}
	return t
}

// NLoop returns the number of register-set repetitions.
func (t Tag) NLoop() int { return int(t.lo & 0x7fff) }

// EOP reports whether this is the last tag of the packet.
func (t Tag) EOP() bool { return t.lo&(1<<15) != 0 }

// Pre reports whether the PRIM field is valid and should be written to the
// PRIM register before the data blocks are processed.
func (t Tag) Pre() bool { return t.lo&(1<<46) != 0 }

// Prim returns the PRIM field.
func (t Tag) Prim() Prim { return Prim((t.lo >> 47) & 0x7ff) }

// Format returns the FLG field.
func (t Tag) Format() Format { return Format((t.lo >> 58) & 3) }

// NReg returns the number of register descriptors, 1 to 16.
func (t Tag) NReg() int {
	n := int(t.lo >> 60)
	if n == 0 {
		return 16
	}
	return n
}

// Reg returns the i-th register descriptor.
func (t Tag) Reg(i int) RegisterDescriptor {
	return RegisterDescriptor((t.hi >> (4 * uint(i))) & 0xf)
}

// DataSize returns the number of data bytes following the tag.
func (t Tag) DataSize() int {
	return t.NLoop() * t.NReg() * t.Format().BlockSize()
}

// Bytes returns the 16-byte encoding of the tag.
func (t Tag) Bytes() [TagSize]byte {
	var b [TagSize]byte
	binary.LittleEndian.PutUint64(b[0:8], t.lo)
	binary.LittleEndian.PutUint64(b[8:16], t.hi)
	return b
}

// String formats the tag for debug output.
func (t Tag) String() string {
	s := fmt.Sprintf("GIFtag: nloop=%d eop=%t fmt=%v nreg=%d", t.NLoop(), t.EOP(), t.Format(), t.NReg())
	if t.Pre() {
		s += " prim=" + t.Prim().String()
	}
	s += " regs=["
	for i := 0; i < t.NReg(); i++ {
		if i > 0 {
			s += " "
		}
		s += t.Reg(i).String()
	}
	return s + "]"
}
