// Package gs describes the wire format of GIF packets and the subset of
// Graphics Synthesizer registers that a captured command stream writes.
//
// # Packets
//
// A GIF packet is a sequence of 16-byte tags, each followed by NREG x NLOOP
// data blocks. PACKED tags carry 16-byte blocks whose meaning is selected by
// the tag's register descriptors; REGLIST tags carry raw 64-bit register
// values, 8 bytes per block. The packet ends after the data of the tag whose
// EOP bit is set.
//
//	tag, err := gs.ParseTag(data)
//	if err != nil {
//	    return err
//	}
//	for loop := 0; loop < tag.NLoop(); loop++ {
//	    for reg := 0; reg < tag.NReg(); reg++ {
//	        switch tag.Reg(reg) { ... }
//	    }
//	}
//
// # Registers
//
// Register values are plain uint64 types (Prim, Test, Alpha, ...) with
// accessor methods for their bitfields. DrawMode packs the state that the
// renderers derive from those registers into a single comparable word.
//
// PacketWriter builds packets in the same format; it is used by tests and by
// the replay tool's synthetic scene.
package gs
