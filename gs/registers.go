package gs

import "fmt"

// RegisterDescriptor selects how a PACKED data block is interpreted.
type RegisterDescriptor uint8

// Register descriptors as they appear in the REGS field of a tag.
const (
	RegPrim     RegisterDescriptor = 0x0
	RegRGBAQ    RegisterDescriptor = 0x1
	RegST       RegisterDescriptor = 0x2
	RegUV       RegisterDescriptor = 0x3
	RegXYZF2    RegisterDescriptor = 0x4
	RegXYZ2     RegisterDescriptor = 0x5
	RegTex0_1   RegisterDescriptor = 0x6
	RegTex0_2   RegisterDescriptor = 0x7
	RegClamp1   RegisterDescriptor = 0x8
	RegClamp2   RegisterDescriptor = 0x9
	RegFog      RegisterDescriptor = 0xa
	RegReserved RegisterDescriptor = 0xb
	RegXYZF3    RegisterDescriptor = 0xc
	RegXYZ3     RegisterDescriptor = 0xd
	RegAD       RegisterDescriptor = 0xe
	RegNop      RegisterDescriptor = 0xf
)

var registerDescriptorNames = [...]string{
	RegPrim:     "PRIM",
	RegRGBAQ:    "RGBAQ",
	RegST:       "ST",
	RegUV:       "UV",
	RegXYZF2:    "XYZF2",
	RegXYZ2:     "XYZ2",
	RegTex0_1:   "TEX0_1",
	RegTex0_2:   "TEX0_2",
	RegClamp1:   "CLAMP_1",
	RegClamp2:   "CLAMP_2",
	RegFog:      "FOG",
	RegReserved: "RESERVED",
	RegXYZF3:    "XYZF3",
	RegXYZ3:     "XYZ3",
	RegAD:       "A+D",
	RegNop:      "NOP",
}

// String returns the descriptor name.
func (r RegisterDescriptor) String() string {
	if int(r) < len(registerDescriptorNames) {
		return registerDescriptorNames[r]
	}
	return fmt.Sprintf("RegisterDescriptor(%d)", uint8(r))
}

// Address is a GS register address, the target of an A+D write.
type Address uint8

// GS register addresses.
const (
	AddrPrim       Address = 0x00
	AddrRGBAQ      Address = 0x01
	AddrST         Address = 0x02
	AddrUV         Address = 0x03
	AddrXYZF2      Address = 0x04
	AddrXYZ2       Address = 0x05
	AddrTex0_1     Address = 0x06
	AddrTex0_2     Address = 0x07
	AddrClamp1     Address = 0x08
	AddrClamp2     Address = 0x09
	AddrFog        Address = 0x0a
	AddrXYZF3      Address = 0x0c
	AddrXYZ3       Address = 0x0d
	AddrTex1_1     Address = 0x14
	AddrTex1_2     Address = 0x15
	AddrTex2_1     Address = 0x16
	AddrTex2_2     Address = 0x17
	AddrXYOffset1  Address = 0x18
	AddrXYOffset2  Address = 0x19
	AddrPrModeCont Address = 0x1a
	AddrPrMode     Address = 0x1b
	AddrTexClut    Address = 0x1c
	AddrScanMsk    Address = 0x22
	AddrMipTBP1_1  Address = 0x34
	AddrMipTBP1_2  Address = 0x35
	AddrMipTBP2_1  Address = 0x36
	AddrMipTBP2_2  Address = 0x37
	AddrTexA       Address = 0x3b
	AddrFogCol     Address = 0x3d
	AddrTexFlush   Address = 0x3f
	AddrScissor1   Address = 0x40
	AddrScissor2   Address = 0x41
	AddrAlpha1     Address = 0x42
	AddrAlpha2     Address = 0x43
	AddrDimX       Address = 0x44
	AddrDthe       Address = 0x45
	AddrColClamp   Address = 0x46
	AddrTest1      Address = 0x47
	AddrTest2      Address = 0x48
	AddrPabe       Address = 0x49
	AddrFBA1       Address = 0x4a
	AddrFBA2       Address = 0x4b
	AddrFrame1     Address = 0x4c
	AddrFrame2     Address = 0x4d
	AddrZbuf1      Address = 0x4e
	AddrZbuf2      Address = 0x4f
	AddrBitBltBuf  Address = 0x50
	AddrTrxPos     Address = 0x51
	AddrTrxReg     Address = 0x52
	AddrTrxDir     Address = 0x53
	AddrHwReg      Address = 0x54
	AddrSignal     Address = 0x60
	AddrFinish     Address = 0x61
	AddrLabel      Address = 0x62
)

var addressNames = map[Address]string{
	AddrPrim: "PRIM", AddrRGBAQ: "RGBAQ", AddrST: "ST", AddrUV: "UV",
	AddrXYZF2: "XYZF2", AddrXYZ2: "XYZ2", AddrTex0_1: "TEX0_1", AddrTex0_2: "TEX0_2",
	AddrClamp1: "CLAMP_1", AddrClamp2: "CLAMP_2", AddrFog: "FOG",
	AddrXYZF3: "XYZF3", AddrXYZ3: "XYZ3", AddrTex1_1: "TEX1_1", AddrTex1_2: "TEX1_2",
	AddrTex2_1: "TEX2_1", AddrTex2_2: "TEX2_2", AddrXYOffset1: "XYOFFSET_1",
	AddrXYOffset2: "XYOFFSET_2", AddrPrModeCont: "PRMODECONT", AddrPrMode: "PRMODE",
	AddrTexClut: "TEXCLUT", AddrScanMsk: "SCANMSK", AddrMipTBP1_1: "MIPTBP1_1",
	AddrMipTBP1_2: "MIPTBP1_2", AddrMipTBP2_1: "MIPTBP2_1", AddrMipTBP2_2: "MIPTBP2_2",
	AddrTexA: "TEXA", AddrFogCol: "FOGCOL", AddrTexFlush: "TEXFLUSH",
	AddrScissor1: "SCISSOR_1", AddrScissor2: "SCISSOR_2", AddrAlpha1: "ALPHA_1",
	AddrAlpha2: "ALPHA_2", AddrDimX: "DIMX", AddrDthe: "DTHE", AddrColClamp: "COLCLAMP",
	AddrTest1: "TEST_1", AddrTest2: "TEST_2", AddrPabe: "PABE", AddrFBA1: "FBA_1",
	AddrFBA2: "FBA_2", AddrFrame1: "FRAME_1", AddrFrame2: "FRAME_2", AddrZbuf1: "ZBUF_1",
	AddrZbuf2: "ZBUF_2", AddrBitBltBuf: "BITBLTBUF", AddrTrxPos: "TRXPOS",
	AddrTrxReg: "TRXREG", AddrTrxDir: "TRXDIR", AddrHwReg: "HWREG",
	AddrSignal: "SIGNAL", AddrFinish: "FINISH", AddrLabel: "LABEL",
}

// String returns the register name.
func (a Address) String() string {
	if name, ok := addressNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Address(0x%02x)", uint8(a))
}
