package optr

import (
	"encoding/binary"
	"encoding/json"
	"errors"
)

// Size is the size of the register in bytes.
const Size = 4

// Bit positions.
const (
	swapBankBit = 20
	dualBankBit = 21
	nBoot0Bit   = 27
)

// RDP is the readout protection level.
type RDP uint8

// Readout protection levels. Any other value is level 1.
const (
	RDPLevel0   RDP = 0xaa
	RDPLevel0_5 RDP = 0x55
	RDPLevel2   RDP = 0xcc
)

func (r RDP) String() string {
	switch r {
	case RDPLevel0:
		return "level 0"
	case RDPLevel0_5:
		return "level 0.5"
	case RDPLevel2:
		return "level 2"
	default:
		return "level 1"
	}
}

// OPTR is the raw option register.
type OPTR struct {
	// Bits consists of:
	// * RDP        8
	// * BORLevel   3
	// * ...        9
	// * SwapBank   1
	//   1 bank 2 is mapped at the flash base address
	// * DualBank   1
	// * ...        5
	// * nBOOT0     1
	// * ...        4
	Bits uint32
}

type optrBits struct {
	RDP      string `json:"rdp"`
	BORLevel uint8  `json:"bor_level"`
	SwapBank bool   `json:"swap_bank"`
	DualBank bool   `json:"dual_bank"`
	NBoot0   bool   `json:"nboot0"`
}

// Default is the factory value of the register.
var Default = OPTR{Bits: 0x0fefffaa}

func (o OPTR) RDP() RDP {
	return RDP(o.Bits & 0xff)
}

func (o OPTR) BORLevel() uint8 {
	return uint8(o.Bits>>8) & 0x07
}

// SwapBank reports whether the two flash banks are logically exchanged.
func (o OPTR) SwapBank() bool {
	return o.Bits&(1<<swapBankBit) != 0
}

func (o OPTR) DualBank() bool {
	return o.Bits&(1<<dualBankBit) != 0
}

func (o OPTR) NBoot0() bool {
	return o.Bits&(1<<nBoot0Bit) != 0
}

// WithSwapBank returns a copy of o with the swap bank flag set to swap.
func (o OPTR) WithSwapBank(swap bool) OPTR {
	if swap {
		o.Bits |= 1 << swapBankBit
	} else {
		o.Bits &^= 1 << swapBankBit
	}
	return o
}

func (o OPTR) MarshalJSON() ([]byte, error) {
	return json.Marshal(optrBits{
		RDP:      o.RDP().String(),
		BORLevel: o.BORLevel(),
		SwapBank: o.SwapBank(),
		DualBank: o.DualBank(),
		NBoot0:   o.NBoot0(),
	})
}

// Unmarshal decodes the little-endian register value in data.
func Unmarshal(data []byte, o *OPTR) error {
	if len(data) != Size {
		return errors.New("optr: invalid register size")
	}
	o.Bits = binary.LittleEndian.Uint32(data)
	return nil
}

// Marshal encodes the register little-endian.
func Marshal(o OPTR) []byte {
	return binary.LittleEndian.AppendUint32(make([]byte, 0, Size), o.Bits)
}
