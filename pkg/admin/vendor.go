package admin

import (
	"bytes"
	"fmt"
	"time"

	"github.com/northvolt/go-tokenhal/pkg/fm11"
	"github.com/northvolt/go-tokenhal/pkg/spin"
)

// Instructions served by Vendor.
const (
	InsReadVersion    = 0x31
	InsNFCEnable      = 0x45
	InsVendorSpecific = 0xff
)

// P1 values of InsReadVersion.
const (
	VersionFirmware  = 0x00
	VersionHWVariant = 0x01
)

// P1 values of InsVendorSpecific. VendorStackTest is reserved and has no
// handler.
const (
	VendorNFCSet    = 0x01
	VendorNFCGet    = 0x02
	VendorStackTest = 0x03
)

// Identity of the device.
const (
	DefaultHWVariant = "Canokey-STM32U385KG"
	DefaultVersion   = "3.0.3-O"
)

// verifyDelay is the time the chip needs before a written range reads back.
const verifyDelay = 10 * time.Millisecond

// NFC switches the NFC interface.
type NFC interface {
	NFCEnabled() bool
	SetNFCEnabled(enabled bool) error
}

// NFCState is an NFC switch held in memory.
type NFCState struct {
	w spin.Word
}

func (s *NFCState) NFCEnabled() bool {
	return s.w.Load() != 0
}

func (s *NFCState) SetNFCEnabled(enabled bool) error {
	var v uint32
	if enabled {
		v = 1
	}
	for {
		old := s.w.Load()
		if spin.CompareAndSwap(&s.w, old, v) {
			return nil
		}
	}
}

// Vendor holds the vendor command handlers.
type Vendor struct {
	EEPROM fm11.EEPROM
	NFC    NFC
	Window fm11.Window

	// Delay blocks the caller. It defaults to time.Sleep.
	Delay func(time.Duration)

	HWVariant string
	Version   string
}

// NewVendor returns handlers serving eeprom within the default window.
func NewVendor(eeprom fm11.EEPROM, nfc NFC) *Vendor {
	return &Vendor{
		EEPROM:    eeprom,
		NFC:       nfc,
		Window:    fm11.DefaultWindow(),
		Delay:     time.Sleep,
		HWVariant: DefaultHWVariant,
		Version:   DefaultVersion,
	}
}

// Register installs the vendor handlers on r.
func (v *Vendor) Register(r *Router) {
	r.Handle(InsReadVersion, P1Table{
		VersionFirmware:  v.ReadVersion,
		VersionHWVariant: v.ReadHWVariant,
	}.Serve)
	r.Handle(InsNFCEnable, v.NFCEnable)
	r.Handle(InsVendorSpecific, P1Table{
		VendorNFCSet: v.NFCSet,
		VendorNFCGet: v.NFCGet,
	}.Serve)
}

// ReadHWVariant returns the hardware variant string truncated to Le.
func (v *Vendor) ReadHWVariant(req *Request, rsp *Response) error {
	rsp.writeTruncated([]byte(v.HWVariant), req.Le)
	return nil
}

// ReadVersion returns the firmware version string truncated to Le.
func (v *Vendor) ReadVersion(req *Request, rsp *Response) error {
	rsp.writeTruncated([]byte(v.Version), req.Le)
	return nil
}

// NFCEnable queries (P1 0) or enables (P1 1) the NFC interface. Enabling
// requires a validated PIN.
func (v *Vendor) NFCEnable(req *Request, rsp *Response) error {
	if req.P1 > 0x01 || req.P2 != 0x00 {
		return StatusWrongP1P2
	}
	if req.Lc() != 0 {
		return StatusWrongLength
	}

	if req.P1 == 0x00 {
		var b byte
		if v.NFC.NFCEnabled() {
			b = 1
		}
		rsp.writeTruncated([]byte{b}, 1)
		return nil
	}
	if !req.PINValidated {
		return StatusSecurityStatusNotSatisfied
	}
	if err := v.NFC.SetNFCEnabled(true); err != nil {
		return fmt.Errorf("%w: %v", StatusUnableToProcess, err)
	}
	return nil
}

// NFCSet writes to the NFC chip EEPROM. The data holds a big-endian
// address followed by the bytes to write. P2 1 reads the range back after
// the write and compares it.
func (v *Vendor) NFCSet(req *Request, rsp *Response) error {
	if req.P2 > 0x01 {
		return StatusWrongP1P2
	}
	if req.Lc() <= 2 || req.Lc() > v.Window.MaxPayload+2 {
		return StatusWrongLength
	}
	addr, data := splitAddr(req.Data)
	if err := v.Window.CheckWrite(addr, len(data)); err != nil {
		return fmt.Errorf("%w: %v", StatusWrongData, err)
	}

	if err := v.EEPROM.WriteEEPROM(addr, data); err != nil {
		return fmt.Errorf("%w: %v", StatusUnableToProcess, err)
	}
	if req.P2 != 0x01 {
		return nil
	}

	v.Delay(verifyDelay)
	readback := make([]byte, len(data))
	if err := v.EEPROM.ReadEEPROM(addr, readback); err != nil {
		return fmt.Errorf("%w: %v", StatusUnableToProcess, err)
	}
	if !bytes.Equal(readback, data) {
		return StatusCheckingError
	}
	return nil
}

// NFCGet reads Le bytes of the NFC chip EEPROM at the big-endian address
// held in the data.
func (v *Vendor) NFCGet(req *Request, rsp *Response) error {
	if req.Lc() != 2 {
		return StatusWrongLength
	}
	addr, _ := splitAddr(req.Data)
	if addr > v.Window.High {
		return StatusWrongData
	}
	if req.Le > rsp.Cap() {
		return StatusWrongLength
	}
	if err := v.Window.CheckRead(addr, req.Le); err != nil {
		return fmt.Errorf("%w: %v", StatusWrongData, err)
	}

	if err := v.EEPROM.ReadEEPROM(addr, rsp.buf[:req.Le]); err != nil {
		return fmt.Errorf("%w: %v", StatusUnableToProcess, err)
	}
	rsp.n = req.Le
	return nil
}

func splitAddr(data []byte) (uint16, []byte) {
	return uint16(data[0])<<8 | uint16(data[1]), data[2:]
}
