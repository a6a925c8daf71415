package tokenhal

import (
	"encoding/hex"

	"github.com/northvolt/go-tokenhal/pkg/fm11"
	"github.com/northvolt/go-tokenhal/pkg/lfsdev"
	"github.com/northvolt/go-tokenhal/pkg/optr"
)

// Logger receives trace output. A *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...interface{})
}

type discard struct{}

func (discard) Printf(string, ...interface{}) {}

// logger returns Debug, or a logger dropping everything when it is unset.
func (c *Config) logger() Logger {
	if c.Debug != nil {
		return c.Debug
	}
	return discard{}
}

// hexDump renders as `hexdump -C` output on its own lines. Formatting is
// deferred until a logger prints it.
type hexDump []byte

func (h hexDump) String() string {
	return "\n" + hex.Dump(h) + "\n"
}

// flashDebug traces the flash controller.
type flashDebug struct {
	id   string
	l    Logger
	next lfsdev.Flash
}

var _ lfsdev.Flash = (*flashDebug)(nil)

func (h *flashDebug) ReadAt(p []byte, addr uint32) error {
	h.l.Printf("%5s >>  read 0x%08x(%d)", h.id, addr, len(p))
	err := h.next.ReadAt(p, addr)
	h.l.Printf("%5s <<  read %+v", h.id, err)
	return err
}

func (h *flashDebug) Unlock() error {
	h.l.Printf("%5s >>  unlock", h.id)
	err := h.next.Unlock()
	h.l.Printf("%5s <<  unlock %#v", h.id, err)
	return err
}

func (h *flashDebug) Lock() error {
	h.l.Printf("%5s >>  lock", h.id)
	err := h.next.Lock()
	h.l.Printf("%5s <<  lock %#v", h.id, err)
	return err
}

func (h *flashDebug) Program(addr uint32, chunk []byte) error {
	h.l.Printf("%5s >>  program 0x%08x", h.id, addr)
	if len(chunk) > 0 {
		h.l.Printf("%s", hexDump(chunk))
	}
	err := h.next.Program(addr, chunk)
	h.l.Printf("%5s <<  program %+v", h.id, err)
	return err
}

func (h *flashDebug) ErasePage(bank lfsdev.Bank, page uint32) error {
	h.l.Printf("%5s >>  erase %s page %d", h.id, bank, page)
	err := h.next.ErasePage(bank, page)
	h.l.Printf("%5s <<  erase %+v", h.id, err)
	return err
}

func (h *flashDebug) OptionBytes() optr.OPTR {
	o := h.next.OptionBytes()
	h.l.Printf("%5s <>  optr 0x%08x swap=%t", h.id, o.Bits, o.SwapBank())
	return o
}

func (h *flashDebug) DisableICache() error {
	err := h.next.DisableICache()
	h.l.Printf("%5s <>  icache off %#v", h.id, err)
	return err
}

func (h *flashDebug) EnableICache() error {
	err := h.next.EnableICache()
	h.l.Printf("%5s <>  icache on %#v", h.id, err)
	return err
}

// eepromDebug traces the NFC chip EEPROM.
type eepromDebug struct {
	id   string
	l    Logger
	next fm11.EEPROM
}

var _ fm11.EEPROM = (*eepromDebug)(nil)

func (h *eepromDebug) ReadEEPROM(addr uint16, p []byte) error {
	h.l.Printf("%5s >>  recv 0x%04x(%d)", h.id, addr, len(p))
	err := h.next.ReadEEPROM(addr, p)
	h.l.Printf("%5s <<  recv %+v", h.id, err)
	if err == nil && len(p) > 0 {
		h.l.Printf("%s", hexDump(p))
	}
	return err
}

func (h *eepromDebug) WriteEEPROM(addr uint16, p []byte) error {
	h.l.Printf("%5s >>  send 0x%04x", h.id, addr)
	if len(p) > 0 {
		h.l.Printf("%s", hexDump(p))
	}
	err := h.next.WriteEEPROM(addr, p)
	h.l.Printf("%5s <<  send %+v", h.id, err)
	return err
}

// DebugEEPROM returns e with every access traced to l. A nil logger returns
// e unchanged.
func DebugEEPROM(e fm11.EEPROM, l Logger) fm11.EEPROM {
	if l == nil {
		return e
	}
	return &eepromDebug{"fm11", l, e}
}
