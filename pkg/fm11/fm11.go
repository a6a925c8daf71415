package fm11

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

// Size is the EEPROM size in bytes.
const Size = 1024

// SPI command bytes. The two high address bits go in the command byte.
const (
	cmdWriteEEPROM = 0x40
	cmdReadEEPROM  = 0x60

	addrHighMask = 0x03
)

// unlockFrame enables the next EEPROM write.
var unlockFrame = [2]byte{0xce, 0x55}

// DefaultClock is the SPI clock used by Connect.
const DefaultClock = 1 * physic.MegaHertz

// frameDelay is the time the chip needs after chip select goes low.
const frameDelay = 100 * time.Microsecond

var (
	// ErrWindow is returned for accesses outside the EEPROM window.
	ErrWindow = errors.New("fm11: address outside eeprom window")
	// ErrPayload is returned for writes larger than the window allows.
	ErrPayload = errors.New("fm11: payload too large")
)

// Window bounds the EEPROM addresses reachable from the host.
type Window struct {
	// Low is the first writable address.
	Low uint16
	// High is the last address.
	High uint16
	// MaxPayload is the largest write.
	MaxPayload int
}

// DefaultWindow returns the window of the user memory area.
func DefaultWindow() Window {
	return Window{
		Low:        0x000c,
		High:       0x03cf,
		MaxPayload: 16,
	}
}

// CheckRead validates reading n bytes at addr. Reads may start below Low.
func (w Window) CheckRead(addr uint16, n int) error {
	if n < 0 || int(addr)+n-1 > int(w.High) {
		return fmt.Errorf("%w: read %d bytes at 0x%04x", ErrWindow, n, addr)
	}
	return nil
}

// CheckWrite validates writing n bytes at addr.
func (w Window) CheckWrite(addr uint16, n int) error {
	if n > w.MaxPayload {
		return fmt.Errorf("%w: %d bytes", ErrPayload, n)
	}
	if addr < w.Low || int(addr)+n-1 > int(w.High) {
		return fmt.Errorf("%w: write %d bytes at 0x%04x", ErrWindow, n, addr)
	}
	return nil
}

// EEPROM is the read/write primitive of the chip.
type EEPROM interface {
	ReadEEPROM(addr uint16, p []byte) error
	WriteEEPROM(addr uint16, p []byte) error
}

// Dev is an FM11 chip on an SPI bus.
type Dev struct {
	conn   spi.Conn
	cs     gpio.PinOut
	window Window

	// Sleep waits between chip select and the first clock edge.
	Sleep func(time.Duration)
}

var _ EEPROM = (*Dev)(nil)

// New returns a chip on conn selected by cs. The chip select line is driven
// high (inactive).
func New(conn spi.Conn, cs gpio.PinOut, w Window) (*Dev, error) {
	if err := cs.Out(gpio.High); err != nil {
		return nil, fmt.Errorf("fm11: chip select: %w", err)
	}
	return &Dev{conn: conn, cs: cs, window: w, Sleep: time.Sleep}, nil
}

// Connect opens a connection on port at DefaultClock in mode 0.
func Connect(port spi.Port, cs gpio.PinOut, w Window) (*Dev, error) {
	conn, err := port.Connect(DefaultClock, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("fm11: failed to connect: %w", err)
	}
	return New(conn, cs, w)
}

// Window returns the window enforced by the chip.
func (d *Dev) Window() Window {
	return d.window
}

// ReadEEPROM reads len(p) bytes at addr.
func (d *Dev) ReadEEPROM(addr uint16, p []byte) error {
	if err := d.window.CheckRead(addr, len(p)); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	buf := make([]byte, 2+len(p))
	buf[0] = cmdReadEEPROM | byte(addr>>8)&addrHighMask
	buf[1] = byte(addr)
	err := d.frame(func() error {
		return d.conn.Tx(buf, buf)
	})
	if err != nil {
		return err
	}
	copy(p, buf[2:])
	return nil
}

// WriteEEPROM writes p at addr.
func (d *Dev) WriteEEPROM(addr uint16, p []byte) error {
	if err := d.window.CheckWrite(addr, len(p)); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}

	err := d.frame(func() error {
		return d.conn.Tx(unlockFrame[:], nil)
	})
	if err != nil {
		return err
	}

	buf := make([]byte, 0, 2+len(p))
	buf = append(buf, cmdWriteEEPROM|byte(addr>>8)&addrHighMask, byte(addr))
	buf = append(buf, p...)
	return d.frame(func() error {
		return d.conn.Tx(buf, nil)
	})
}

// frame runs tx with chip select asserted. Chip select is released on every
// path.
func (d *Dev) frame(tx func() error) (err error) {
	if err = d.cs.Out(gpio.Low); err != nil {
		return fmt.Errorf("fm11: chip select: %w", err)
	}
	defer func() {
		if csErr := d.cs.Out(gpio.High); csErr != nil && err == nil {
			err = fmt.Errorf("fm11: chip select: %w", csErr)
		}
	}()
	d.Sleep(frameDelay)
	if err = tx(); err != nil {
		return fmt.Errorf("fm11: spi: %w", err)
	}
	return nil
}
