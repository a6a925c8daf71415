package lfsdev

import (
	"errors"
	"fmt"

	"github.com/northvolt/go-tokenhal/pkg/optr"
)

// Blank is the value of an erased flash byte.
const Blank = 0xff

// ChunkSize is the double-word programmed by MemFlash in one operation.
const ChunkSize = 8

var (
	errLocked     = errors.New("lfsdev: flash is locked")
	errNotErased  = errors.New("lfsdev: programming a non-erased double-word")
	errAlignment  = errors.New("lfsdev: unaligned double-word")
	errOutOfFlash = errors.New("lfsdev: address outside flash")
)

// MemFlash is a simulated dual-bank flash controller.
//
// Contents are kept per physical bank, so changing the swap flag changes
// which bank is visible at the flash base, as it does after a reset on the
// device.
type MemFlash struct {
	layout Layout
	banks  [2][]byte
	optr   optr.OPTR
	locked bool
	icache bool

	// FailProgram, FailErase and FailICache inject hardware faults when set.
	FailProgram func(addr uint32) error
	FailErase   func(bank Bank, page uint32) error
	FailICache  func(enable bool) error
}

var _ Flash = (*MemFlash)(nil)

// NewMemFlash returns an erased, locked flash.
func NewMemFlash(layout Layout, o optr.OPTR) *MemFlash {
	f := &MemFlash{
		layout: layout,
		optr:   o,
		locked: true,
		icache: true,
	}
	for i := range f.banks {
		f.banks[i] = make([]byte, layout.BankSize)
		for j := range f.banks[i] {
			f.banks[i][j] = Blank
		}
	}
	return f
}

// physical returns the bank storage and offset of addr.
func (f *MemFlash) physical(addr uint32, n int) ([]byte, uint32, error) {
	l := f.layout
	if addr < l.FlashBase || uint64(addr)+uint64(n) > uint64(l.FlashBase)+uint64(l.Size()) {
		return nil, 0, fmt.Errorf("%w: 0x%08x", errOutOfFlash, addr)
	}
	bank := l.Bank(addr, f.optr.SwapBank())
	off := (addr - l.FlashBase) % l.BankSize
	if uint64(off)+uint64(n) > uint64(l.BankSize) {
		return nil, 0, fmt.Errorf("%w: 0x%08x crosses banks", errOutOfFlash, addr)
	}
	return f.banks[bank-1], off, nil
}

func (f *MemFlash) ReadAt(p []byte, addr uint32) error {
	mem, off, err := f.physical(addr, len(p))
	if err != nil {
		return err
	}
	copy(p, mem[off:])
	return nil
}

func (f *MemFlash) Unlock() error {
	f.locked = false
	return nil
}

func (f *MemFlash) Lock() error {
	f.locked = true
	return nil
}

// Locked reports whether the programming control path is closed.
func (f *MemFlash) Locked() bool {
	return f.locked
}

func (f *MemFlash) Program(addr uint32, chunk []byte) error {
	if f.locked {
		return errLocked
	}
	if len(chunk) != ChunkSize || addr%ChunkSize != 0 {
		return errAlignment
	}
	if f.FailProgram != nil {
		if err := f.FailProgram(addr); err != nil {
			return err
		}
	}
	mem, off, err := f.physical(addr, len(chunk))
	if err != nil {
		return err
	}
	for _, b := range mem[off : off+ChunkSize] {
		if b != Blank {
			return fmt.Errorf("%w: 0x%08x", errNotErased, addr)
		}
	}
	copy(mem[off:], chunk)
	return nil
}

func (f *MemFlash) ErasePage(bank Bank, page uint32) error {
	if f.locked {
		return errLocked
	}
	if bank != Bank1 && bank != Bank2 {
		return fmt.Errorf("lfsdev: invalid %v", bank)
	}
	if (page+1)*f.layout.PageSize > f.layout.BankSize {
		return fmt.Errorf("lfsdev: page %d outside %v", page, bank)
	}
	if f.FailErase != nil {
		if err := f.FailErase(bank, page); err != nil {
			return err
		}
	}
	mem := f.banks[bank-1][page*f.layout.PageSize : (page+1)*f.layout.PageSize]
	for i := range mem {
		mem[i] = Blank
	}
	return nil
}

func (f *MemFlash) OptionBytes() optr.OPTR {
	return f.optr
}

// SetOptionBytes replaces the option register.
func (f *MemFlash) SetOptionBytes(o optr.OPTR) {
	f.optr = o
}

func (f *MemFlash) DisableICache() error {
	if f.FailICache != nil {
		if err := f.FailICache(false); err != nil {
			return err
		}
	}
	f.icache = false
	return nil
}

func (f *MemFlash) EnableICache() error {
	if f.FailICache != nil {
		if err := f.FailICache(true); err != nil {
			return err
		}
	}
	f.icache = true
	return nil
}

// ICacheEnabled reports whether the instruction cache is on.
func (f *MemFlash) ICacheEnabled() bool {
	return f.icache
}
