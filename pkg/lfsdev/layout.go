package lfsdev

import (
	"errors"
	"fmt"
)

// Bank identifies a physical flash bank.
type Bank int

const (
	Bank1 Bank = 1
	Bank2 Bank = 2
)

func (b Bank) String() string {
	switch b {
	case Bank1:
		return "bank1"
	case Bank2:
		return "bank2"
	default:
		return fmt.Sprintf("bank(%d)", int(b))
	}
}

// Layout describes where the filesystem lives in the flash address space.
type Layout struct {
	// FlashBase is the address of the first flash byte.
	FlashBase uint32
	// BankSize is the size of each of the two equally sized banks.
	BankSize uint32
	// PageSize is the erase granularity.
	PageSize uint32
	// FSBase is the address of block 0.
	FSBase uint32
}

// LayoutSTM32U385 is the layout of a 1 MiB dual-bank STM32U385KG with the
// filesystem in the last 64 KiB.
func LayoutSTM32U385() Layout {
	return Layout{
		FlashBase: 0x08000000,
		BankSize:  0x00080000,
		PageSize:  0x1000,
		FSBase:    0x080f0000,
	}
}

// Size returns the size of both banks.
func (l Layout) Size() uint32 {
	return 2 * l.BankSize
}

// Addr returns the physical address of offset within block.
func (l Layout) Addr(block, offset uint32) uint32 {
	return l.FSBase + block*l.PageSize + offset
}

// Page returns the index of the page holding addr within its bank.
func (l Layout) Page(addr uint32) uint32 {
	if addr < l.FlashBase+l.BankSize {
		return (addr - l.FlashBase) / l.PageSize
	}
	return (addr - (l.FlashBase + l.BankSize)) / l.PageSize
}

// Bank returns the bank holding addr. When swapped is set the bank at the
// flash base is bank 2.
func (l Layout) Bank(addr uint32, swapped bool) Bank {
	lower := addr < l.FlashBase+l.BankSize
	if lower != swapped {
		return Bank1
	}
	return Bank2
}

// Validate checks that a filesystem of count blocks fits the flash.
func (l Layout) Validate(count uint32) error {
	if l.PageSize == 0 || l.BankSize%l.PageSize != 0 {
		return errors.New("lfsdev: bank size not a multiple of the page size")
	}
	if l.FSBase < l.FlashBase || (l.FSBase-l.FlashBase)%l.PageSize != 0 {
		return errors.New("lfsdev: filesystem base not page aligned in flash")
	}
	if uint64(l.FSBase)+uint64(count)*uint64(l.PageSize) > uint64(l.FlashBase)+uint64(l.Size()) {
		return fmt.Errorf("lfsdev: %d blocks do not fit the flash", count)
	}
	return nil
}
