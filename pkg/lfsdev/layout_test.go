package lfsdev

import (
	"testing"
)

func TestLayoutKnownAddresses(t *testing.T) {
	l := LayoutSTM32U385()
	testCases := []struct {
		name    string
		block   uint32
		offset  uint32
		swapped bool
		addr    uint32
		bank    Bank
		page    uint32
	}{
		{"first", 0, 0, false, 0x080f0000, Bank2, 112},
		{"first swapped", 0, 0, true, 0x080f0000, Bank1, 112},
		{"offset", 1, 0x10, false, 0x080f1010, Bank2, 113},
		{"last", 15, 0xff8, false, 0x080ffff8, Bank2, 127},
		{"last swapped", 15, 0, true, 0x080ff000, Bank1, 127},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr := l.Addr(tc.block, tc.offset)
			if addr != tc.addr {
				t.Errorf("got %#x want %#x", addr, tc.addr)
			}
			if bank := l.Bank(addr, tc.swapped); bank != tc.bank {
				t.Errorf("got %v want %v", bank, tc.bank)
			}
			if page := l.Page(addr); page != tc.page {
				t.Errorf("got page %d want %d", page, tc.page)
			}
		})
	}
}

func TestLayoutLowerBank(t *testing.T) {
	l := LayoutSTM32U385()
	if b := l.Bank(l.FlashBase, false); b != Bank1 {
		t.Errorf("got %v want %v", b, Bank1)
	}
	if b := l.Bank(l.FlashBase, true); b != Bank2 {
		t.Errorf("got %v want %v", b, Bank2)
	}
	if p := l.Page(l.FlashBase + 3*l.PageSize + 1); p != 3 {
		t.Errorf("got page %d want 3", p)
	}
}

func TestLayoutBijection(t *testing.T) {
	l := LayoutSTM32U385()
	cfg := DefaultConfig(l.PageSize)

	for _, swapped := range []bool{false, true} {
		type location struct {
			bank Bank
			page uint32
		}
		seen := make(map[location]uint32)
		addrs := make(map[uint32]bool)
		for block := uint32(0); block < cfg.BlockCount; block++ {
			addr := l.Addr(block, 0)
			if addr < l.FSBase || addr+l.PageSize > l.FSBase+cfg.BlockCount*l.PageSize {
				t.Errorf("block %d at %#x outside window", block, addr)
			}
			if addrs[addr] {
				t.Errorf("block %d maps to a taken address %#x", block, addr)
			}
			addrs[addr] = true

			loc := location{l.Bank(addr, swapped), l.Page(addr)}
			if prev, ok := seen[loc]; ok {
				t.Errorf("swapped=%v: blocks %d and %d share %v page %d", swapped, prev, block, loc.bank, loc.page)
			}
			seen[loc] = block

			if again := l.Bank(addr, swapped); again != loc.bank {
				t.Errorf("bank selection not deterministic for %#x", addr)
			}
		}
		if len(addrs) != int(cfg.BlockCount) {
			t.Errorf("got %d addresses want %d", len(addrs), cfg.BlockCount)
		}
	}
}

func TestLayoutValidate(t *testing.T) {
	l := LayoutSTM32U385()
	if err := l.Validate(16); err != nil {
		t.Errorf("default layout: %v", err)
	}
	if err := l.Validate(17); err == nil {
		t.Error("17 blocks past the end of flash accepted")
	}

	l.FSBase += 8
	if err := l.Validate(1); err == nil {
		t.Error("unaligned base accepted")
	}
}
