package optr

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestDefault(t *testing.T) {
	if Default.SwapBank() {
		t.Error("factory default has swapped banks")
	}
	if !Default.DualBank() {
		t.Error("factory default is single bank")
	}
	if Default.RDP() != RDPLevel0 {
		t.Errorf("got %v want %v", Default.RDP(), RDPLevel0)
	}
}

func TestWithSwapBank(t *testing.T) {
	o := Default.WithSwapBank(true)
	if !o.SwapBank() {
		t.Fatal("swap bank not set")
	}
	if o.Bits&^(1<<swapBankBit) != Default.Bits {
		t.Errorf("other bits changed: %#x", o.Bits)
	}
	if o.WithSwapBank(false) != Default {
		t.Errorf("clearing swap bank: got %#x want %#x", o.WithSwapBank(false).Bits, Default.Bits)
	}
}

func TestUnmarshal(t *testing.T) {
	var o OPTR
	if err := Unmarshal([]byte{0xaa, 0xff, 0xff, 0x0f}, &o); err != nil {
		t.Fatal(err)
	}
	if o.Bits != 0x0fffffaa {
		t.Errorf("got %#x", o.Bits)
	}
	if !o.SwapBank() {
		t.Error("swap bank not decoded")
	}
	if o.BORLevel() != 7 {
		t.Errorf("got bor %d want 7", o.BORLevel())
	}

	if err := Unmarshal([]byte{0xaa}, &o); err == nil {
		t.Error("short register accepted")
	}
}

func TestMarshal(t *testing.T) {
	b := Marshal(Default)
	if !bytes.Equal(b, []byte{0xaa, 0xff, 0xef, 0x0f}) {
		t.Errorf("got % x", b)
	}
}

func TestMarshalJSON(t *testing.T) {
	want := `{"rdp":"level 2","bor_level":0,"swap_bank":true,"dual_bank":false,"nboot0":false}`
	got, err := json.Marshal(OPTR{Bits: 1<<swapBankBit | uint32(RDPLevel2)})
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != want {
		t.Errorf("got %s want %s", got, want)
	}
}
