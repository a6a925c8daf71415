package main

import (
	"bytes"
	"testing"

	"github.com/northvolt/go-tokenhal"
	"github.com/northvolt/go-tokenhal/pkg/lfsdev"
	"github.com/northvolt/go-tokenhal/pkg/optr"
)

func TestPrettyHexIndent(t *testing.T) {
	testCases := []struct {
		name   string
		in     []byte
		prefix string
		space  string
		want   string
	}{
		{"empty", []byte{}, "  ", "", ""},
		{"one", []byte{0x00}, "  ", "", "  00"},
		{"three", []byte{0x00, 0x01, 0x02}, "    ", "", "    00 01 02"},
		{
			"space", bytes.Repeat([]byte{0x00}, 32), "    ", " ",
			"    00 00 00 00 00 00 00 00  00 00 00 00 00 00 00 00\n" +
				"    00 00 00 00 00 00 00 00  00 00 00 00 00 00 00 00",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := prettyHexIndent(tc.in, tc.prefix, tc.space)
			if got != tc.want {
				t.Errorf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestParseAddr(t *testing.T) {
	testCases := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{"000c", 0x000c, false},
		{"0x03CF", 0x03cf, false},
		{"3d0", 0x03d0, false},
		{"0x10000", 0, true},
		{"zz", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := parseAddr(tc.in)
			if (err != nil) != tc.wantErr {
				t.Fatalf("unexpected error %v", err)
			}
			if got != tc.want {
				t.Errorf("want 0x%04x, got 0x%04x", tc.want, got)
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	got, err := parseHex("00 FF:02 00")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x00, 0xff, 0x02, 0x00}) {
		t.Errorf("unexpected bytes % x", got)
	}
	if _, err := parseHex("0"); err == nil {
		t.Error("expected error for odd length")
	}
}

func TestGeometryInfo(t *testing.T) {
	testCases := []struct {
		name string
		swap bool
		bank int
	}{
		{"default", false, int(lfsdev.Bank2)},
		{"swapped", true, int(lfsdev.Bank1)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gi, err := getGeometryInfo(tokenhal.ConfigSTM32U385Default(), optr.Default.WithSwapBank(tc.swap))
			if err != nil {
				t.Fatal(err)
			}
			if len(gi.Blocks) != 16 {
				t.Fatalf("want 16 blocks, got %d", len(gi.Blocks))
			}
			first, last := gi.Blocks[0], gi.Blocks[15]
			if first.Addr != 0x080f0000 || last.Addr != 0x080ff000 {
				t.Errorf("unexpected addresses %#x %#x", first.Addr, last.Addr)
			}
			if first.Bank != tc.bank || first.Page != 112 || last.Page != 127 {
				t.Errorf("unexpected location bank %d page %d..%d", first.Bank, first.Page, last.Page)
			}

			var buf bytes.Buffer
			if err := writeGeometryText(&buf, gi); err != nil {
				t.Fatal(err)
			}
			for _, want := range []string{"base 0x080f0000,", "15  0x080ff000  bank"} {
				if !bytes.Contains(buf.Bytes(), []byte(want)) {
					t.Errorf("%q missing from output:\n%s", want, buf.String())
				}
			}
		})
	}
}
