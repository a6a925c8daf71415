package tokenhal

import (
	"fmt"
	"strings"
	"testing"

	"github.com/northvolt/go-tokenhal/pkg/fm11"
	"github.com/northvolt/go-tokenhal/pkg/lfsdev"
	"github.com/northvolt/go-tokenhal/pkg/optr"
)

func TestHexDump(t *testing.T) {
	want := "h -> \n00000000  66 6f 6f 62 61 72                                 |foobar|\n\n <- h"
	got := fmt.Sprintf("h -> %s <- h", hexDump([]byte("foobar")))
	if got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

// recordLogger keeps every formatted message.
type recordLogger struct {
	lines []string
}

func (l *recordLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *recordLogger) contains(s string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, s) {
			return true
		}
	}
	return false
}

func TestConfigLogger(t *testing.T) {
	var cfg Config
	if _, ok := cfg.logger().(discard); !ok {
		t.Error("expected discarding logger")
	}
	l := &recordLogger{}
	cfg.Debug = l
	if cfg.logger() != l {
		t.Error("expected configured logger")
	}
}

func TestTraceAddressWidth(t *testing.T) {
	l := &recordLogger{}
	f := &flashDebug{"flash", l, lfsdev.NewMemFlash(lfsdev.LayoutSTM32U385(), optr.Default)}
	_ = f.ReadAt(make([]byte, 4), 0x080f0000)
	e := DebugEEPROM(fm11.NewMem(fm11.DefaultWindow()), l)
	_ = e.WriteEEPROM(0x000c, []byte{1})
	_ = e.ReadEEPROM(0x03cf, make([]byte, 1))

	for _, want := range []string{
		"flash >>  read 0x080f0000(4)",
		" fm11 >>  send 0x000c",
		" fm11 >>  recv 0x03cf(1)",
	} {
		if !l.contains(want) {
			t.Errorf("missing trace %q in %q", want, l.lines)
		}
	}
}
