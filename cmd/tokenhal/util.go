package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/northvolt/go-tokenhal"
	"github.com/northvolt/go-tokenhal/pkg/fm11"
	"github.com/peterbourgon/ff/v3/ffcli"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newEEPROM(c *rootConfig) (fm11.EEPROM, io.Closer, error) {
	if c.sim {
		mem := fm11.NewMem(fm11.DefaultWindow())
		return tokenhal.DebugEEPROM(mem, newLogger(c.verbose)), nopCloser{}, nil
	}

	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	cs, err := openPin(c.cs)
	if err != nil {
		return nil, nil, err
	}
	port, err := spireg.Open(c.spi)
	if err != nil {
		return nil, nil, fmt.Errorf("tokenhal: failed to open spi port: %w", err)
	}
	d, err := fm11.Connect(port, cs, fm11.DefaultWindow())
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	return tokenhal.DebugEEPROM(d, newLogger(c.verbose)), port, nil
}

func openPin(name string) (gpio.PinIO, error) {
	if name == "" {
		return nil, errors.New("tokenhal: no gpio pin given")
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("tokenhal: unknown gpio pin %q", name)
	}
	return p, nil
}

func parseAddr(s string) (uint16, error) {
	addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(s), "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("tokenhal: invalid address %q", s)
	}
	return uint16(addr), nil
}

func parseHex(s string) ([]byte, error) {
	s = strings.NewReplacer(" ", "", ":", "").Replace(s)
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("tokenhal: invalid hex data: %w", err)
	}
	return b, nil
}

func prettyHex(data []byte) string {
	return prettyHexIndent(data, "    ", "")
}

func prettyHexIndent(data []byte, prefix string, space string) string {
	var buf strings.Builder

	// prefix and space every 16 byte, and 2 hex, and one space/newline
	cols := 16
	size := (len(data)/cols+1)*(len(prefix)+len(space)+1) + len(data)*3
	buf.Grow(size)

	for i := range data {
		if i > 0 {
			switch i % cols {
			case 0:
				buf.WriteByte('\n')
			case cols / 2:
				buf.WriteByte(' ')
				buf.WriteString(space)
			default:
				buf.WriteByte(' ')
			}
		}
		if i%cols == 0 {
			buf.WriteString(prefix)
		}

		buf.WriteString(fmt.Sprintf("%02X", data[i:i+1]))
	}

	return buf.String()
}

func writeJSON(w io.Writer, data any) error {
	j, err := json.MarshalIndent(data, "", " ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(j, '\n'))
	return err
}

func addLongHelp(cmd *ffcli.Command) *ffcli.Command {
	if cmd.LongHelp == "" {
		cmd.LongHelp = cmd.ShortHelp
	}

	cmd.LongHelp += tokenhalLongHelp

	return cmd
}

func newLogger(verbose bool) tokenhal.Logger {
	if verbose {
		return log.New(os.Stderr, "", 0)
	} else {
		return nil
	}
}
