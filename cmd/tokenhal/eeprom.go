package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/peterbourgon/ff/v3/ffcli"
)

type eepromConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	length     int
	verify     bool
}

func (c *eepromConfig) Exec(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return flag.ErrHelp
	}
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "eeprom\n")
	}

	addr, err := parseAddr(args[0])
	if err != nil {
		return err
	}

	e, closer, err := newEEPROM(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	if len(args) == 1 {
		buf := make([]byte, c.length)
		if err := e.ReadEEPROM(addr, buf); err != nil {
			return err
		}
		fmt.Fprintln(c.out, prettyHex(buf))
		return nil
	}

	data, err := parseHex(args[1])
	if err != nil {
		return err
	}
	if err := e.WriteEEPROM(addr, data); err != nil {
		return err
	}
	if !c.verify {
		return nil
	}

	readback := make([]byte, len(data))
	if err := e.ReadEEPROM(addr, readback); err != nil {
		return err
	}
	if !bytes.Equal(readback, data) {
		return errors.New("tokenhal: readback does not match written data")
	}
	if c.rootConfig.verbose {
		fmt.Fprintln(c.err, "verified", len(data))
	}
	return nil
}

func newEEPROMCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := eepromConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("tokenhal eeprom", flag.ExitOnError)
	fs.IntVar(&cfg.length, "len", 16, "number of bytes to read")
	fs.BoolVar(&cfg.verify, "verify", false, "read written data back and compare")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "eeprom",
		ShortUsage: "eeprom [flags] <addr> [hex data]",
		ShortHelp:  "Reads or writes the NFC chip EEPROM.",
		FlagSet:    fs,
		Options:    options(),
		Exec:       cfg.Exec,
	})
}
