package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/northvolt/go-tokenhal/pkg/admin"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type apduConfig struct {
	rootConfig   *rootConfig
	out          io.Writer
	err          io.Writer
	pinValidated bool
}

func (c *apduConfig) Exec(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return flag.ErrHelp
	}
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "apdu\n")
	}

	e, closer, err := newEEPROM(c.rootConfig)
	if err != nil {
		return err
	}
	defer closer.Close()

	r := admin.NewRouter()
	admin.NewVendor(e, &admin.NFCState{}).Register(r)

	for _, arg := range args {
		apdu, err := parseHex(arg)
		if err != nil {
			return err
		}
		data, sw, err := admin.ParseResponse(r.Serve(apdu, c.pinValidated))
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, sw.String())
		if len(data) > 0 {
			fmt.Fprintln(c.out, prettyHex(data))
		}
	}
	return nil
}

func newAPDUCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := apduConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("tokenhal apdu", flag.ExitOnError)
	fs.BoolVar(&cfg.pinValidated, "pin-validated", false, "run commands as if the admin pin was verified")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "apdu",
		ShortUsage: "apdu [flags] <hex apdu>...",
		ShortHelp:  "Runs vendor administrative commands against the NFC chip.",
		LongHelp:   strings.TrimSpace(`
Runs vendor administrative commands against the NFC chip.

  00 31 00 00 00            firmware version
  00 31 01 00 00            hardware variant
  00 FF 01 01 05 000C AABBCC write AABBCC at 0x000C and verify
  00 FF 02 00 02 000C 04    read 4 bytes at 0x000C`),
		FlagSet: fs,
		Options: options(),
		Exec:    cfg.Exec,
	})
}
