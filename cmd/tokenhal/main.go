/*
tokenhal is a tool to inspect and exercise the token hardware from a host.

It talks to the NFC chip over SPI, samples the touch sensor over GPIO and
prints the flash layout of the filesystem.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/peterbourgon/ff/v3/ffcli"
)

func main() {
	var (
		out = os.Stdout
		err = os.Stderr
	)

	rootCmd, cfg := newRootCmd()
	rootCmd.Subcommands = []*ffcli.Command{
		newGeometryCmd(cfg, out, err),
		newEEPROMCmd(cfg, out, err),
		newTouchCmd(cfg, out, err),
		newAPDUCmd(cfg, out, err),
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		var num = 0
		for range c {
			num += 1
			if num >= 3 {
				os.Exit(1)
			} else {
				cancel()
			}
		}
	}()

	if err := rootCmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, context.Canceled) {
			msg := err.Error()
			for _, prefix := range []string{"tokenhal: ", "fm11: ", "admin: ", "lfsdev: "} {
				msg = strings.TrimPrefix(msg, prefix)
			}
			fmt.Fprintf(os.Stderr, "%s: %s\n", rootCmd.Name, msg)
			os.Exit(1)
		} else if cfg.verbose {
			fmt.Fprintf(os.Stderr, "%s: cancelled\n", rootCmd.Name)
		}
	}
}
