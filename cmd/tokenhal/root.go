package main

import (
	"context"
	"flag"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type rootConfig struct {
	verbose  bool
	config   string
	spi      string
	cs       string
	touchPin string
	ledPin   string
	sim      bool
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "v", false, "increase log verbosity")
	fs.StringVar(&c.config, "config", "", "config file with one flag per line (optional)")
	fs.StringVar(&c.spi, "spi", "", "spi port of the nfc chip, empty for the first one")
	fs.StringVar(&c.cs, "cs", "", "gpio pin driving the nfc chip select")
	fs.StringVar(&c.touchPin, "touch", "", "gpio pin of the touch sensor")
	fs.StringVar(&c.ledPin, "led", "", "gpio pin of the indicator led (optional)")
	fs.BoolVar(&c.sim, "sim", false, "use an in-memory nfc chip instead of the spi bus")
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

// options makes every flag settable from the environment and the config
// file.
func options() []ff.Option {
	return []ff.Option{
		ff.WithEnvVarPrefix("TOKENHAL"),
		ff.WithConfigFileFlag("config"),
		ff.WithConfigFileParser(ff.PlainParser),
		ff.WithAllowMissingConfigFile(true),
	}
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("tokenhal", flag.ExitOnError)
	cfg.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "tokenhal",
		ShortUsage: "tokenhal [flags] <subcommand>",
		ShortHelp:  "Utilities to inspect and exercise the token hardware.",
		FlagSet:    fs,
		Options:    options(),
		Exec:       cfg.Exec,
	}), &cfg
}

var tokenhalLongHelp = `

GENERAL
Flags can also be set from the environment with the TOKENHAL_ prefix, eg
TOKENHAL_SPI=SPI0.0, or from the file given by -config:

  spi SPI0.0
  cs  GPIO8

The NFC chip EEPROM window is 0x000C-0x03CF. Writes are limited to 16 bytes.`
