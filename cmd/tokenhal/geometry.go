package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"text/template"

	"github.com/northvolt/go-tokenhal"
	"github.com/northvolt/go-tokenhal/pkg/lfsdev"
	"github.com/northvolt/go-tokenhal/pkg/optr"
	"github.com/peterbourgon/ff/v3/ffcli"
)

type geometryConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	json       bool
	optr       string
	swap       bool
}

func (c *geometryConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "geometry\n")
	}

	o := optr.Default
	if c.optr != "" {
		b, err := parseHex(c.optr)
		if err != nil {
			return err
		}
		if err := optr.Unmarshal(b, &o); err != nil {
			return err
		}
	}
	if c.swap {
		o = o.WithSwapBank(true)
	}

	gi, err := getGeometryInfo(tokenhal.ConfigSTM32U385Default(), o)
	if err != nil {
		return err
	}

	if c.json {
		return writeJSON(c.out, gi)
	} else {
		return writeGeometryText(c.out, gi)
	}
}

type blockInfo struct {
	Block uint32 `json:"block"`
	Addr  uint32 `json:"addr"`
	Bank  int    `json:"bank"`
	Page  uint32 `json:"page"`
}

type geometryInfo struct {
	OPTR       optr.OPTR   `json:"optr"`
	FSBase     uint32      `json:"fs_base"`
	BlockSize  uint32      `json:"block_size"`
	BlockCount uint32      `json:"block_count"`
	ReadSize   uint32      `json:"read_size"`
	ProgSize   uint32      `json:"prog_size"`
	Blocks     []blockInfo `json:"blocks"`
}

func getGeometryInfo(cfg tokenhal.Config, o optr.OPTR) (*geometryInfo, error) {
	flash := lfsdev.NewMemFlash(cfg.Layout, o)
	d, err := lfsdev.New(flash, cfg.Layout, cfg.Storage)
	if err != nil {
		return nil, err
	}

	gi := &geometryInfo{
		OPTR:       o,
		FSBase:     cfg.Layout.FSBase,
		BlockSize:  cfg.Storage.BlockSize,
		BlockCount: cfg.Storage.BlockCount,
		ReadSize:   cfg.Storage.ReadSize,
		ProgSize:   cfg.Storage.ProgSize,
	}
	for block := uint32(0); block < cfg.Storage.BlockCount; block++ {
		bank, page := d.Locate(block)
		gi.Blocks = append(gi.Blocks, blockInfo{
			Block: block,
			Addr:  cfg.Layout.Addr(block, 0),
			Bank:  int(bank),
			Page:  page,
		})
	}
	return gi, nil
}

const geometryTemplate = `
Option register:
    {{ printf "0x%08x" .OPTR.Bits }} swap bank {{ swapped .OPTR.SwapBank }}

Filesystem:
    base {{ printf "0x%08x" .FSBase }}, {{ .BlockCount }} blocks of {{ .BlockSize }} bytes
    read {{ .ReadSize }}, program {{ .ProgSize }}

Blocks:
{{- range .Blocks }}
    {{ printf "%2d" .Block }}  {{ printf "0x%08x" .Addr }}  bank {{ .Bank }} page {{ printf "%3d" .Page }}
{{- end }}
`

func writeGeometryText(w io.Writer, gi *geometryInfo) error {
	funcs := template.FuncMap{
		"swapped": func(b bool) string {
			if b {
				return "set"
			} else {
				return "clear"
			}
		},
	}
	t, err := template.New("geometry").Funcs(funcs).Parse(geometryTemplate)
	if err != nil {
		return err
	}

	return t.Execute(w, gi)
}

func newGeometryCmd(
	rootConfig *rootConfig, out io.Writer, err io.Writer,
) *ffcli.Command {
	cfg := geometryConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("tokenhal geometry", flag.ExitOnError)
	fs.BoolVar(&cfg.json, "json", false, "output in json mode")
	fs.StringVar(&cfg.optr, "optr", "", "option register as 4 little endian hex bytes")
	fs.BoolVar(&cfg.swap, "swap", false, "set the swap bank flag")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "geometry",
		ShortUsage: "geometry [flags]",
		ShortHelp:  "Prints where the filesystem blocks live in the flash.",
		FlagSet:    fs,
		Options:    options(),
		Exec:       cfg.Exec,
	})
}
