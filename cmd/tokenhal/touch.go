package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/northvolt/go-tokenhal/pkg/touch"
	"github.com/peterbourgon/ff/v3/ffcli"
	"periph.io/x/host/v3"
)

type touchConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	err        io.Writer
	interval   time.Duration
	timeout    time.Duration
	count      int
}

func (c *touchConfig) Exec(ctx context.Context, _ []string) error {
	if c.rootConfig.verbose {
		fmt.Fprintf(c.err, "touch\n")
	}

	if _, err := host.Init(); err != nil {
		return err
	}
	sensor, err := openPin(c.rootConfig.touchPin)
	if err != nil {
		return err
	}
	var led *touch.LED
	if c.rootConfig.ledPin != "" {
		p, err := openPin(c.rootConfig.ledPin)
		if err != nil {
			return err
		}
		led = touch.NewLED(p)
		defer led.Off()
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var (
		start  = time.Now()
		result touch.Result
		events int
	)
	now := func() touch.Tick {
		return touch.Tick(time.Since(start) / time.Millisecond)
	}
	p, err := touch.NewPoller(sensor, led, now, result.Set, touch.DefaultThresholds())
	if err != nil {
		return err
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	state := p.Status().State
	for {
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
		}

		if err := p.Poll(); err != nil {
			return err
		}
		if s := p.Status().State; s != state {
			state = s
			if c.rootConfig.verbose {
				fmt.Fprintf(c.err, "%8d %v\n", now(), state)
			}
		}
		if ev := result.Take(); ev != touch.EventNone {
			fmt.Fprintf(c.out, "%8d %v\n", now(), ev)
			events++
			if c.count > 0 && events >= c.count {
				return nil
			}
		}
	}
}

func newTouchCmd(rootConfig *rootConfig, out io.Writer, err io.Writer) *ffcli.Command {
	cfg := touchConfig{
		rootConfig: rootConfig,
		out:        out,
		err:        err,
	}

	fs := flag.NewFlagSet("tokenhal touch", flag.ExitOnError)
	fs.DurationVar(&cfg.interval, "interval", 10*time.Millisecond, "poll interval")
	fs.DurationVar(&cfg.timeout, "timeout", 0, "stop after this long eg 10s")
	fs.IntVar(&cfg.count, "count", 0, "stop after this many touch events")
	rootConfig.registerFlags(fs)

	return addLongHelp(&ffcli.Command{
		Name:       "touch",
		ShortUsage: "touch [flags]",
		ShortHelp:  "Samples the touch sensor and prints short and long touches.",
		FlagSet:    fs,
		Options:    options(),
		Exec:       cfg.Exec,
	})
}
