package tokenhal

import (
	"time"

	"github.com/northvolt/go-tokenhal/pkg/admin"
	"github.com/northvolt/go-tokenhal/pkg/fm11"
	"github.com/northvolt/go-tokenhal/pkg/lfsdev"
	"github.com/northvolt/go-tokenhal/pkg/touch"
)

// Config is the configuration object for a device.
//
// All values are fixed for a board. Use one of the default constructors and
// adjust the fields that differ.
type Config struct {
	// Layout places the filesystem in the flash.
	Layout lfsdev.Layout
	// Storage is the filesystem geometry.
	Storage lfsdev.Config
	// Touch holds the debounce thresholds of the touch sensor.
	Touch touch.Thresholds
	// Window bounds the NFC chip EEPROM reachable from vendor commands.
	Window fm11.Window
	// Timer configures the single-shot timeout timer.
	Timer TimerConfig

	// HWVariant and Version identify the device to vendor commands.
	HWVariant string
	Version   string

	// Now returns the current time. It defaults to time.Now.
	Now func() time.Time
	// Sleep blocks the caller. It defaults to time.Sleep.
	Sleep func(time.Duration)
	// Halt is called when storage is left in an unrecoverable state. The
	// default panics.
	Halt func(error)

	// Debug is used for debug output.
	Debug Logger
}

// TimerConfig describes the hardware timer behind SetTimeout. Zero fields
// select the 48 MHz clock and a prescaler of 4000.
type TimerConfig struct {
	// Clock is the timer input clock in Hz.
	Clock uint32
	// Prescaler divides the input clock.
	Prescaler uint32
}

// ConfigSTM32U385Default returns the configuration of the STM32U385 board.
func ConfigSTM32U385Default() Config {
	layout := lfsdev.LayoutSTM32U385()
	return Config{
		Layout:  layout,
		Storage: lfsdev.DefaultConfig(layout.PageSize),
		Touch:   touch.DefaultThresholds(),
		Window:  fm11.DefaultWindow(),
		Timer: TimerConfig{
			Clock:     defaultTimerClock,
			Prescaler: defaultTimerPrescaler,
		},
		HWVariant: admin.DefaultHWVariant,
		Version:   admin.DefaultVersion,
	}
}

func (c *Config) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Config) sleep(d time.Duration) {
	if c.Sleep == nil {
		time.Sleep(d)
		return
	}
	c.Sleep(d)
}
