package tokenhal

import (
	"context"
	"errors"
	"time"

	"github.com/northvolt/go-tokenhal/pkg/admin"
	"github.com/northvolt/go-tokenhal/pkg/fm11"
	"github.com/northvolt/go-tokenhal/pkg/lfsdev"
	"github.com/northvolt/go-tokenhal/pkg/touch"
	"periph.io/x/conn/v3/gpio"
)

// Board holds the peripherals of a device.
type Board struct {
	// Flash is the on-die flash controller.
	Flash lfsdev.Flash
	// EEPROM is the NFC chip EEPROM.
	EEPROM fm11.EEPROM
	// Touch is the touch sensor input, active high.
	Touch gpio.PinIn
	// LED is the user indicator. It may be nil.
	LED gpio.PinOut
	// NFC switches the NFC interface. It defaults to a switch held in
	// memory.
	NFC admin.NFC
}

// Device is the hardware context of one token.
//
// A Device is driven from a single main loop. Only the touch result and
// the timeout timer are safe to use from other goroutines.
type Device struct {
	cfg   Config
	log   Logger
	start time.Time

	storage   *lfsdev.Driver
	formatted bool

	led    *touch.LED
	poller *touch.Poller
	result touch.Result

	vendor *admin.Vendor
	router *admin.Router
	timer  *Timer
}

// New initialises the peripherals of b and mounts fs on the flash.
func New(ctx context.Context, b Board, fs lfsdev.Filesystem, cfg Config) (*Device, error) {
	switch {
	case b.Flash == nil:
		return nil, errors.New("tokenhal: board has no flash")
	case b.EEPROM == nil:
		return nil, errors.New("tokenhal: board has no eeprom")
	case b.Touch == nil:
		return nil, errors.New("tokenhal: board has no touch sensor")
	}

	d := &Device{
		cfg: cfg,
		log: cfg.logger(),
	}
	d.start = cfg.now()

	var err error
	d.storage, err = lfsdev.New(&flashDebug{"flash", d.log, b.Flash}, cfg.Layout, cfg.Storage)
	if err != nil {
		return nil, err
	}
	if cfg.Halt != nil {
		d.storage.Halt = cfg.Halt
	}

	if b.LED != nil {
		d.led = touch.NewLED(b.LED)
	}
	d.poller, err = touch.NewPoller(b.Touch, d.led, d.Tick, d.result.Set, cfg.Touch)
	if err != nil {
		return nil, err
	}

	nfc := b.NFC
	if nfc == nil {
		nfc = &admin.NFCState{}
	}
	d.vendor = admin.NewVendor(&eepromDebug{"fm11", d.log, b.EEPROM}, nfc)
	d.vendor.Window = cfg.Window
	d.vendor.Delay = cfg.sleep
	d.vendor.HWVariant = cfg.HWVariant
	d.vendor.Version = cfg.Version
	d.router = admin.NewRouter()
	d.vendor.Register(d.router)

	d.timer = newTimer(cfg.Timer, d.log)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.formatted, err = d.storage.Mount(fs)
	if err != nil {
		return nil, err
	}
	if d.formatted {
		d.log.Printf("tokenhal: storage formatted")
	}
	return d, nil
}

// Close stops the timer and turns the indicator off.
func (d *Device) Close() error {
	d.timer.Stop()
	if d.led != nil {
		return d.led.Off()
	}
	return nil
}

// Tick returns the milliseconds since New. It wraps after about 49 days.
func (d *Device) Tick() touch.Tick {
	return touch.Tick(d.cfg.now().Sub(d.start) / time.Millisecond)
}

// Delay blocks for ms milliseconds.
func (d *Device) Delay(ms int) {
	d.cfg.sleep(time.Duration(ms) * time.Millisecond)
}

// Periodic runs one main loop tick: the touch sensor is sampled and the
// indicator refreshed.
func (d *Device) Periodic() error {
	return d.poller.Poll()
}

// TouchState returns the state of the touch state machine.
func (d *Device) TouchState() touch.Status {
	return d.poller.Status()
}

// TouchResult returns the last touch event without consuming it.
func (d *Device) TouchResult() touch.Event {
	return d.result.Get()
}

// ConsumeTouch returns the last touch event and clears it.
func (d *Device) ConsumeTouch() touch.Event {
	return d.result.Take()
}

// Blink blinks the indicator for dur.
func (d *Device) Blink(dur time.Duration) {
	if d.led != nil {
		d.led.Blink(d.Tick(), dur)
	}
}

// StopBlinking ends blinking of the indicator.
func (d *Device) StopBlinking() {
	if d.led != nil {
		d.led.StopBlinking()
	}
}

// SetTimeout calls cb once after ms milliseconds. A zero timeout stops the
// pending one.
func (d *Device) SetTimeout(cb func(), ms uint16) {
	d.timer.SetTimeout(cb, ms)
}

// Storage returns the flash block device.
func (d *Device) Storage() *lfsdev.Driver {
	return d.storage
}

// Formatted reports whether New had to format the storage.
func (d *Device) Formatted() bool {
	return d.formatted
}

// Admin returns the router serving the vendor commands. Additional
// administrative commands may be registered on it.
func (d *Device) Admin() *admin.Router {
	return d.router
}

// ServeAPDU executes an administrative command APDU and returns the
// response APDU.
func (d *Device) ServeAPDU(apdu []byte, pinValidated bool) []byte {
	d.log.Printf("%5s >>  apdu", "admin")
	d.log.Printf("%s", hexDump(apdu))
	rsp := d.router.Serve(apdu, pinValidated)
	d.log.Printf("%5s <<  apdu", "admin")
	d.log.Printf("%s", hexDump(rsp))
	return rsp
}
