package touch

import (
	"time"

	"periph.io/x/conn/v3/gpio"
)

// DefaultBlinkPeriod is the half period of the blinking indicator.
const DefaultBlinkPeriod = 200 * time.Millisecond

// LED is the user presence indicator.
//
// It is lit while a touch is held or asserted, unless it is blinking.
type LED struct {
	pin    gpio.PinOut
	period time.Duration

	blinking bool
	until    Tick
	lit      bool
	known    bool
}

// NewLED returns an indicator on pin.
func NewLED(pin gpio.PinOut) *LED {
	return &LED{pin: pin, period: DefaultBlinkPeriod}
}

// Blink makes the indicator blink for d starting at now.
func (l *LED) Blink(now Tick, d time.Duration) {
	l.blinking = true
	l.until = now + Tick(d/time.Millisecond)
}

// StopBlinking returns the indicator to following the touch state.
func (l *LED) StopBlinking() {
	l.blinking = false
}

// Blinking reports whether the indicator is blinking.
func (l *LED) Blinking() bool {
	return l.blinking
}

// Refresh drives the pin for state s at now.
func (l *LED) Refresh(now Tick, s State) error {
	if l.blinking && int32(l.until-now) <= 0 {
		l.blinking = false
	}

	on := s == StateDown || s == StateAsserted
	if l.blinking {
		on = (now.Sub(0)/l.period)%2 == 0
	}
	return l.set(on)
}

// Off turns the indicator off.
func (l *LED) Off() error {
	l.blinking = false
	return l.set(false)
}

func (l *LED) set(on bool) error {
	if l.known && l.lit == on {
		return nil
	}
	if err := l.pin.Out(gpio.Level(on)); err != nil {
		return err
	}
	l.lit, l.known = on, true
	return nil
}

// Poller samples the touch sensor and publishes events.
type Poller struct {
	pin     gpio.PinIn
	active  gpio.Level
	led     *LED
	now     func() Tick
	publish func(Event)
	th      Thresholds

	status Status
}

// NewPoller configures pin as input and returns a poller starting idle.
//
// The sensor is active high. led may be nil.
func NewPoller(pin gpio.PinIn, led *LED, now func() Tick, publish func(Event), th Thresholds) (*Poller, error) {
	if err := pin.In(gpio.PullDown, gpio.NoEdge); err != nil {
		return nil, err
	}
	return &Poller{
		pin:     pin,
		active:  gpio.High,
		led:     led,
		now:     now,
		publish: publish,
		th:      th,
		status:  Status{StateIdle, now()},
	}, nil
}

// Poll runs one tick of the state machine and refreshes the indicator.
func (p *Poller) Poll() error {
	now := p.now()
	touched := p.pin.Read() == p.active

	var (
		ev      Event
		publish bool
	)
	p.status, ev, publish = Step(p.status, touched, now, p.th)
	if publish {
		p.publish(ev)
	}

	if p.led != nil {
		return p.led.Refresh(now, p.status.State)
	}
	return nil
}

// Status returns the current state machine value.
func (p *Poller) Status() Status {
	return p.status
}
