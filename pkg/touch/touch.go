package touch

import (
	"fmt"
	"time"
)

// Tick is a millisecond timestamp. It wraps around after about 49 days;
// elapsed time is computed modulo 2^32.
type Tick uint32

// Sub returns the time elapsed from since to t.
func (t Tick) Sub(since Tick) time.Duration {
	return time.Duration(t-since) * time.Millisecond
}

// State is the state of the touch state machine.
type State int

const (
	StateIdle State = iota
	StateDown
	StateAsserted
	StateDeasserted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDown:
		return "down"
	case StateAsserted:
		return "asserted"
	case StateDeasserted:
		return "deasserted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Event is a classified touch.
type Event uint32

const (
	EventNone Event = iota
	EventShort
	EventLong
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventShort:
		return "short"
	case EventLong:
		return "long"
	default:
		return fmt.Sprintf("event(%d)", uint32(e))
	}
}

// Thresholds are the debounce timings.
type Thresholds struct {
	// MinTouch is the contact time below which a touch is noise.
	MinTouch time.Duration
	// MinLongTouch is the contact time above which a touch is long.
	MinLongTouch time.Duration
	// Gap is how long an event stays published.
	Gap time.Duration
}

// DefaultThresholds returns the timings used on the token.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTouch:     20 * time.Millisecond,
		MinLongTouch: 500 * time.Millisecond,
		Gap:          2 * time.Second,
	}
}

// Status is the state machine value: a state and the tick it was entered.
type Status struct {
	State State
	Since Tick
}

// Step advances the state machine by one poll.
//
// touched is the sensor level sampled at now. When publish is true, ev must
// be published to the application, replacing any earlier event.
func Step(s Status, touched bool, now Tick, th Thresholds) (next Status, ev Event, publish bool) {
	elapsed := now.Sub(s.Since)
	switch s.State {
	case StateIdle:
		if touched {
			return Status{StateDown, now}, EventNone, false
		}
	case StateDown:
		long := elapsed > th.MinLongTouch
		if !touched || long {
			if elapsed > th.MinTouch {
				ev = EventShort
				if long {
					ev = EventLong
				}
				return Status{StateAsserted, now}, ev, true
			}
			return Status{StateIdle, s.Since}, EventNone, false
		}
	case StateAsserted:
		if elapsed >= th.Gap {
			return Status{StateDeasserted, s.Since}, EventNone, true
		}
	case StateDeasserted:
		if !touched {
			return Status{StateIdle, s.Since}, EventNone, false
		}
	}
	return s, EventNone, false
}
