package touch

import (
	"reflect"
	"testing"
	"time"
)

const pollPeriod = 10

// simulate polls a contact of press ms starting at tick 0 for total ms and
// returns the published events with the tick they were published at.
func simulate(press, total int) (events []Event, at []Tick, final Status) {
	th := DefaultThresholds()
	s := Status{StateIdle, 0}
	for now := 0; now <= total; now += pollPeriod {
		touched := now < press
		var (
			ev      Event
			publish bool
		)
		s, ev, publish = Step(s, touched, Tick(now), th)
		if publish {
			events = append(events, ev)
			at = append(at, Tick(now))
		}
	}
	return events, at, s
}

func TestTouchClassification(t *testing.T) {
	testCases := []struct {
		name   string
		press  int
		events []Event
		at     []Tick
	}{
		{"glitch", 10, nil, nil},
		{"at minimum", 20, nil, nil},
		{"short", 100, []Event{EventShort, EventNone}, []Tick{100, 2100}},
		{"just short", 30, []Event{EventShort, EventNone}, []Tick{30, 2030}},
		{"long", 800, []Event{EventLong, EventNone}, []Tick{510, 2510}},
		{"held", 5000, []Event{EventLong, EventNone}, []Tick{510, 2510}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			events, at, final := simulate(tc.press, 6000)
			if !reflect.DeepEqual(events, tc.events) {
				t.Errorf("got %v want %v", events, tc.events)
			}
			if !reflect.DeepEqual(at, tc.at) {
				t.Errorf("published at %v want %v", at, tc.at)
			}
			if final.State != StateIdle {
				t.Errorf("ended in %v", final.State)
			}
		})
	}
}

func TestStepTransitions(t *testing.T) {
	th := DefaultThresholds()
	testCases := []struct {
		name    string
		s       Status
		touched bool
		now     Tick
		want    Status
		ev      Event
		publish bool
	}{
		{"idle stays", Status{StateIdle, 5}, false, 100, Status{StateIdle, 5}, EventNone, false},
		{"idle to down", Status{StateIdle, 5}, true, 100, Status{StateDown, 100}, EventNone, false},
		{"down held", Status{StateDown, 100}, true, 300, Status{StateDown, 100}, EventNone, false},
		{"down noise", Status{StateDown, 100}, false, 115, Status{StateIdle, 100}, EventNone, false},
		{"down short", Status{StateDown, 100}, false, 200, Status{StateAsserted, 200}, EventShort, true},
		{"down long held", Status{StateDown, 100}, true, 601, Status{StateAsserted, 601}, EventLong, true},
		{"down long released", Status{StateDown, 100}, false, 700, Status{StateAsserted, 700}, EventLong, true},
		{"asserted waits", Status{StateAsserted, 200}, false, 2199, Status{StateAsserted, 200}, EventNone, false},
		{"asserted clears", Status{StateAsserted, 200}, false, 2200, Status{StateDeasserted, 200}, EventNone, true},
		{"deasserted held", Status{StateDeasserted, 200}, true, 9000, Status{StateDeasserted, 200}, EventNone, false},
		{"deasserted released", Status{StateDeasserted, 200}, false, 9000, Status{StateIdle, 200}, EventNone, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ev, publish := Step(tc.s, tc.touched, tc.now, th)
			if got != tc.want {
				t.Errorf("got %+v want %+v", got, tc.want)
			}
			if ev != tc.ev || publish != tc.publish {
				t.Errorf("got %v/%v want %v/%v", ev, publish, tc.ev, tc.publish)
			}
		})
	}
}

func TestTickWraparound(t *testing.T) {
	since := Tick(0xfffffff0)
	if d := Tick(0x10).Sub(since); d != 32*time.Millisecond {
		t.Errorf("got %v want 32ms", d)
	}

	s, ev, publish := Step(Status{StateDown, since}, false, Tick(0x30), DefaultThresholds())
	if s.State != StateAsserted || ev != EventShort || !publish {
		t.Errorf("got %v %v %v", s, ev, publish)
	}
}

func TestResult(t *testing.T) {
	var r Result
	if r.Get() != EventNone {
		t.Fatal("zero result not none")
	}

	r.Set(EventShort)
	r.Set(EventLong)
	if got := r.Get(); got != EventLong {
		t.Errorf("got %v want %v", got, EventLong)
	}
	if got := r.Take(); got != EventLong {
		t.Errorf("got %v want %v", got, EventLong)
	}
	if got := r.Take(); got != EventNone {
		t.Errorf("second take: got %v want %v", got, EventNone)
	}
}

func TestStrings(t *testing.T) {
	if StateAsserted.String() != "asserted" || EventLong.String() != "long" {
		t.Error("unexpected names")
	}
	if State(9).String() != "state(9)" || Event(9).String() != "event(9)" {
		t.Error("unexpected names for unknown values")
	}
}
