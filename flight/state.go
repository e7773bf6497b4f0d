// Package flight describes the vehicle state the LED layers react to and
// provides sources for it.
package flight

import (
	"fmt"
	"strings"
)

// Modes is the bitset of active flight modes.
type Modes uint8

const (
	Angle Modes = 1 << iota
	Horizon
	Mag
	Baro
	Headfree
)

var modeNames = []struct {
	mode Modes
	name string
}{
	{Angle, "angle"},
	{Horizon, "horizon"},
	{Mag, "mag"},
	{Baro, "baro"},
	{Headfree, "headfree"},
}

// Has reports whether mode m is active.
func (s Modes) Has(m Modes) bool {
	return s&m != 0
}

func (s Modes) String() string {
	var names []string
	for _, n := range modeNames {
		if s.Has(n.mode) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, "|")
}

// ParseModes combines the named modes. Names are case insensitive.
func ParseModes(names []string) (Modes, error) {
	var ret Modes
	for _, name := range names {
		found := false
		for _, n := range modeNames {
			if strings.EqualFold(name, n.name) {
				ret |= n.mode
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown flight mode %q", name)
		}
	}
	return ret, nil
}

// Stick deflection and throttle ranges.
const (
	StickMax    = 500
	ThrottleMin = 1000
	ThrottleMax = 2000
)

// State is one sample of the flight controller.
type State struct {
	Armed   bool
	OkToArm bool
	Modes   Modes
	// Roll and Pitch are stick commands in [-StickMax, StickMax].
	Roll  int
	Pitch int
	// Throttle is the raw channel in [ThrottleMin, ThrottleMax].
	Throttle        int
	LowBattery      bool
	FailsafeElapsed bool
}

// ArmingDisabled is true while disarmed and not permitted to arm.
func (s State) ArmingDisabled() bool {
	return !s.Armed && !s.OkToArm
}

// Source supplies the current flight state. It is read once per frame
// from the control loop.
type Source interface {
	FlightState() State
}
