package layer

import (
	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/strip"
)

// WarningFlags are the conditions flashed by the warning layer.
type WarningFlags uint8

const (
	LowBattery WarningFlags = 1 << iota
	Failsafe
	ArmingDisabled

	WarningNone WarningFlags = 0
)

const warningPhases = 4

// SampleWarnings derives the warning conditions from a flight state.
func SampleWarnings(s flight.State) WarningFlags {
	flags := WarningNone
	if s.LowBattery {
		flags |= LowBattery
	}
	if s.FailsafeElapsed {
		flags |= Failsafe
	}
	if s.ArmingDisabled() {
		flags |= ArmingDisabled
	}
	return flags
}

// WarningLayer cycles through four phases, one condition per phase:
// arming disabled, low battery, then failsafe for two phases. Each phase
// has a lit half and a dark half; the phase advances and the conditions
// are resampled when entering the dark half.
type WarningLayer struct {
	dark  bool
	phase uint8
	flags WarningFlags
}

// Toggle flips the half cycle. flags is only stored when entering the
// dark half.
func (l *WarningLayer) Toggle(flags WarningFlags) {
	l.dark = !l.dark
	if l.dark {
		l.phase = (l.phase + 1) % warningPhases
		l.flags = flags
	}
}

func (l *WarningLayer) Flags() WarningFlags { return l.flags }
func (l *WarningLayer) Phase() uint8        { return l.phase }
func (l *WarningLayer) Dark() bool          { return l.dark }

// Apply does nothing while no condition is stored.
func (l *WarningLayer) Apply(f *Frame) {
	if l.flags == WarningNone {
		return
	}
	hsv, ok := l.color()
	if !ok {
		return
	}
	f.each(func(i int, c strip.LedConfig) {
		if c.Flags.Has(strip.Warning) {
			f.Out.SetColor(i, hsv)
		}
	})
}

// color returns what the current phase shows, false when the phase's
// condition is not set.
func (l *WarningLayer) color() (color.HSV, bool) {
	switch {
	case l.phase == 0 && l.flags&ArmingDisabled != 0:
		if l.dark {
			return color.Black, true
		}
		return color.Yellow, true
	case l.phase == 1 && l.flags&LowBattery != 0:
		if l.dark {
			return color.Black, true
		}
		return color.Red, true
	case l.phase > 1 && l.flags&Failsafe != 0:
		if l.dark {
			return color.LimeGreen, true
		}
		return color.LightBlue, true
	}
	return color.HSV{}, false
}
