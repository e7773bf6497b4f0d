package layer

import (
	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/strip"
)

// IndicatorDeadband is the stick deflection below which nothing flashes.
const IndicatorDeadband = 50

// IndicatorLayer flashes the quadrants the sticks point at.
type IndicatorLayer struct {
	dark bool
}

// Toggle flips between the orange and the black half.
func (l *IndicatorLayer) Toggle() { l.dark = !l.dark }

func (l *IndicatorLayer) Dark() bool { return l.dark }

func (l *IndicatorLayer) Apply(f *Frame) {
	flash := color.Orange
	if l.dark {
		flash = color.Black
	}

	quadrants := make([]strip.Quadrant, 0, 8)
	roll, pitch := f.Flight.Roll, f.Flight.Pitch
	if roll > IndicatorDeadband {
		quadrants = append(quadrants, strip.NorthEast, strip.SouthEast)
	}
	if roll < -IndicatorDeadband {
		quadrants = append(quadrants, strip.NorthWest, strip.SouthWest)
	}
	if pitch > IndicatorDeadband {
		quadrants = append(quadrants, strip.NorthEast, strip.NorthWest)
	}
	if pitch < -IndicatorDeadband {
		quadrants = append(quadrants, strip.SouthEast, strip.SouthWest)
	}
	if len(quadrants) == 0 {
		return
	}

	geo := f.Strip.Geometry()
	f.each(func(i int, c strip.LedConfig) {
		if !c.Flags.Has(strip.Indicator) {
			return
		}
		for _, q := range quadrants {
			if geo.InQuadrant(c.Position, q) {
				f.Out.SetColor(i, flash)
			}
		}
	})
}
