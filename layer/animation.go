package layer

import (
	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/strip"
)

// AnimationBrightness dims the rows beside the highlighted one.
const AnimationBrightness = 50

// AnimationLayer sweeps a white row over the grid while disarmed.
type AnimationLayer struct {
	Enabled bool

	counter  int
	previous int
	current  int
	next     int
}

// Advance moves the sweep one row down a grid of the given height. A
// grid without rows leaves the sweep where it is.
func (l *AnimationLayer) Advance(height int) {
	if height <= 0 {
		return
	}
	counter := l.counter % height
	l.previous = (counter + height - 1) % height
	l.current = counter
	l.next = (counter + 1) % height
	l.counter = (counter + 1) % height
}

// Rows returns the previous, current and next highlighted rows.
func (l *AnimationLayer) Rows() (previous, current, next int) {
	return l.previous, l.current, l.next
}

func (l *AnimationLayer) Apply(f *Frame) {
	if !l.Enabled || f.Flight.Armed {
		return
	}
	f.each(func(i int, c strip.LedConfig) {
		switch c.Position.Y() {
		case l.previous:
			f.Out.SetColor(i, color.White)
			f.Out.SetBrightness(i, AnimationBrightness)
		case l.current:
			f.Out.SetColor(i, color.White)
		case l.next:
			f.Out.SetBrightness(i, AnimationBrightness)
		}
	})
}
