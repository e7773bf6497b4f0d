package layer

import (
	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/strip"
)

// Compositor owns the layers and their state between frames. The
// scheduler decides which stages run on a given tick.
type Compositor struct {
	Mode      ModeLayer
	Throttle  ThrottleLayer
	Warning   WarningLayer
	Indicator IndicatorLayer
	Animation AnimationLayer

	frame Frame
}

func NewCompositor(s *strip.State, p *color.Palette, out driver.Driver) *Compositor {
	return &Compositor{
		frame: Frame{Strip: s, Palette: p, Out: out},
	}
}

// Begin starts a frame for the given flight state.
func (c *Compositor) Begin(fs flight.State) {
	c.frame.Flight = fs
}

// Flight returns the state of the current frame.
func (c *Compositor) Flight() flight.State {
	return c.frame.Flight
}

// Height is the grid height of the current layout.
func (c *Compositor) Height() int {
	return c.frame.Strip.Geometry().Height
}

func (c *Compositor) ApplyBase() {
	c.Mode.Apply(&c.frame)
	c.Throttle.Apply(&c.frame)
}

func (c *Compositor) ApplyWarning()   { c.Warning.Apply(&c.frame) }
func (c *Compositor) ApplyIndicator() { c.Indicator.Apply(&c.frame) }
func (c *Compositor) ApplyAnimation() { c.Animation.Apply(&c.frame) }

// Render runs every stage without touching the layer timers.
func (c *Compositor) Render(fs flight.State) {
	c.Begin(fs)
	c.ApplyBase()
	c.ApplyWarning()
	c.ApplyIndicator()
	c.ApplyAnimation()
}
