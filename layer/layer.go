// Package layer computes the strip colors from the flight state. Each
// layer only writes LEDs carrying its function flag; they run in the
// order mode, throttle, warning, indicator, animation and later layers
// overwrite earlier ones.
package layer

import (
	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/driver"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/strip"
)

// Frame is the input and output of one composition pass.
type Frame struct {
	Strip   *strip.State
	Palette *color.Palette
	Flight  flight.State
	Out     driver.Driver
}

// Layer writes its contribution into the frame output.
type Layer interface {
	Apply(f *Frame)
}

// each calls fn for every active LED.
func (f *Frame) each(fn func(index int, c strip.LedConfig)) {
	for i := 0; i < f.Strip.Count(); i++ {
		c, _ := f.Strip.Config(i)
		fn(i, c)
	}
}
