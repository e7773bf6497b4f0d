// Package driver connects the compositor to the LED output: the Driver
// interface it renders into, the HSV strip buffer that hands finished
// frames to the platforms and a bounded frame history.
package driver

import (
	"time"

	"lautenbacher.net/fcleds/color"
)

// Driver is the LED buffer the layers write into. Indexes outside the
// strip are ignored.
type Driver interface {
	SetColor(index int, c color.HSV)
	Color(index int) color.HSV
	// SetBrightness scales the value component of LED index by percent.
	SetBrightness(index int, percent uint8)
	// Ready is false while a previous frame is still being transmitted.
	Ready() bool
	Transmit()
}

// Frame is the RGB content of the strip at one transmission.
type Frame struct {
	Seq  uint64
	Time time.Time
	Leds []color.RGB
}

// copyInto copies f into dst, reusing the LED slice of dst.
func (f *Frame) copyInto(dst *Frame) {
	dst.Seq = f.Seq
	dst.Time = f.Time
	dst.Leds = append(dst.Leds[:0], f.Leds...)
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() Frame {
	var ret Frame
	f.copyInto(&ret)
	return ret
}

// Sink receives transmitted frames on the display goroutine. The frame
// is only valid during the call.
type Sink interface {
	DisplayFrame(f *Frame)
}
