package layer

import (
	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/strip"
	"lautenbacher.net/fcleds/util"
)

// ThrottleHueShift is the hue offset at either end of the throttle range.
const ThrottleHueShift = 60

// ThrottleLayer replaces the hue of throttle LEDs, keeping saturation and
// value of the color below.
type ThrottleLayer struct{}

func (ThrottleLayer) Apply(f *Frame) {
	hue := ThrottleHue(f.Flight.Throttle)
	f.each(func(i int, c strip.LedConfig) {
		if !c.Flags.Has(strip.Throttle) {
			return
		}
		hsv := f.Out.Color(i)
		hsv.H = hue
		f.Out.SetColor(i, hsv)
	})
}

// ThrottleHue maps the throttle channel onto a hue in [0, HueMax).
func ThrottleHue(throttle int) uint16 {
	scaled := util.ScaleRange(throttle, flight.ThrottleMin, flight.ThrottleMax, -ThrottleHueShift, ThrottleHueShift)
	return uint16(util.Mod(scaled+color.HueMax, color.HueMax))
}
