package color

const (
	HueMax        = 359
	SaturationMax = 255
	ValueMax      = 255
)

// HSV is a strip color. Saturation follows the flight controller
// convention: 0 is fully saturated, SaturationMax is white.
type HSV struct {
	H uint16
	S uint8
	V uint8
}

// RGB is a 24 bit color as sent to the LEDs.
type RGB struct {
	R byte
	G byte
	B byte
}

// IsEmpty is true for a dark LED.
func (s RGB) IsEmpty() bool {
	return s.R == 0 && s.G == 0 && s.B == 0
}

//	H    S    V
var (
	Black      = HSV{0, 0, 0}
	White      = HSV{0, 255, 255}
	Red        = HSV{0, 0, 255}
	Orange     = HSV{30, 0, 255}
	Yellow     = HSV{60, 0, 255}
	LimeGreen  = HSV{90, 0, 255}
	Green      = HSV{120, 0, 255}
	MintGreen  = HSV{150, 0, 255}
	Cyan       = HSV{180, 0, 255}
	LightBlue  = HSV{210, 0, 255}
	Blue       = HSV{240, 0, 255}
	DarkViolet = HSV{270, 0, 255}
	Magenta    = HSV{300, 0, 255}
	DeepPink   = HSV{330, 0, 255}
)

// Dim scales the value component by percent.
func (s HSV) Dim(percent uint8) HSV {
	s.V = uint8(uint16(s.V) * uint16(percent) / 100)
	return s
}

// ToRGB converts with the integer algorithm used by the LED firmware so
// the simulation shows the same colors as the hardware.
func (s HSV) ToRGB() RGB {
	val := uint32(s.V)
	sat := uint32(255 - uint16(s.S))
	hue := uint32(s.H)

	if sat == 0 {
		return RGB{byte(val), byte(val), byte(val)}
	}

	base := ((255 - sat) * val) >> 8
	var r, g, b uint32
	switch hue / 60 {
	case 0:
		r, g, b = val, (((val-base)*hue)/60)+base, base
	case 1:
		r, g, b = (((val-base)*(60-(hue%60)))/60)+base, val, base
	case 2:
		r, g, b = base, val, (((val-base)*(hue%60))/60)+base
	case 3:
		r, g, b = base, (((val-base)*(60-(hue%60)))/60)+base, val
	case 4:
		r, g, b = (((val-base)*(hue%60))/60)+base, base, val
	case 5:
		r, g, b = val, base, (((val-base)*(60-(hue%60)))/60)+base
	}
	return RGB{byte(r), byte(g), byte(b)}
}
