// Package strip holds the per-LED configuration of the strip, the grid
// geometry derived from it and the textual descriptor codec.
package strip

const (
	// MaxLed is the capacity of the configuration table.
	MaxLed = 32
	// GridSize bounds each coordinate; positions are packed 4 bits each.
	GridSize = 16

	xShift = 4
	xyMask = 0x0F
)

// Position packs grid coordinates, X in the high nibble.
type Position uint8

// NewPosition masks x and y to the grid field.
func NewPosition(x, y uint8) Position {
	return Position((x&xyMask)<<xShift | y&xyMask)
}

func (p Position) X() int { return int(p>>xShift) & xyMask }
func (p Position) Y() int { return int(p) & xyMask }

// Flags is the bitset of direction and function bits of a LED.
type Flags uint16

const (
	North Flags = 1 << iota
	East
	South
	West
	Up
	Down

	Indicator
	Warning
	FlightMode
	ArmState
	Throttle
)

// Has reports whether all bits of f are set.
func (s Flags) Has(f Flags) bool {
	return s&f == f
}

// LedConfig is one entry of the configuration table.
type LedConfig struct {
	Position Position
	Flags    Flags
}

// At is a convenience constructor.
func At(x, y uint8, flags Flags) LedConfig {
	return LedConfig{Position: NewPosition(x, y), Flags: flags}
}

var defaultConfigs = []LedConfig{
	At(2, 2, South|East|Indicator|ArmState),
	At(2, 1, East|FlightMode|Warning),
	At(2, 0, North|East|Indicator|ArmState),
	At(1, 0, North|FlightMode),
	At(0, 0, North|West|Indicator|ArmState),
	At(0, 1, West|FlightMode|Warning),
	At(0, 2, South|West|Indicator|ArmState),
	At(1, 2, South|FlightMode|Warning),
	At(1, 1, Up|FlightMode|Warning),
	At(1, 1, Up|FlightMode|Warning),
	At(1, 1, Down|FlightMode|Warning),
	At(1, 1, Down|FlightMode|Warning),
}

// DefaultConfigs returns the stock 3x3 layout.
func DefaultConfigs() []LedConfig {
	ret := make([]LedConfig, len(defaultConfigs))
	copy(ret, defaultConfigs)
	return ret
}
