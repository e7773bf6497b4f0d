package color

import (
	"errors"
	"fmt"
	"strings"

	"lautenbacher.net/fcleds/util"
)

var (
	ErrIndexOutOfRange  = errors.New("color index out of range")
	ErrComponentRange   = errors.New("color component out of range")
	ErrMissingComponent = errors.New("color component missing")
)

const componentCount = 3

var componentNames = [componentCount]string{"hue", "saturation", "value"}

// ParseColor decodes an "H,S,V" descriptor into slot index. On any
// failure the slot is reset to black; other slots are never touched.
// The value component may be empty ("H,S,") and then decodes as 0.
func (p *Palette) ParseColor(index int, text string) error {
	if index < 0 || index >= len(p) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	color := &p[index]
	remaining := text
	var err error

	for component := 0; err == nil && component < componentCount; component++ {
		val := uint16(util.Atoi(remaining))
		switch component {
		case 0:
			if val > HueMax {
				err = fmt.Errorf("%w: %s %d", ErrComponentRange, componentNames[component], val)
				continue
			}
			color.H = val
		case 1:
			if val > SaturationMax {
				err = fmt.Errorf("%w: %s %d", ErrComponentRange, componentNames[component], val)
				continue
			}
			color.S = uint8(val)
		case 2:
			if val > ValueMax {
				err = fmt.Errorf("%w: %s %d", ErrComponentRange, componentNames[component], val)
				continue
			}
			color.V = uint8(val)
		}

		if comma := strings.IndexByte(remaining, ','); comma >= 0 {
			remaining = remaining[comma+1:]
		} else if component < componentCount-1 {
			err = fmt.Errorf("%w: %s", ErrMissingComponent, componentNames[component+1])
		}
	}

	if err != nil {
		*color = HSV{}
	}
	return err
}

// FormatColor encodes slot index as "H,S,V"; it returns "" for an index
// outside the palette.
func (p *Palette) FormatColor(index int) string {
	if index < 0 || index >= len(p) {
		return ""
	}
	return p[index].String()
}

func (s HSV) String() string {
	return fmt.Sprintf("%d,%d,%d", s.H, s.S, s.V)
}
