package strip

import (
	"errors"
	"fmt"
	"strings"

	"lautenbacher.net/fcleds/util"
)

var (
	ErrIndexOutOfRange  = errors.New("led index out of range")
	ErrMissingSeparator = errors.New("led descriptor separator missing")
)

type parseState int

const (
	xCoordinate parseState = iota
	yCoordinate
	directions
	functions
	parseStateCount
)

// chunkBufferSize bounds each field. Characters past it are dropped.
const chunkBufferSize = 10

// endOfText terminates the last field.
const endOfText = 0

var chunkSeparators = [parseStateCount]byte{',', ':', ':', endOfText}

var fieldNames = [parseStateCount]string{"x", "y", "directions", "functions"}

var directionCodes = []struct {
	code byte
	flag Flags
}{
	{'N', North},
	{'E', East},
	{'S', South},
	{'W', West},
	{'U', Up},
	{'D', Down},
}

var functionCodes = []struct {
	code byte
	flag Flags
}{
	{'I', Indicator},
	{'W', Warning},
	{'F', FlightMode},
	{'A', ArmState},
	{'T', Throttle},
}

// ParseLedConfig decodes an "X,Y:DIRS:FUNCS" descriptor into entry index.
// A malformed descriptor clears the entry. The geometry is reevaluated in
// both cases; an index out of range is rejected without any change.
func (s *State) ParseLedConfig(index int, text string) error {
	if err := checkIndex(index); err != nil {
		return err
	}

	c, err := Parse(text)
	if err != nil {
		s.clear(index)
	} else {
		s.configs[index] = c
		s.used[index] = true
	}
	s.Reevaluate()
	return err
}

// GenerateLedConfig encodes entry index; it returns "" for an index
// outside the table.
func (s *State) GenerateLedConfig(index int) string {
	if checkIndex(index) != nil {
		return ""
	}
	return Format(s.configs[index])
}

// Parse decodes a single descriptor. Unknown direction or function
// letters are ignored.
func Parse(text string) (LedConfig, error) {
	var x, y uint8
	var flags Flags

	pos := 0
	for state := xCoordinate; state < parseStateCount; state++ {
		chunk, next, ok := nextChunk(text, pos, chunkSeparators[state])
		if !ok {
			return LedConfig{}, fmt.Errorf("%w after %s field", ErrMissingSeparator, fieldNames[state])
		}
		pos = next

		switch state {
		case xCoordinate:
			x = uint8(util.Atoi(chunk))
		case yCoordinate:
			y = uint8(util.Atoi(chunk))
		case directions:
			for i := 0; i < len(chunk); i++ {
				for _, m := range directionCodes {
					if m.code == chunk[i] {
						flags |= m.flag
						break
					}
				}
			}
		case functions:
			for i := 0; i < len(chunk); i++ {
				for _, m := range functionCodes {
					if m.code == chunk[i] {
						flags |= m.flag
						break
					}
				}
			}
		}
	}
	return LedConfig{Position: NewPosition(x, y), Flags: flags}, nil
}

// nextChunk scans from pos to the separator. It returns at most
// chunkBufferSize characters of the field and the offset after the
// separator. A NUL byte ends the text.
func nextChunk(text string, pos int, sep byte) (string, int, bool) {
	end := pos
	for end < len(text) && text[end] != endOfText && text[end] != sep {
		end++
	}

	found := end < len(text) && text[end] == sep
	if sep == endOfText {
		found = end == len(text) || text[end] == endOfText
	}
	if !found {
		return "", end, false
	}

	chunk := text[pos:end]
	if len(chunk) > chunkBufferSize {
		chunk = chunk[:chunkBufferSize]
	}
	return chunk, end + 1, true
}

// Format encodes c with only the bits that are set, letters in table
// order.
func Format(c LedConfig) string {
	var dirs, funcs strings.Builder
	for _, m := range directionCodes {
		if c.Flags&m.flag != 0 {
			dirs.WriteByte(m.code)
		}
	}
	for _, m := range functionCodes {
		if c.Flags&m.flag != 0 {
			funcs.WriteByte(m.code)
		}
	}
	return fmt.Sprintf("%d,%d:%s:%s", c.Position.X(), c.Position.Y(), dirs.String(), funcs.String())
}
