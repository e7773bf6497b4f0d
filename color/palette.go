package color

// ID indexes a Palette.
type ID uint8

const (
	IDBlack ID = iota
	IDWhite
	IDRed
	IDOrange
	IDYellow
	IDLimeGreen
	IDGreen
	IDMintGreen
	IDCyan
	IDLightBlue
	IDBlue
	IDDarkViolet
	IDMagenta
	IDDeepPink
)

// PaletteSize is the number of configurable colors.
const PaletteSize = 16

var defaultColors = [...]HSV{
	Black,
	White,
	Red,
	Orange,
	Yellow,
	LimeGreen,
	Green,
	MintGreen,
	Cyan,
	LightBlue,
	Blue,
	DarkViolet,
	Magenta,
	DeepPink,
}

// Palette holds the configurable colors referenced by the mode color
// tables. Reconfiguring an entry keeps the ID valid but changes what is
// displayed for it.
type Palette [PaletteSize]HSV

// DefaultPalette returns the stock colors; unused slots are black.
func DefaultPalette() *Palette {
	p := &Palette{}
	p.ApplyDefaults()
	return p
}

// ApplyDefaults resets every slot to its stock color.
func (p *Palette) ApplyDefaults() {
	*p = Palette{}
	copy(p[:], defaultColors[:])
}

// Get returns the color for id, black for ids outside the palette.
func (p *Palette) Get(id ID) HSV {
	if int(id) >= len(p) {
		return Black
	}
	return p[id]
}
