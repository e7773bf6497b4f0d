package layer

import (
	"lautenbacher.net/fcleds/color"
	"lautenbacher.net/fcleds/flight"
	"lautenbacher.net/fcleds/strip"
)

// ModeColors are the palette entries used for each direction in one
// flight mode.
type ModeColors struct {
	North color.ID
	East  color.ID
	South color.ID
	West  color.ID
	Up    color.ID
	Down  color.ID
}

var (
	OrientationColors = ModeColors{color.IDWhite, color.IDDarkViolet, color.IDRed, color.IDDeepPink, color.IDBlue, color.IDOrange}
	HeadfreeColors    = ModeColors{color.IDLimeGreen, color.IDDarkViolet, color.IDOrange, color.IDDeepPink, color.IDBlue, color.IDOrange}
	HorizonColors     = ModeColors{color.IDBlue, color.IDDarkViolet, color.IDYellow, color.IDDeepPink, color.IDBlue, color.IDOrange}
	AngleColors       = ModeColors{color.IDCyan, color.IDDarkViolet, color.IDYellow, color.IDDeepPink, color.IDBlue, color.IDOrange}
	MagColors         = ModeColors{color.IDMintGreen, color.IDDarkViolet, color.IDOrange, color.IDDeepPink, color.IDBlue, color.IDOrange}
	BaroColors        = ModeColors{color.IDLightBlue, color.IDDarkViolet, color.IDRed, color.IDDeepPink, color.IDBlue, color.IDOrange}
)

// modePriority lists the overlays; only the first active mode is drawn.
var modePriority = []struct {
	mode   flight.Modes
	colors *ModeColors
}{
	{flight.Headfree, &HeadfreeColors},
	{flight.Mag, &MagColors},
	{flight.Baro, &BaroColors},
	{flight.Horizon, &HorizonColors},
	{flight.Angle, &AngleColors},
}

// directionalSteps run in order, so a LED matching several directions
// ends up with the color of the last matching step.
var directionalSteps = []struct {
	flag strip.Flags
	slot func(*ModeColors) color.ID
	in   func(strip.Geometry, strip.Position) bool
}{
	{strip.Up, func(m *ModeColors) color.ID { return m.Up }, anywhere},
	{strip.Down, func(m *ModeColors) color.ID { return m.Down }, anywhere},
	{strip.West, func(m *ModeColors) color.ID { return m.West }, strip.Geometry.IsWest},
	{strip.East, func(m *ModeColors) color.ID { return m.East }, strip.Geometry.IsEast},
	{strip.North, func(m *ModeColors) color.ID { return m.North }, strip.Geometry.IsNorth},
	{strip.South, func(m *ModeColors) color.ID { return m.South }, strip.Geometry.IsSouth},
}

func anywhere(strip.Geometry, strip.Position) bool { return true }

// ModeLayer is the base layer. It blackens every active LED, then shows
// the arm state or the directional colors of the active flight mode.
type ModeLayer struct{}

func (ModeLayer) Apply(f *Frame) {
	geo := f.Strip.Geometry()
	f.each(func(i int, c strip.LedConfig) {
		f.Out.SetColor(i, color.Black)

		if !c.Flags.Has(strip.FlightMode) {
			if c.Flags.Has(strip.ArmState) {
				if f.Flight.Armed {
					f.Out.SetColor(i, color.Blue)
				} else {
					f.Out.SetColor(i, color.Green)
				}
			}
			return
		}

		applyDirectional(f, geo, i, c, &OrientationColors)
		for _, m := range modePriority {
			if f.Flight.Modes.Has(m.mode) {
				applyDirectional(f, geo, i, c, m.colors)
				break
			}
		}
	})
}

func applyDirectional(f *Frame, geo strip.Geometry, i int, c strip.LedConfig, colors *ModeColors) {
	for _, step := range directionalSteps {
		if c.Flags.Has(step.flag) && step.in(geo, c.Position) {
			f.Out.SetColor(i, f.Palette.Get(step.slot(colors)))
		}
	}
}
