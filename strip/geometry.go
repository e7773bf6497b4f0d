package strip

// Geometry is derived from the active LEDs. The four limits split the grid
// into halves; on odd dimensions the middle line belongs to neither half.
type Geometry struct {
	Width  int
	Height int

	NorthMaxY int
	SouthMinY int
	WestMaxX  int
	EastMinX  int
}

func determineDimensions(configs []LedConfig) (width, height int) {
	for _, c := range configs {
		if x := c.Position.X(); x >= width {
			width = x + 1
		}
		if y := c.Position.Y(); y >= height {
			height = y + 1
		}
	}
	return width, height
}

func (g *Geometry) determineOrientationLimits() {
	heightModifier := g.Height & 1
	widthModifier := g.Width & 1

	g.NorthMaxY = halfLimit(g.Height)
	g.SouthMinY = g.Height/2 + heightModifier
	g.WestMaxX = halfLimit(g.Width)
	g.EastMinX = g.Width/2 + widthModifier
}

// halfLimit is the last coordinate of the north or west half. A single
// row or column is wholly north or west; an empty grid has no half.
func halfLimit(size int) int {
	if size == 1 {
		return xyMask
	}
	return size/2 - 1
}

func newGeometry(configs []LedConfig) Geometry {
	var g Geometry
	g.Width, g.Height = determineDimensions(configs)
	g.determineOrientationLimits()
	return g
}

func (g Geometry) IsNorth(p Position) bool { return p.Y() <= g.NorthMaxY }
func (g Geometry) IsSouth(p Position) bool { return p.Y() >= g.SouthMinY }
func (g Geometry) IsWest(p Position) bool  { return p.X() <= g.WestMaxX }
func (g Geometry) IsEast(p Position) bool  { return p.X() >= g.EastMinX }

// Quadrant is one of the four corners of the grid.
type Quadrant int

const (
	NorthEast Quadrant = iota + 1
	SouthEast
	SouthWest
	NorthWest
)

// InQuadrant reports whether p lies in quadrant q.
func (g Geometry) InQuadrant(p Position, q Quadrant) bool {
	switch q {
	case NorthEast:
		return g.IsNorth(p) && g.IsEast(p)
	case SouthEast:
		return g.IsSouth(p) && g.IsEast(p)
	case SouthWest:
		return g.IsSouth(p) && g.IsWest(p)
	case NorthWest:
		return g.IsNorth(p) && g.IsWest(p)
	}
	return false
}
