package world

import "math"

// Point is an integer tile coordinate.
type Point struct {
	X, Y int
}

// Map is a rectangular grid of tiles stored row-major, plus ambient moisture.
type Map struct {
	Width    int     `yaml:"width" json:"width"`
	Height   int     `yaml:"height" json:"height"`
	Version  int     `yaml:"version" json:"version"`
	Moisture float64 `yaml:"moisture" json:"moisture"`
	Tiles    []Tile  `yaml:"tiles" json:"tiles"`
}

// NewMap creates a width x height map filled with the given terrain.
func NewMap(width, height int, terrain Terrain) *Map {
	m := &Map{
		Width:  width,
		Height: height,
		Tiles:  make([]Tile, width*height),
	}
	for i := range m.Tiles {
		m.Tiles[i] = Tile{
			Terrain:   terrain,
			Water:     WaterNone,
			Grass:     GrassNone,
			Structure: StructureNone,
		}
	}
	return m
}

// Normalize pads or truncates the tile slice to Width*Height and fills empty layer fields.
func (m *Map) Normalize() {
	n := m.Width * m.Height
	if n < 0 {
		n = 0
	}
	if len(m.Tiles) < n {
		m.Tiles = append(m.Tiles, make([]Tile, n-len(m.Tiles))...)
	}
	m.Tiles = m.Tiles[:n]
	for i := range m.Tiles {
		m.Tiles[i].normalize()
	}
	m.Moisture = math.Max(0, math.Min(100, m.Moisture))
}

// Clone returns a deep copy.
func (m *Map) Clone() *Map {
	c := *m
	c.Tiles = make([]Tile, len(m.Tiles))
	copy(c.Tiles, m.Tiles)
	return &c
}

// InBounds reports whether (x, y) is a tile of the map.
func (m *Map) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.Width && y < m.Height
}

// Index returns the flat index of (x, y). The caller must check bounds.
func (m *Map) Index(x, y int) int {
	return y*m.Width + x
}

// Coords returns the tile coordinate of flat index i.
func (m *Map) Coords(i int) (int, int) {
	return i % m.Width, i / m.Width
}

// At returns the tile at (x, y), or nil when out of bounds.
func (m *Map) At(x, y int) *Tile {
	if !m.InBounds(x, y) {
		return nil
	}
	return &m.Tiles[m.Index(x, y)]
}

// TileAt returns the tile containing the continuous position (fx, fy).
func (m *Map) TileAt(fx, fy float64) *Tile {
	x, y := Floor(fx, fy)
	return m.At(x, y)
}

// Clamp restricts a continuous position to [0, Width-1] x [0, Height-1].
func (m *Map) Clamp(fx, fy float64) (float64, float64) {
	maxX := math.Max(0, float64(m.Width-1))
	maxY := math.Max(0, float64(m.Height-1))
	return math.Max(0, math.Min(maxX, fx)), math.Max(0, math.Min(maxY, fy))
}

// ClampPoint restricts an integer coordinate to the map.
func (m *Map) ClampPoint(x, y int) Point {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if x > m.Width-1 {
		x = m.Width - 1
	}
	if y > m.Height-1 {
		y = m.Height - 1
	}
	return Point{X: x, Y: y}
}

// Floor converts a continuous position to its tile coordinate.
func Floor(fx, fy float64) (int, int) {
	return int(math.Floor(fx)), int(math.Floor(fy))
}

// ColonyTiles returns the coordinates of tiles carrying a colony structure, row-major.
func (m *Map) ColonyTiles() []Point {
	var pts []Point
	for i := range m.Tiles {
		if m.Tiles[i].HasColony() {
			x, y := m.Coords(i)
			pts = append(pts, Point{X: x, Y: y})
		}
	}
	return pts
}
