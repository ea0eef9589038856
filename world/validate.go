package world

import (
	"errors"
	"fmt"
)

var (
	// ErrBadDimensions is returned for maps whose tile count does not match width x height.
	ErrBadDimensions = errors.New("tile count does not match dimensions")
	// ErrInvalidTile is returned for tiles that break placement rules.
	ErrInvalidTile = errors.New("invalid tile")
)

// Validate checks the placement invariants of every tile.
func Validate(m *Map) error {
	if m.Width <= 0 || m.Height <= 0 || len(m.Tiles) != m.Width*m.Height {
		return fmt.Errorf("%w: %dx%d with %d tiles", ErrBadDimensions, m.Width, m.Height, len(m.Tiles))
	}
	for i := range m.Tiles {
		if err := validateTile(&m.Tiles[i]); err != nil {
			x, y := m.Coords(i)
			return fmt.Errorf("tile (%d,%d): %w", x, y, err)
		}
	}
	return nil
}

func validateTile(t *Tile) error {
	if !t.Terrain.Valid() {
		return fmt.Errorf("%w: unknown terrain %q", ErrInvalidTile, t.Terrain)
	}
	if t.Terrain == TerrainCliff && t.Structure != StructureNone {
		return fmt.Errorf("%w: cliff cannot bear a structure", ErrInvalidTile)
	}
	if t.Structure == StructureColony && !ColonyTerrain(t) {
		return fmt.Errorf("%w: colony on %s/%s", ErrInvalidTile, t.Terrain, t.Water)
	}
	if t.Structure == StructureBridge && t.Water != WaterFull {
		return fmt.Errorf("%w: bridge must span full water", ErrInvalidTile)
	}
	if t.Slime < 0 || t.Slime > 1 {
		return fmt.Errorf("%w: slime %v out of range", ErrInvalidTile, t.Slime)
	}
	if t.Resources.Biomass < 0 || t.Resources.Water < 0 {
		return fmt.Errorf("%w: negative resources", ErrInvalidTile)
	}
	return nil
}

// ColonyTerrain reports whether a colony may stand on t.
// Rock, Cliff and full water never carry one.
func ColonyTerrain(t *Tile) bool {
	switch {
	case t.Terrain == TerrainRock, t.Terrain == TerrainCliff:
		return false
	case t.Water == WaterFull:
		return false
	}
	return true
}
