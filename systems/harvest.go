package systems

import "github.com/pthm-cable/slimeworks/world"

// HarvestSystem moves resources from tiles into worker cargo and from cargo into bases.
type HarvestSystem struct {
	store *Store
}

// NewHarvestSystem creates a new harvest system.
func NewHarvestSystem(store *Store) *HarvestSystem {
	return &HarvestSystem{store: store}
}

// Update runs the harvest system. startingBaseID receives cargo of workers whose base is gone.
func (s *HarvestSystem) Update(m *world.Map, startingBaseID uint32) {
	query := s.store.workerFilter.Query()
	for query.Next() {
		pos, _, _, hyd, wk := query.Get()
		if s.store.IsDead(query.Entity()) {
			continue
		}
		x, y := world.Floor(pos.X, pos.Y)
		tile := m.At(x, y)
		if tile == nil {
			continue
		}

		base, ok := s.store.Base(wk.BaseID)
		if !ok {
			base, ok = s.store.Base(startingBaseID)
		}
		if ok && base.Tile() == (world.Point{X: x, Y: y}) {
			base.Base.Stock.Biomass += wk.CarryBiomass
			base.Base.Stock.Water += wk.CarryWater
			wk.CarryBiomass = 0
			wk.CarryWater = 0
			hyd.Value = hyd.Max
			continue
		}

		free := wk.FreeCapacity()
		if free <= 0 {
			continue
		}
		// One resource kind per tick, biomass first
		if tile.Resources.Biomass > 0 {
			amount := min(free, tile.Resources.Biomass)
			tile.Resources.Biomass -= amount
			wk.CarryBiomass += amount
			continue
		}
		if tile.Resources.Water > 0 {
			amount := min(free, tile.Resources.Water)
			tile.Resources.Water -= amount
			wk.CarryWater += amount
		}
	}
}
