package systems

import (
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

// Environment is per-tick state derived from the map and the store:
// the moisture band, the effective terrain table for that band, and the aura sources.
// It is rebuilt by the moisture step and read by every later step in the tick.
// Shared configuration is never modified.
type Environment struct {
	Band    config.Band
	Terrain map[world.Terrain]config.TerrainStats
	Auras   []world.Point

	aura     config.AuraConfig
	radiusSq float64
}

// NewEnvironment derives the environment for the current state without advancing moisture.
func NewEnvironment(cfg *config.Config, m *world.Map, store *Store) *Environment {
	env := &Environment{}
	env.Refresh(cfg, m, store)
	return env
}

// Refresh recomputes band, effective terrain and auras from the current state.
func (e *Environment) Refresh(cfg *config.Config, m *world.Map, store *Store) {
	e.Band = cfg.Moisture.Band(m.Moisture)
	e.Terrain = EffectiveTerrain(cfg, e.Band)
	e.aura = cfg.Upkeep.Aura
	e.radiusSq = cfg.Upkeep.Aura.Radius * cfg.Upkeep.Aura.Radius

	e.Auras = e.Auras[:0]
	query := store.baseFilter.Query()
	for query.Next() {
		pos, _, upkeep := query.Get()
		if !upkeep.Active {
			continue
		}
		x, y := world.Floor(pos.X, pos.Y)
		e.Auras = append(e.Auras, world.Point{X: x, Y: y})
	}
}

// EffectiveTerrain returns the terrain table for a band.
// Road takes its dry variant below the damp threshold; every other entry is the base stats.
func EffectiveTerrain(cfg *config.Config, band config.Band) map[world.Terrain]config.TerrainStats {
	table := make(map[world.Terrain]config.TerrainStats, len(cfg.Terrain))
	for t, stats := range cfg.Terrain {
		table[t] = stats
	}
	if band == config.BandDry {
		road := table[world.TerrainRoad]
		road.BaseSpeed = cfg.Moisture.DryRoad.BaseSpeed
		road.HydrationCost = cfg.Moisture.DryRoad.HydrationCost
		table[world.TerrainRoad] = road
	}
	return table
}

// Stats returns effective stats for a terrain.
func (e *Environment) Stats(t world.Terrain) config.TerrainStats {
	return e.Terrain[t]
}

// InAura reports whether (x, y) lies within the aura radius of any active base.
// The boundary is inclusive.
func (e *Environment) InAura(x, y float64) bool {
	for _, src := range e.Auras {
		dx := x - float64(src.X)
		dy := y - float64(src.Y)
		if dx*dx+dy*dy <= e.radiusSq {
			return true
		}
	}
	return false
}

// AuraConfig returns the aura bonuses in effect.
func (e *Environment) AuraConfig() config.AuraConfig {
	return e.aura
}

// UpdateMoistureAndAuras advances ambient moisture and rebuilds the environment.
func UpdateMoistureAndAuras(cfg *config.Config, m *world.Map, store *Store, env *Environment) {
	m.Moisture = clampMoisture(m.Moisture - cfg.Moisture.DropPerTick)
	env.Refresh(cfg, m, store)
}

func clampMoisture(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
