package systems

import (
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

// HydrationSystem charges movement against hydration, refills at water
// and colonies, and kills units that run dry on hard terrain.
type HydrationSystem struct {
	store *Store

	dying []uint32 // Worker ids
}

// NewHydrationSystem creates a new hydration system.
func NewHydrationSystem(store *Store) *HydrationSystem {
	return &HydrationSystem{store: store}
}

// Update runs the hydration system.
func (s *HydrationSystem) Update(cfg *config.Config, m *world.Map, env *Environment) {
	s.dying = s.dying[:0]
	aura := env.AuraConfig()

	query := s.store.workerFilter.Query()
	for query.Next() {
		e := query.Entity()
		pos, vel, _, hyd, wk := query.Get()
		if s.store.IsDead(e) {
			continue
		}
		tile := m.TileAt(pos.X, pos.Y)
		if tile == nil {
			continue
		}
		stats := env.Stats(tile.Terrain)

		if vel.Step > 0 {
			cost := stats.HydrationCost * (1 - tile.Slime*cfg.Slime.HydrationSaveMax)
			if env.InAura(pos.X, pos.Y) {
				cost *= aura.HydrationHardMultiplier
			}
			hyd.Value -= cost
		}
		if tile.Resources.Water > 0 || tile.HasColony() {
			hyd.Value = hyd.Max
		}
		hyd.Value = max(0, min(hyd.Max, hyd.Value))

		if hyd.Value == 0 && stats.Hard {
			s.dying = append(s.dying, wk.ID)
		}
	}

	// Tagging changes archetypes, so it waits until the query is done
	for _, id := range s.dying {
		s.store.MarkDead(id)
	}
}

// Deaths returns the number of units that died during the last Update.
func (s *HydrationSystem) Deaths() int {
	return len(s.dying)
}
