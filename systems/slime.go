package systems

import (
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

// SlimeSystem deposits slime under moving units and decays it everywhere.
type SlimeSystem struct {
	store *Store
}

// NewSlimeSystem creates a new slime system.
func NewSlimeSystem(store *Store) *SlimeSystem {
	return &SlimeSystem{store: store}
}

// Deposit adds slime proportional to distance travelled and terrain weight.
func (s *SlimeSystem) Deposit(cfg *config.Config, m *world.Map, env *Environment) {
	query := s.store.workerFilter.Query()
	for query.Next() {
		pos, vel, _, _, _ := query.Get()
		if vel.Step <= 0 || s.store.IsDead(query.Entity()) {
			continue
		}
		tile := m.TileAt(pos.X, pos.Y)
		if tile == nil {
			continue
		}
		tile.AddSlime(cfg.Slime.DepositRate * vel.Step * env.Stats(tile.Terrain).SlimeWeight)
	}
}

// Decay lowers slime on every tile by the band and terrain rate.
// Tiles inside an active aura decay slower.
func (s *SlimeSystem) Decay(cfg *config.Config, m *world.Map, env *Environment) {
	mult := env.AuraConfig().SlimeDecayMultiplier
	for i := range m.Tiles {
		tile := &m.Tiles[i]
		if tile.Slime <= 0 {
			continue
		}
		decay := cfg.Slime.Decay(env.Band, tile.Terrain)
		x, y := m.Coords(i)
		if env.InAura(float64(x), float64(y)) {
			decay *= mult
		}
		tile.AddSlime(-decay)
	}
}
