package systems

import (
	"math"

	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

// MovementSystem advances unit positions by terrain speed.
type MovementSystem struct {
	store *Store
}

// NewMovementSystem creates a new movement system.
func NewMovementSystem(store *Store) *MovementSystem {
	return &MovementSystem{store: store}
}

// Speed returns the tiles per tick a unit at (x, y) moves.
func Speed(cfg *config.Config, env *Environment, tile *world.Tile, x, y float64) float64 {
	speed := env.Stats(tile.Terrain).BaseSpeed + tile.Slime*cfg.Slime.SpeedBonusMax
	if env.InAura(x, y) {
		speed += env.AuraConfig().SpeedBonus
	}
	return speed
}

// Update runs the movement system.
func (s *MovementSystem) Update(cfg *config.Config, m *world.Map, env *Environment) {
	query := s.store.workerFilter.Query()
	for query.Next() {
		pos, vel, dest, _, _ := query.Get()
		if s.store.IsDead(query.Entity()) {
			vel.Step = 0
			continue
		}

		tile := m.TileAt(pos.X, pos.Y)
		if tile == nil {
			pos.X, pos.Y = m.Clamp(pos.X, pos.Y)
			vel.Step = 0
			continue
		}
		speed := Speed(cfg, env, tile, pos.X, pos.Y)
		startX, startY := pos.X, pos.Y

		if dest.Active {
			dx := dest.X - pos.X
			dy := dest.Y - pos.Y
			dist := math.Hypot(dx, dy)
			if dist <= speed {
				// Arrival snaps exactly to the target
				pos.X, pos.Y = dest.X, dest.Y
				vel.X, vel.Y = 0, 0
				dest.Active = false
			} else {
				vel.X = dx / dist * speed
				vel.Y = dy / dist * speed
				pos.X += vel.X
				pos.Y += vel.Y
			}
		} else if vel.X != 0 || vel.Y != 0 {
			// Raw input is capped at unit length so diagonals are not faster
			if mag := math.Hypot(vel.X, vel.Y); mag > 1 {
				vel.X /= mag
				vel.Y /= mag
			}
			pos.X += vel.X * speed
			pos.Y += vel.Y * speed
		}

		pos.X, pos.Y = m.Clamp(pos.X, pos.Y)
		vel.Step = math.Hypot(pos.X-startX, pos.Y-startY)
	}
}
