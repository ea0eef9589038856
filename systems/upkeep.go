package systems

import (
	"log/slog"

	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

// Collapse records a colony removed after sustained dormancy.
type Collapse struct {
	BaseID uint32
	Tile   world.Point
}

// UpkeepSystem charges periodic upkeep and collapses colonies that stay dormant.
type UpkeepSystem struct {
	store  *Store
	logger *slog.Logger

	collapsed []Collapse
}

// NewUpkeepSystem creates a new upkeep system. A nil logger uses slog.Default().
func NewUpkeepSystem(store *Store, logger *slog.Logger) *UpkeepSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpkeepSystem{store: store, logger: logger}
}

// Update advances every base by one tick and returns the colonies that collapsed.
//
// An inactive base first accrues a dormant tick; a non-starting colony whose streak
// reaches the collapse threshold is removed before its timer is considered. Otherwise the
// timer counts down and, on expiry, the upkeep is charged: paying reactivates the base and
// clears the streak, failing leaves it inactive.
func (s *UpkeepSystem) Update(cfg *config.Config, m *world.Map, startingBaseID uint32) []Collapse {
	s.collapsed = s.collapsed[:0]
	threshold := cfg.Derived.DormantCollapseTicks

	query := s.store.baseFilter.Query()
	for query.Next() {
		pos, base, upkeep := query.Get()

		if !upkeep.Active {
			upkeep.Dormant++
			if !base.Starting && upkeep.Dormant >= threshold {
				x, y := world.Floor(pos.X, pos.Y)
				s.collapsed = append(s.collapsed, Collapse{BaseID: base.ID, Tile: world.Point{X: x, Y: y}})
				continue
			}
		}

		upkeep.Timer--
		if upkeep.Timer > 0 {
			continue
		}
		upkeep.Timer = cfg.Derived.UpkeepIntervalTicks

		cost := cfg.Upkeep.Colony
		if base.Starting {
			cost = cfg.Upkeep.Base
		}
		if base.CanAfford(cost) {
			base.Pay(cost)
			upkeep.Active = true
			upkeep.Dormant = 0
		} else {
			upkeep.Active = false
		}
	}

	for _, c := range s.collapsed {
		s.store.RemoveBase(c.BaseID)
		if tile := m.At(c.Tile.X, c.Tile.Y); tile != nil {
			tile.Structure = world.StructureNone
		}
		s.store.ReassignWorkers(c.BaseID, startingBaseID)
		s.logger.Info("colony collapsed", "base_id", c.BaseID, "x", c.Tile.X, "y", c.Tile.Y)
	}
	return s.collapsed
}
