package game

import (
	"github.com/pthm-cable/slimeworks/world"
)

// Bots plays owners in headless runs. Automation does the hauling; bots only
// buy workers and found colonies, one decision per owner set every Interval ticks.
type Bots struct {
	Owners   []string
	Workers  int     // Alive workers each owner tries to keep
	Reserve  float64 // Multiple of the build cost the starting base keeps back
	Interval int     // Ticks between decisions (0 = every tick)
}

// Update makes the bots' decisions for the current tick.
func (b *Bots) Update(s *Simulation) {
	if b.Interval > 1 && s.Tick()%b.Interval != 0 {
		return
	}

	alive := make(map[string]int, len(b.Owners))
	for _, w := range s.store.Workers() {
		if !w.Dead {
			alive[w.Worker.Owner]++
		}
	}
	for _, owner := range b.Owners {
		for n := alive[owner]; n < b.Workers; n++ {
			if _, ok := s.SpawnWorker(owner); !ok {
				break
			}
		}
	}

	b.found(s)
}

// found queues at most one colony, from the first worker standing far enough
// from every base and construction site.
func (b *Bots) found(s *Simulation) {
	start, ok := s.store.Base(s.startingBaseID)
	if !ok {
		return
	}
	cost := s.cfg.Colony.BuildCost
	need := world.Resources{
		Biomass: cost.Biomass * (1 + b.Reserve),
		Water:   cost.Water * (1 + b.Reserve),
	}
	if !start.Base.CanAfford(need) {
		return
	}

	var taken []world.Point
	for _, base := range s.store.Bases() {
		taken = append(taken, base.Tile())
	}
	for _, site := range s.store.BuildSites() {
		taken = append(taken, site.Tile)
	}
	spacingSq := s.cfg.Derived.AuraRadiusSq

	owners := make(map[string]bool, len(b.Owners))
	for _, o := range b.Owners {
		owners[o] = true
	}
	for _, w := range s.store.Workers() {
		if w.Dead || !owners[w.Worker.Owner] {
			continue
		}
		x, y := world.Floor(w.Pos.X, w.Pos.Y)
		if farFrom(world.Point{X: x, Y: y}, taken, spacingSq) {
			s.BuildColony(w.Worker.Owner, w.Worker.ID)
			return
		}
	}
}

func farFrom(p world.Point, taken []world.Point, minSq float64) bool {
	for _, t := range taken {
		dx, dy := float64(p.X-t.X), float64(p.Y-t.Y)
		if dx*dx+dy*dy < minSq {
			return false
		}
	}
	return true
}
