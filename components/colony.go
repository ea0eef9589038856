package components

import "github.com/pthm-cable/slimeworks/world"

// Base holds a built base or colony. The starting base never collapses.
type Base struct {
	ID       uint32
	Starting bool
	Stock    world.Resources
}

// CanAfford reports whether the stock covers cost in both resources.
func (b *Base) CanAfford(cost world.Resources) bool {
	return b.Stock.Biomass >= cost.Biomass && b.Stock.Water >= cost.Water
}

// Pay debits cost from the stock. Callers check CanAfford first.
func (b *Base) Pay(cost world.Resources) {
	b.Stock.Biomass -= cost.Biomass
	b.Stock.Water -= cost.Water
}

// Upkeep tracks the periodic payment state of a base.
type Upkeep struct {
	Active  bool
	Timer   int // Ticks until the next charge
	Dormant int // Consecutive inactive ticks
}

// BuildTimer marks a colony under construction.
// BaseID is reserved at request time and carried over to the finished Base.
type BuildTimer struct {
	BaseID    uint32
	Remaining int
}
