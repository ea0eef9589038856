package automation

import (
	"cmp"
	"slices"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/systems"
	"github.com/pthm-cable/slimeworks/world"
)

// Planner assigns pioneer, convoy and maintenance orders to workers of owners
// that have automation enabled.
type Planner struct {
	store  *systems.Store
	orders *OrderBook

	auto     map[string]bool
	critical map[uint32][]world.Point // Convoy route per base, base tile first
}

// NewPlanner creates a planner writing into orders.
func NewPlanner(store *systems.Store, orders *OrderBook) *Planner {
	return &Planner{
		store:    store,
		orders:   orders,
		auto:     make(map[string]bool),
		critical: make(map[uint32][]world.Point),
	}
}

// SetAutoMode records whether an owner's workers are automated.
func (p *Planner) SetAutoMode(owner string, enabled bool) {
	if enabled {
		p.auto[owner] = true
		return
	}
	delete(p.auto, owner)
}

// AutoMode reports whether an owner's workers are automated.
func (p *Planner) AutoMode(owner string) bool {
	return p.auto[owner]
}

// CriticalPath returns the cached convoy route of a base.
func (p *Planner) CriticalPath(baseID uint32) []world.Point {
	return p.critical[baseID]
}

// ForgetBase drops cached state for a removed base.
func (p *Planner) ForgetBase(baseID uint32) {
	delete(p.critical, baseID)
}

// Reset drops all cached routes. Auto mode survives.
func (p *Planner) Reset() {
	clear(p.critical)
}

// Plan runs one automation pass.
//
// Alive workers of automated owners are grouped by owner and then by the base
// they serve; a worker whose base is gone serves the starting base. Each group
// plans against the resource tile nearest its base.
func (p *Planner) Plan(cfg *config.Config, m *world.Map, env *systems.Environment, startingBaseID uint32) {
	groups := make(map[string]map[uint32][]systems.WorkerView)
	for _, w := range p.store.Workers() {
		if w.Dead || !p.auto[w.Worker.Owner] {
			continue
		}
		baseID := w.Worker.BaseID
		if _, ok := p.store.Base(baseID); !ok {
			baseID = startingBaseID
		}
		byBase := groups[w.Worker.Owner]
		if byBase == nil {
			byBase = make(map[uint32][]systems.WorkerView)
			groups[w.Worker.Owner] = byBase
		}
		byBase[baseID] = append(byBase[baseID], w)
	}

	for _, owner := range sortedKeys(groups) {
		byBase := groups[owner]
		for _, baseID := range sortedKeys(byBase) {
			base, ok := p.store.Base(baseID)
			if !ok {
				continue
			}
			p.planBase(cfg, m, env, base, byBase[baseID])
		}
	}
}

func (p *Planner) planBase(cfg *config.Config, m *world.Map, env *systems.Environment, base systems.BaseView, workers []systems.WorkerView) {
	origin := base.Tile()
	target, ok := NearestResource(m, origin)
	if !ok {
		return
	}

	auto := cfg.Automation
	convoyPath := systems.FindPath(m, origin, target, routeModel(env, auto.Convoy))
	if len(convoyPath) < 2 {
		return
	}
	p.critical[base.Base.ID] = convoyPath

	if !systems.PathHasSlime(m, convoyPath, auto.TrailThreshold) && !p.hasKind(workers, components.TaskPioneer) {
		p.schedulePioneer(cfg, m, env, base, workers, target)
	}
	p.scheduleMaintenance(cfg, m, env, base, workers, convoyPath)
	p.scheduleConvoy(cfg, m, env, base, workers, target, convoyPath)
}

// schedulePioneer sends one free worker along a slime-blind route and paints the trail.
func (p *Planner) schedulePioneer(cfg *config.Config, m *world.Map, env *systems.Environment, base systems.BaseView, workers []systems.WorkerView, target world.Point) {
	w, ok := p.pickFree(workers)
	if !ok {
		return
	}
	path := systems.FindPath(m, workerTile(m, w), target, routeModel(env, cfg.Automation.Pioneer))
	if len(path) < 2 {
		return
	}
	paint := min(1, cfg.Automation.PioneerSlime)
	for _, pt := range path {
		if tile := m.At(pt.X, pt.Y); tile != nil {
			tile.Slime = max(tile.Slime, paint)
		}
	}
	p.assign(w, &Order{
		Kind:      components.TaskPioneer,
		BaseID:    base.Base.ID,
		Waypoints: systems.RoundTrip(path)[1:],
	})
}

// scheduleMaintenance routes the nearest free worker to the first decayed tile on the critical path.
func (p *Planner) scheduleMaintenance(cfg *config.Config, m *world.Map, env *systems.Environment, base systems.BaseView, workers []systems.WorkerView, critical []world.Point) {
	if p.hasKind(workers, components.TaskMaintenance) {
		return
	}
	origin := base.Tile()
	weak, ok := world.Point{}, false
	for _, pt := range critical {
		if pt == origin {
			continue
		}
		if tile := m.At(pt.X, pt.Y); tile != nil && tile.Slime < cfg.Automation.RepairThreshold {
			weak, ok = pt, true
			break
		}
	}
	if !ok {
		return
	}

	w, ok := p.pickNearestFree(workers, weak)
	if !ok {
		return
	}
	model := routeModel(env, cfg.Automation.Maintenance)
	toWeak := systems.FindPath(m, workerTile(m, w), weak, model)
	back := systems.FindPath(m, weak, origin, model)
	route := systems.MergePaths(toWeak, back)
	if len(route) < 2 {
		return
	}
	p.assign(w, &Order{
		Kind:      components.TaskMaintenance,
		BaseID:    base.Base.ID,
		Waypoints: route[1:],
	})
}

// scheduleConvoy fills free workers into looping resource runs, leaving one spare when possible.
func (p *Planner) scheduleConvoy(cfg *config.Config, m *world.Map, env *systems.Environment, base systems.BaseView, workers []systems.WorkerView, target world.Point, basePath []world.Point) {
	limit := max(1, len(workers)-1)
	current := 0
	for _, w := range workers {
		if p.orders.Kind(w.Worker.ID) == components.TaskConvoy {
			current++
		}
	}

	origin := base.Tile()
	model := routeModel(env, cfg.Automation.Convoy)
	for _, w := range workers {
		if current >= limit {
			return
		}
		if w.Dead || p.orders.Has(w.Worker.ID) {
			continue
		}
		toResource := systems.FindPath(m, workerTile(m, w), target, model)
		if len(toResource) < 2 {
			continue
		}
		back := systems.FindPath(m, target, origin, model)
		if len(back) < 2 {
			continue
		}

		loop := systems.MergePaths(toResource, back)[1:]
		if len(loop) == 0 {
			loop = systems.RoundTrip(basePath)[1:]
		}
		if len(loop) == 0 {
			continue
		}
		p.assign(w, &Order{
			Kind:      components.TaskConvoy,
			BaseID:    base.Base.ID,
			Waypoints: slices.Clone(loop),
			Loop:      slices.Clone(loop),
		})
		current++
	}
}

// assign stores an order, sets the worker's task and starts it moving if idle.
func (p *Planner) assign(w systems.WorkerView, o *Order) {
	p.orders.Set(w.Worker.ID, o)
	w.Worker.Task = o.Kind
	if w.Dest.Active {
		return
	}
	if next, ok := o.Next(); ok {
		*w.Dest = destination(next)
	}
}

func (p *Planner) hasKind(workers []systems.WorkerView, kind components.Task) bool {
	for _, w := range workers {
		if p.orders.Kind(w.Worker.ID) == kind {
			return true
		}
	}
	return false
}

// pickFree returns the first alive worker with no order and no destination.
func (p *Planner) pickFree(workers []systems.WorkerView) (systems.WorkerView, bool) {
	for _, w := range workers {
		if w.Dead || p.orders.Has(w.Worker.ID) || w.Dest.Active {
			continue
		}
		return w, true
	}
	return systems.WorkerView{}, false
}

// pickNearestFree returns the alive worker without an order closest to pt.
func (p *Planner) pickNearestFree(workers []systems.WorkerView, pt world.Point) (systems.WorkerView, bool) {
	var best systems.WorkerView
	found := false
	bestDist := 0.0
	for _, w := range workers {
		if w.Dead || p.orders.Has(w.Worker.ID) {
			continue
		}
		dx := w.Pos.X - float64(pt.X)
		dy := w.Pos.Y - float64(pt.Y)
		if d := dx*dx + dy*dy; !found || d < bestDist {
			best, bestDist, found = w, d, true
		}
	}
	return best, found
}

// NearestResource returns the Manhattan-nearest tile holding biomass or water.
// Ties go to the first tile in row-major order.
func NearestResource(m *world.Map, from world.Point) (world.Point, bool) {
	best, found := world.Point{}, false
	bestDist := 0
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			tile := m.At(x, y)
			if tile.Resources.Biomass <= 0 && tile.Resources.Water <= 0 {
				continue
			}
			d := abs(from.X-x) + abs(from.Y-y)
			if !found || d < bestDist {
				best, bestDist, found = world.Point{X: x, Y: y}, d, true
			}
		}
	}
	return best, found
}

func routeModel(env *systems.Environment, w config.RouteWeights) systems.CostModel {
	return systems.CostModel{Terrain: env.Terrain, Weights: w}
}

func workerTile(m *world.Map, w systems.WorkerView) world.Point {
	x, y := world.Floor(w.Pos.X, w.Pos.Y)
	return m.ClampPoint(x, y)
}

func destination(pt world.Point) components.Destination {
	return components.Destination{X: float64(pt.X), Y: float64(pt.Y), Active: true}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sortedKeys[K cmp.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
