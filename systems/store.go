package systems

import (
	"cmp"
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/world"
)

// Store owns the ECS world and the id indices of a single simulation.
// Worker and base ids are stable integers handed out by the store; ark entities
// stay internal to the systems that iterate them.
type Store struct {
	world *ecs.World

	workerMapper *ecs.Map5[components.Position, components.Velocity, components.Destination, components.Hydration, components.Worker]
	colonyMapper *ecs.Map3[components.Position, components.Base, components.Upkeep]
	baseMapper   *ecs.Map2[components.Base, components.Upkeep]
	timerMapper  *ecs.Map2[components.Position, components.BuildTimer]

	workerFilter *ecs.Filter5[components.Position, components.Velocity, components.Destination, components.Hydration, components.Worker]
	baseFilter   *ecs.Filter3[components.Position, components.Base, components.Upkeep]
	timerFilter  *ecs.Filter2[components.Position, components.BuildTimer]

	posMap    *ecs.Map1[components.Position]
	velMap    *ecs.Map1[components.Velocity]
	destMap   *ecs.Map1[components.Destination]
	hydMap    *ecs.Map1[components.Hydration]
	workerMap *ecs.Map1[components.Worker]
	baseMap   *ecs.Map1[components.Base]
	upkeepMap *ecs.Map1[components.Upkeep]
	timerMap  *ecs.Map1[components.BuildTimer]
	deadMap   *ecs.Map1[components.Dead]

	workers map[uint32]ecs.Entity
	bases   map[uint32]ecs.Entity // Built bases and colonies under construction

	nextWorkerID uint32
	nextBaseID   uint32
}

// NewStore creates an empty store.
func NewStore() *Store {
	w := ecs.NewWorld()
	return &Store{
		world: w,
		workerMapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.Destination,
			components.Hydration,
			components.Worker,
		](w),
		colonyMapper: ecs.NewMap3[components.Position, components.Base, components.Upkeep](w),
		baseMapper:   ecs.NewMap2[components.Base, components.Upkeep](w),
		timerMapper:  ecs.NewMap2[components.Position, components.BuildTimer](w),
		workerFilter: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			components.Destination,
			components.Hydration,
			components.Worker,
		](w),
		baseFilter:   ecs.NewFilter3[components.Position, components.Base, components.Upkeep](w),
		timerFilter:  ecs.NewFilter2[components.Position, components.BuildTimer](w),
		posMap:       ecs.NewMap1[components.Position](w),
		velMap:       ecs.NewMap1[components.Velocity](w),
		destMap:      ecs.NewMap1[components.Destination](w),
		hydMap:       ecs.NewMap1[components.Hydration](w),
		workerMap:    ecs.NewMap1[components.Worker](w),
		baseMap:      ecs.NewMap1[components.Base](w),
		upkeepMap:    ecs.NewMap1[components.Upkeep](w),
		timerMap:     ecs.NewMap1[components.BuildTimer](w),
		deadMap:      ecs.NewMap1[components.Dead](w),
		workers:      make(map[uint32]ecs.Entity),
		bases:        make(map[uint32]ecs.Entity),
		nextWorkerID: 1,
		nextBaseID:   1,
	}
}

// WorkerSpec describes a worker to create.
type WorkerSpec struct {
	Owner         string
	X, Y          float64
	BaseID        uint32
	HydrationMax  float64
	CarryCapacity float64
}

// AddWorker creates an idle worker at rest and returns its id.
func (s *Store) AddWorker(spec WorkerSpec) uint32 {
	id := s.nextWorkerID
	s.nextWorkerID++

	pos := components.Position{X: spec.X, Y: spec.Y}
	vel := components.Velocity{}
	dest := components.Destination{X: spec.X, Y: spec.Y}
	hyd := components.Hydration{Value: spec.HydrationMax, Max: spec.HydrationMax}
	wk := components.Worker{
		ID:            id,
		Owner:         spec.Owner,
		BaseID:        spec.BaseID,
		CarryCapacity: spec.CarryCapacity,
		Task:          components.TaskIdle,
	}
	s.workers[id] = s.workerMapper.NewEntity(&pos, &vel, &dest, &hyd, &wk)
	return id
}

// RemoveWorker deletes a worker entity. Unknown ids are ignored.
func (s *Store) RemoveWorker(id uint32) {
	e, ok := s.workers[id]
	if !ok {
		return
	}
	delete(s.workers, id)
	if s.world.Alive(e) {
		s.world.RemoveEntity(e)
	}
}

// WorkerView bundles mutable pointers to one worker's components.
// Pointers are valid until the next structural change to the store.
type WorkerView struct {
	Entity    ecs.Entity
	Pos       *components.Position
	Vel       *components.Velocity
	Dest      *components.Destination
	Hydration *components.Hydration
	Worker    *components.Worker
	Dead      bool
}

// Worker looks up a worker by id.
func (s *Store) Worker(id uint32) (WorkerView, bool) {
	e, ok := s.workers[id]
	if !ok || !s.world.Alive(e) {
		return WorkerView{}, false
	}
	return s.workerView(e), true
}

func (s *Store) workerView(e ecs.Entity) WorkerView {
	return WorkerView{
		Entity:    e,
		Pos:       s.posMap.Get(e),
		Vel:       s.velMap.Get(e),
		Dest:      s.destMap.Get(e),
		Hydration: s.hydMap.Get(e),
		Worker:    s.workerMap.Get(e),
		Dead:      s.deadMap.Has(e),
	}
}

// Workers returns views of all workers ordered by id.
func (s *Store) Workers() []WorkerView {
	views := make([]WorkerView, 0, len(s.workers))
	for _, id := range s.WorkerIDs() {
		views = append(views, s.workerView(s.workers[id]))
	}
	return views
}

// WorkerIDs returns all worker ids in ascending order.
func (s *Store) WorkerIDs() []uint32 {
	ids := make([]uint32, 0, len(s.workers))
	for id := range s.workers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// WorkerCount returns the number of worker entities, dead or alive.
func (s *Store) WorkerCount() int {
	return len(s.workers)
}

// IsDead reports whether the entity carries the Dead tag.
func (s *Store) IsDead(e ecs.Entity) bool {
	return s.deadMap.Has(e)
}

// MarkDead tags a worker dead and stops it. Views taken before the call are
// invalid afterwards. Must not be called during a query.
func (s *Store) MarkDead(id uint32) {
	e, ok := s.workers[id]
	if !ok || !s.world.Alive(e) || s.deadMap.Has(e) {
		return
	}
	s.deadMap.Add(e, &components.Dead{})
	vel := s.velMap.Get(e)
	*vel = components.Velocity{}
	s.destMap.Get(e).Active = false
	s.workerMap.Get(e).Task = components.TaskDead
}

// ReserveBaseID hands out the id a future base will carry.
func (s *Store) ReserveBaseID() uint32 {
	id := s.nextBaseID
	s.nextBaseID++
	return id
}

// AddBase creates a built base at a tile. A zero id reserves a fresh one.
func (s *Store) AddBase(id uint32, p world.Point, base components.Base, upkeep components.Upkeep) uint32 {
	if id == 0 {
		id = s.ReserveBaseID()
	}
	base.ID = id
	pos := components.Position{X: float64(p.X), Y: float64(p.Y)}
	s.bases[id] = s.colonyMapper.NewEntity(&pos, &base, &upkeep)
	return id
}

// AddBuildTimer creates a construction site with a reserved base id.
func (s *Store) AddBuildTimer(p world.Point, baseID uint32, ticks int) {
	pos := components.Position{X: float64(p.X), Y: float64(p.Y)}
	timer := components.BuildTimer{BaseID: baseID, Remaining: ticks}
	s.bases[baseID] = s.timerMapper.NewEntity(&pos, &timer)
}

// CompleteBuild replaces a construction site's timer with a Base and Upkeep.
// Must not be called during a query.
func (s *Store) CompleteBuild(e ecs.Entity, base components.Base, upkeep components.Upkeep) {
	timer := s.timerMap.Get(e)
	base.ID = timer.BaseID
	s.timerMap.Remove(e)
	s.baseMapper.Add(e, &base, &upkeep)
}

// BaseView bundles mutable pointers to one base's components.
type BaseView struct {
	Entity ecs.Entity
	Pos    *components.Position
	Base   *components.Base
	Upkeep *components.Upkeep
}

// Tile returns the base's tile coordinate.
func (b BaseView) Tile() world.Point {
	x, y := world.Floor(b.Pos.X, b.Pos.Y)
	return world.Point{X: x, Y: y}
}

// Base looks up a built base by id. Construction sites are not returned.
func (s *Store) Base(id uint32) (BaseView, bool) {
	e, ok := s.bases[id]
	if !ok || !s.world.Alive(e) || !s.baseMap.Has(e) {
		return BaseView{}, false
	}
	return BaseView{
		Entity: e,
		Pos:    s.posMap.Get(e),
		Base:   s.baseMap.Get(e),
		Upkeep: s.upkeepMap.Get(e),
	}, true
}

// Bases returns views of all built bases ordered by id.
func (s *Store) Bases() []BaseView {
	var views []BaseView
	for _, id := range s.BaseIDs() {
		if v, ok := s.Base(id); ok {
			views = append(views, v)
		}
	}
	return views
}

// BaseIDs returns ids of bases and construction sites in ascending order.
func (s *Store) BaseIDs() []uint32 {
	ids := make([]uint32, 0, len(s.bases))
	for id := range s.bases {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// BuildSite is a colony under construction.
type BuildSite struct {
	BaseID    uint32
	Tile      world.Point
	Remaining int
}

// BuildSites returns all construction sites ordered by reserved id.
func (s *Store) BuildSites() []BuildSite {
	var sites []BuildSite
	query := s.timerFilter.Query()
	for query.Next() {
		pos, timer := query.Get()
		x, y := world.Floor(pos.X, pos.Y)
		sites = append(sites, BuildSite{BaseID: timer.BaseID, Tile: world.Point{X: x, Y: y}, Remaining: timer.Remaining})
	}
	slices.SortFunc(sites, func(a, b BuildSite) int { return cmp.Compare(a.BaseID, b.BaseID) })
	return sites
}

// SiteAt reports whether a base or construction site occupies the tile.
func (s *Store) SiteAt(p world.Point) bool {
	for _, e := range s.bases {
		if !s.world.Alive(e) {
			continue
		}
		pos := s.posMap.Get(e)
		x, y := world.Floor(pos.X, pos.Y)
		if x == p.X && y == p.Y {
			return true
		}
	}
	return false
}

// RemoveBase deletes a base or construction site. Must not be called during a query.
func (s *Store) RemoveBase(id uint32) {
	e, ok := s.bases[id]
	if !ok {
		return
	}
	delete(s.bases, id)
	if s.world.Alive(e) {
		s.world.RemoveEntity(e)
	}
}

// ClearBases removes every base and construction site.
func (s *Store) ClearBases() {
	for _, id := range s.BaseIDs() {
		s.RemoveBase(id)
	}
}

// ReassignWorkers points every worker assigned to from at to.
func (s *Store) ReassignWorkers(from, to uint32) {
	query := s.workerFilter.Query()
	for query.Next() {
		_, _, _, _, wk := query.Get()
		if wk.BaseID == from {
			wk.BaseID = to
		}
	}
}
