package game

import (
	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/systems"
	"github.com/pthm-cable/slimeworks/world"
)

// Player commands. Invalid commands are silent no-ops; the returned flag only
// tells callers whether anything changed.

// Join gives a new owner one worker at the starting base and turns on
// automation for them. Owners that already have workers keep them.
func (s *Simulation) Join(owner string) (uint32, bool) {
	s.planner.SetAutoMode(owner, true)
	for _, w := range s.store.Workers() {
		if w.Worker.Owner == owner {
			return 0, false
		}
	}
	base, ok := s.store.Base(s.startingBaseID)
	if !ok {
		return 0, false
	}
	id := s.addWorker(owner, base)
	s.logger.Info("player joined", "owner", owner, "worker_id", id)
	return id, true
}

// Leave removes every worker and order of an owner and forgets their
// automation setting. It returns the number of workers removed.
func (s *Simulation) Leave(owner string) int {
	// Removal moves entities in storage, so ids are collected first
	var ids []uint32
	for _, w := range s.store.Workers() {
		if w.Worker.Owner == owner {
			ids = append(ids, w.Worker.ID)
		}
	}
	for _, id := range ids {
		s.orders.Delete(id)
		s.store.RemoveWorker(id)
	}
	s.planner.SetAutoMode(owner, false)
	s.logger.Info("player left", "owner", owner, "workers_removed", len(ids))
	return len(ids)
}

// SpawnWorker buys a worker at the starting base. The base must be active and
// afford the spawn cost.
func (s *Simulation) SpawnWorker(owner string) (uint32, bool) {
	base, ok := s.store.Base(s.startingBaseID)
	if !ok || !base.Upkeep.Active || !base.Base.CanAfford(s.cfg.Worker.SpawnCost) {
		return 0, false
	}
	base.Base.Pay(s.cfg.Worker.SpawnCost)
	return s.addWorker(owner, base), true
}

func (s *Simulation) addWorker(owner string, base systems.BaseView) uint32 {
	s.collector.RecordSpawn()
	return s.store.AddWorker(systems.WorkerSpec{
		Owner:         owner,
		X:             base.Pos.X,
		Y:             base.Pos.Y,
		BaseID:        base.Base.ID,
		HydrationMax:  s.cfg.Worker.HydrationMax,
		CarryCapacity: s.cfg.Worker.CarryCapacity,
	})
}

// ownedWorker returns an alive worker belonging to owner.
func (s *Simulation) ownedWorker(owner string, id uint32) (systems.WorkerView, bool) {
	w, ok := s.store.Worker(id)
	if !ok || w.Dead || w.Worker.Owner != owner {
		return systems.WorkerView{}, false
	}
	return w, true
}

// MoveWorker sends a worker to the tile containing (x, y), clamped to the map.
// Manual control drops any automation order.
func (s *Simulation) MoveWorker(owner string, id uint32, x, y float64) bool {
	w, ok := s.ownedWorker(owner, id)
	if !ok {
		return false
	}
	tx, ty := world.Floor(x, y)
	p := s.m.ClampPoint(tx, ty)
	s.takeManual(w)
	*w.Dest = components.Destination{X: float64(p.X), Y: float64(p.Y), Active: true}
	return true
}

// SetVelocity turns directional input into a destination offset from the
// worker's position. Velocity is left to the movement system.
func (s *Simulation) SetVelocity(owner string, id uint32, dx, dy float64) bool {
	w, ok := s.ownedWorker(owner, id)
	if !ok {
		return false
	}
	x, y := s.m.Clamp(w.Pos.X+dx, w.Pos.Y+dy)
	s.takeManual(w)
	*w.Vel = components.Velocity{}
	*w.Dest = components.Destination{X: x, Y: y, Active: true}
	return true
}

func (s *Simulation) takeManual(w systems.WorkerView) {
	s.orders.Delete(w.Worker.ID)
	w.Worker.Task = components.TaskManual
}

// BuildColony queues a colony on the worker's tile, funded by the worker's
// base or the starting base if that is gone. Placement and funds are checked
// by the next colonization step; on success the worker joins the new colony.
// It reports whether the request was queued.
func (s *Simulation) BuildColony(owner string, workerID uint32) bool {
	w, ok := s.ownedWorker(owner, workerID)
	if !ok {
		return false
	}
	funder := w.Worker.BaseID
	if _, ok := s.store.Base(funder); !ok {
		funder = s.startingBaseID
	}
	x, y := world.Floor(w.Pos.X, w.Pos.Y)
	s.colonization.Submit(systems.BuildRequest{X: x, Y: y, FundingBase: funder, WorkerID: workerID})
	return true
}

// RequestBuild queues a raw build request.
func (s *Simulation) RequestBuild(req systems.BuildRequest) {
	s.colonization.Submit(req)
}

// SetAutoMode turns automation on or off for an owner.
//
// Turning it off cancels the owner's orders and idles their workers. Turning
// it on releases workers that are parked under manual control.
func (s *Simulation) SetAutoMode(owner string, enabled bool) {
	s.planner.SetAutoMode(owner, enabled)
	if !enabled {
		s.driver.ClearOwner(owner)
		return
	}
	for _, w := range s.store.Workers() {
		if w.Worker.Owner == owner && !w.Dead && w.Worker.Task == components.TaskManual && !w.Dest.Active {
			w.Worker.Task = components.TaskIdle
		}
	}
}

// AutoMode reports whether automation is on for an owner.
func (s *Simulation) AutoMode(owner string) bool {
	return s.planner.AutoMode(owner)
}
