package systems

import (
	"testing"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/world"
)

// TestStoreWorkerLifecycle verifies ids are stable and removal is immediate.
func TestStoreWorkerLifecycle(t *testing.T) {
	cfg := testConfig(t)
	store := NewStore()

	a := addTestWorker(store, cfg, 1, 1)
	b := addTestWorker(store, cfg, 2, 2)
	if a.Worker.ID == b.Worker.ID {
		t.Fatal("worker ids collide")
	}
	if a.Hydration.Value != cfg.Worker.HydrationMax || a.Worker.Task != components.TaskIdle {
		t.Errorf("new worker state = %+v %+v", a.Hydration, a.Worker)
	}

	aID, bID := a.Worker.ID, b.Worker.ID
	store.RemoveWorker(aID)
	if _, ok := store.Worker(aID); ok {
		t.Error("removed worker still found")
	}

	count := 0
	query := store.workerFilter.Query()
	for query.Next() {
		count++
	}
	if count != 1 {
		t.Errorf("query saw %d workers after removal, want 1", count)
	}
	if ids := store.WorkerIDs(); len(ids) != 1 || ids[0] != bID {
		t.Errorf("WorkerIDs = %v", ids)
	}
}

// TestStoreMarkDead verifies the dead tag stops the worker and is idempotent.
func TestStoreMarkDead(t *testing.T) {
	cfg := testConfig(t)
	store := NewStore()
	w := addTestWorker(store, cfg, 1, 1)
	w.Vel.X = 1
	w.Dest.Active = true
	id := w.Worker.ID

	store.MarkDead(id)
	store.MarkDead(id)

	v, ok := store.Worker(id)
	if !ok {
		t.Fatal("dead worker should remain in the store")
	}
	if !v.Dead || v.Worker.Task != components.TaskDead {
		t.Errorf("worker not tagged dead: %+v", v.Worker)
	}
	if v.Vel.X != 0 || v.Dest.Active {
		t.Error("dead worker still moving")
	}
}

// TestStoreBuildSites verifies construction sites turn into bases with their reserved id.
func TestStoreBuildSites(t *testing.T) {
	store := NewStore()
	id := store.ReserveBaseID()
	store.AddBuildTimer(world.Point{X: 3, Y: 4}, id, 10)

	if _, ok := store.Base(id); ok {
		t.Error("construction site reported as a built base")
	}
	if !store.SiteAt(world.Point{X: 3, Y: 4}) {
		t.Error("SiteAt missed construction site")
	}
	sites := store.BuildSites()
	if len(sites) != 1 || sites[0].BaseID != id || sites[0].Remaining != 10 {
		t.Fatalf("sites = %+v", sites)
	}

	e := store.bases[id]
	store.CompleteBuild(e, components.Base{}, components.Upkeep{Timer: 5})
	base, ok := store.Base(id)
	if !ok {
		t.Fatal("completed base not found")
	}
	if base.Base.ID != id || base.Tile() != (world.Point{X: 3, Y: 4}) {
		t.Errorf("base = %+v at %v", base.Base, base.Tile())
	}
	if len(store.BuildSites()) != 0 {
		t.Error("timer still present after completion")
	}
}

// TestStoreReassignWorkers verifies workers follow a reassignment.
func TestStoreReassignWorkers(t *testing.T) {
	cfg := testConfig(t)
	store := NewStore()
	start := addTestBase(store, 0, 0, true, world.Resources{})
	colony := addTestBase(store, 4, 4, false, world.Resources{})

	w := addTestWorker(store, cfg, 4, 4)
	w.Worker.BaseID = colony
	id := w.Worker.ID

	store.RemoveBase(colony)
	store.ReassignWorkers(colony, start)

	v, _ := store.Worker(id)
	if v.Worker.BaseID != start {
		t.Errorf("base id = %d, want %d", v.Worker.BaseID, start)
	}
	if len(store.Bases()) != 1 {
		t.Errorf("bases = %d, want 1", len(store.Bases()))
	}
}
