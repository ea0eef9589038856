package game

import (
	"testing"

	"github.com/pthm-cable/slimeworks/world"
)

func TestBotsKeepWorkerCount(t *testing.T) {
	sim := newSim(t, testConfig(t), flatMap(8, 4))
	sim.Join("p1")
	bots := &Bots{Owners: []string{"p1"}, Workers: 3, Reserve: 10}

	bots.Update(sim)
	if n := sim.Store().WorkerCount(); n != 3 {
		t.Fatalf("workers = %d, want 3", n)
	}
	bots.Update(sim)
	if n := sim.Store().WorkerCount(); n != 3 {
		t.Errorf("workers = %d after a second update, want 3", n)
	}
	if len(sim.Snapshot().Sites) != 0 || sim.colonization.Pending() != 0 {
		t.Error("bots built while the reserve was not met")
	}
}

func TestBotsFoundColonyAwayFromBase(t *testing.T) {
	sim := newSim(t, testConfig(t), flatMap(10, 4))
	near, _ := sim.Join("p1")
	bots := &Bots{Owners: []string{"p1"}, Workers: 1}

	// Every worker is inside the starting base's aura
	bots.Update(sim)
	if sim.colonization.Pending() != 0 {
		t.Fatal("colony queued next to the base")
	}

	w, _ := sim.Store().Worker(near)
	w.Pos.X, w.Pos.Y = 6.2, 2.5
	bots.Update(sim)
	sim.Step()

	sites := sim.Snapshot().Sites
	if len(sites) != 1 || sites[0].X != 6 || sites[0].Y != 2 {
		t.Fatalf("sites = %+v, want one at (6,2)", sites)
	}
}

func TestBotsWaitForInterval(t *testing.T) {
	sim := newSim(t, testConfig(t), flatMap(8, 4))
	bots := &Bots{Owners: []string{"p1"}, Workers: 1, Interval: 4}

	sim.Step()
	bots.Update(sim)
	if sim.Store().WorkerCount() != 0 {
		t.Error("bots acted off interval")
	}
	steps(sim, 3)
	bots.Update(sim)
	if sim.Store().WorkerCount() != 1 {
		t.Error("bots did not act on interval")
	}
}

func TestFarFrom(t *testing.T) {
	taken := []world.Point{{X: 0, Y: 0}}
	if !farFrom(world.Point{X: 3, Y: 4}, taken, 25) {
		t.Error("distance equal to the spacing should be far enough")
	}
	if farFrom(world.Point{X: 3, Y: 3}, taken, 25) {
		t.Error("point inside the spacing reported far")
	}
}
