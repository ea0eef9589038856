package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

const eps = 1e-9

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

// testMap returns a wet map of uniform terrain.
func testMap(w, h int, terrain world.Terrain) *world.Map {
	m := world.NewMap(w, h, terrain)
	m.Moisture = 80
	return m
}

func addTestWorker(store *Store, cfg *config.Config, x, y float64) WorkerView {
	id := store.AddWorker(WorkerSpec{
		Owner:         "p1",
		X:             x,
		Y:             y,
		HydrationMax:  cfg.Worker.HydrationMax,
		CarryCapacity: cfg.Worker.CarryCapacity,
	})
	v, _ := store.Worker(id)
	return v
}

func addTestBase(store *Store, x, y int, starting bool, stock world.Resources) uint32 {
	return store.AddBase(0, world.Point{X: x, Y: y},
		components.Base{Starting: starting, Stock: stock},
		components.Upkeep{Active: true, Timer: 100},
	)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}
