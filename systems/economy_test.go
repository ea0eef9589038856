package systems

import (
	"testing"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/world"
)

func TestHarvestOneKindPerTick(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	m.At(5, 5).Resources = world.Resources{Biomass: 3, Water: 4}
	store := NewStore()
	start := addTestBase(store, 0, 0, true, world.Resources{})
	w := addTestWorker(store, cfg, 5.5, 5.5)
	w.Worker.BaseID = start

	hs := NewHarvestSystem(store)
	hs.Update(m, start)
	v, _ := store.Worker(w.Worker.ID)
	if v.Worker.CarryBiomass != 3 || v.Worker.CarryWater != 0 {
		t.Errorf("first tick cargo = %v/%v, want 3/0", v.Worker.CarryBiomass, v.Worker.CarryWater)
	}

	hs.Update(m, start)
	if v.Worker.CarryWater != 2 {
		t.Errorf("water = %v, want 2 (capacity bound)", v.Worker.CarryWater)
	}
	if got := m.At(5, 5).Resources; got.Biomass != 0 || got.Water != 2 {
		t.Errorf("tile resources = %+v", got)
	}

	hs.Update(m, start)
	if v.Worker.Carried() != cfg.Worker.CarryCapacity {
		t.Errorf("cargo %v exceeds capacity", v.Worker.Carried())
	}
}

func TestHarvestDeliversAndRefills(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	store := NewStore()
	start := addTestBase(store, 2, 2, true, world.Resources{Biomass: 10, Water: 10})
	w := addTestWorker(store, cfg, 2.4, 2.6)
	w.Worker.BaseID = 99 // Missing base falls back to the starting one
	w.Worker.CarryBiomass = 3
	w.Worker.CarryWater = 1
	w.Hydration.Value = 2

	NewHarvestSystem(store).Update(m, start)

	b, _ := store.Base(start)
	if b.Base.Stock.Biomass != 13 || b.Base.Stock.Water != 11 {
		t.Errorf("stock = %+v, want 13/11", b.Base.Stock)
	}
	v, _ := store.Worker(w.Worker.ID)
	if v.Worker.Carried() != 0 || v.Hydration.Value != cfg.Worker.HydrationMax {
		t.Errorf("worker after delivery: cargo %v hydration %v", v.Worker.Carried(), v.Hydration.Value)
	}
}

// TestColonizationExactFunds walks a colony from request to completion.
func TestColonizationExactFunds(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(20, 20, world.TerrainDirt)
	store := NewStore()
	start := addTestBase(store, 0, 0, true, cfg.Colony.BuildCost)
	w := addTestWorker(store, cfg, 8.5, 8.5)
	w.Worker.BaseID = start

	cs := NewColonizationSystem(store, nil)
	cs.Submit(BuildRequest{X: 8, Y: 8, FundingBase: start, WorkerID: w.Worker.ID})
	cs.Update(cfg, m)

	res := cs.Results()
	if len(res) != 1 || !res[0].Accepted {
		t.Fatalf("results = %+v", res)
	}
	id := res[0].BaseID
	b, _ := store.Base(start)
	if !b.Base.Stock.Empty() {
		t.Errorf("funder stock = %+v, want zero", b.Base.Stock)
	}
	if v, _ := store.Worker(w.Worker.ID); v.Worker.BaseID != id {
		t.Errorf("worker base = %d, want %d", v.Worker.BaseID, id)
	}
	sites := store.BuildSites()
	if len(sites) != 1 || sites[0].Remaining != cfg.Derived.BuildTicks {
		t.Fatalf("sites = %+v", sites)
	}

	for i := 0; i < cfg.Derived.BuildTicks-1; i++ {
		cs.Update(cfg, m)
	}
	if m.At(8, 8).Structure != world.StructureNone {
		t.Fatal("colony completed one tick early")
	}

	cs.Update(cfg, m)
	if m.At(8, 8).Structure != world.StructureColony {
		t.Fatal("colony not completed after build ticks")
	}
	if len(store.BuildSites()) != 0 {
		t.Error("timer entity still present")
	}
	colony, ok := store.Base(id)
	if !ok {
		t.Fatal("colony base missing")
	}
	if colony.Upkeep.Active || !colony.Base.Stock.Empty() || colony.Base.Starting {
		t.Errorf("new colony = %+v %+v", colony.Base, colony.Upkeep)
	}
	if colony.Upkeep.Timer != cfg.Derived.UpkeepIntervalTicks {
		t.Errorf("upkeep timer = %d", colony.Upkeep.Timer)
	}
}

func TestColonizationRejections(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	m.At(1, 1).Terrain = world.TerrainRock
	m.At(2, 1).Water = world.WaterFull
	m.At(3, 1).Structure = world.StructureBridge
	m.At(4, 1).Terrain = world.TerrainCliff

	store := NewStore()
	rich := world.Resources{Biomass: 1000, Water: 1000}
	start := addTestBase(store, 5, 5, true, rich)
	poor := addTestBase(store, 7, 7, false, world.Resources{Biomass: 29, Water: 100})

	cases := []struct {
		name string
		req  BuildRequest
	}{
		{"out of bounds", BuildRequest{X: -1, Y: 0, FundingBase: start}},
		{"rock", BuildRequest{X: 1, Y: 1, FundingBase: start}},
		{"full water", BuildRequest{X: 2, Y: 1, FundingBase: start}},
		{"structure", BuildRequest{X: 3, Y: 1, FundingBase: start}},
		{"cliff", BuildRequest{X: 4, Y: 1, FundingBase: start}},
		{"occupied by base", BuildRequest{X: 5, Y: 5, FundingBase: start}},
		{"missing funder", BuildRequest{X: 6, Y: 6, FundingBase: 42}},
		{"short funds", BuildRequest{X: 6, Y: 6, FundingBase: poor}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cs := NewColonizationSystem(store, nil)
			cs.Submit(c.req)
			cs.Update(cfg, m)
			if res := cs.Results(); len(res) != 1 || res[0].Accepted {
				t.Errorf("request accepted: %+v", res)
			}
		})
	}

	if b, _ := store.Base(start); b.Base.Stock != rich {
		t.Errorf("rejections debited funder: %+v", b.Base.Stock)
	}
	if b, _ := store.Base(poor); b.Base.Stock.Biomass != 29 {
		t.Errorf("short funder debited: %+v", b.Base.Stock)
	}
	if len(store.BuildSites()) != 0 {
		t.Error("rejected request created a site")
	}
}

func TestColonizationDuplicateSite(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainSand)
	store := NewStore()
	start := addTestBase(store, 0, 0, true, world.Resources{Biomass: 100, Water: 100})

	cs := NewColonizationSystem(store, nil)
	cs.Submit(BuildRequest{X: 4, Y: 4, FundingBase: start})
	cs.Submit(BuildRequest{X: 4, Y: 4, FundingBase: start})
	cs.Update(cfg, m)

	res := cs.Results()
	if len(res) != 2 || !res[0].Accepted || res[1].Accepted {
		t.Fatalf("results = %+v", res)
	}
	if b, _ := store.Base(start); b.Base.Stock.Biomass != 70 || b.Base.Stock.Water != 80 {
		t.Errorf("stock = %+v, want one debit", b.Base.Stock)
	}
}

// TestUpkeepCollapseTiming verifies a dormant colony collapses after exactly the threshold.
func TestUpkeepCollapseTiming(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	store := NewStore()
	start := addTestBase(store, 0, 0, true, world.Resources{Biomass: 1000, Water: 1000})
	colony := store.AddBase(0, world.Point{X: 6, Y: 6},
		components.Base{},
		components.Upkeep{Active: false, Timer: cfg.Derived.UpkeepIntervalTicks},
	)
	m.At(6, 6).Structure = world.StructureColony
	w := addTestWorker(store, cfg, 6.5, 6.5)
	w.Worker.BaseID = colony

	us := NewUpkeepSystem(store, nil)
	for i := 1; i < cfg.Derived.DormantCollapseTicks; i++ {
		if got := us.Update(cfg, m, start); len(got) != 0 {
			t.Fatalf("collapsed early at tick %d", i)
		}
	}
	if _, ok := store.Base(colony); !ok {
		t.Fatal("colony removed before threshold")
	}

	got := us.Update(cfg, m, start)
	if len(got) != 1 || got[0].BaseID != colony || got[0].Tile != (world.Point{X: 6, Y: 6}) {
		t.Fatalf("collapse = %+v", got)
	}
	if _, ok := store.Base(colony); ok {
		t.Error("colony still present")
	}
	if m.At(6, 6).Structure != world.StructureNone {
		t.Error("tile structure not cleared")
	}
	if v, _ := store.Worker(w.Worker.ID); v.Worker.BaseID != start {
		t.Errorf("worker base = %d, want %d", v.Worker.BaseID, start)
	}
}

func TestUpkeepPaymentReactivates(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	store := NewStore()
	start := addTestBase(store, 0, 0, true, world.Resources{Biomass: 5, Water: 5})
	colony := store.AddBase(0, world.Point{X: 6, Y: 6},
		components.Base{Stock: world.Resources{Biomass: 4, Water: 4}},
		components.Upkeep{Active: false, Timer: 3, Dormant: 50},
	)

	us := NewUpkeepSystem(store, nil)
	for range 3 {
		us.Update(cfg, m, start)
	}

	c, _ := store.Base(colony)
	if !c.Upkeep.Active || c.Upkeep.Dormant != 0 {
		t.Errorf("colony upkeep = %+v, want active with cleared streak", c.Upkeep)
	}
	if c.Upkeep.Timer != cfg.Derived.UpkeepIntervalTicks {
		t.Errorf("timer = %d, want reset", c.Upkeep.Timer)
	}
	want := world.Resources{Biomass: 4 - cfg.Upkeep.Colony.Biomass, Water: 4 - cfg.Upkeep.Colony.Water}
	if c.Base.Stock != want {
		t.Errorf("stock = %+v, want %+v", c.Base.Stock, want)
	}
}

// TestNewColonyDormantUntilFirstUpkeep verifies a completed colony starts
// inactive and only turns active when its first upkeep charge is paid.
func TestNewColonyDormantUntilFirstUpkeep(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	store := NewStore()
	start := addTestBase(store, 0, 0, true, world.Resources{Biomass: 100, Water: 100})
	id := store.ReserveBaseID()
	store.AddBuildTimer(world.Point{X: 6, Y: 6}, id, 1)

	NewColonizationSystem(store, nil).Update(cfg, m)
	c, ok := store.Base(id)
	if !ok || c.Upkeep.Active {
		t.Fatalf("completed colony ok=%v upkeep=%+v, want inactive", ok, c.Upkeep)
	}
	c.Base.Stock = world.Resources{Biomass: 10, Water: 10}

	us := NewUpkeepSystem(store, nil)
	interval := cfg.Derived.UpkeepIntervalTicks
	for range interval - 1 {
		us.Update(cfg, m, start)
	}
	if c, _ = store.Base(id); c.Upkeep.Active || c.Upkeep.Dormant != interval-1 {
		t.Fatalf("before first charge: %+v, want inactive with %d dormant ticks", c.Upkeep, interval-1)
	}

	us.Update(cfg, m, start)
	if c, _ = store.Base(id); !c.Upkeep.Active || c.Upkeep.Dormant != 0 {
		t.Errorf("after first charge: %+v, want active", c.Upkeep)
	}
}

func TestUpkeepStartingBaseNeverCollapses(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(4, 4, world.TerrainDirt)
	store := NewStore()
	start := store.AddBase(0, world.Point{},
		components.Base{Starting: true},
		components.Upkeep{Active: false, Timer: 1},
	)

	us := NewUpkeepSystem(store, nil)
	for range cfg.Derived.DormantCollapseTicks + 5 {
		us.Update(cfg, m, start)
	}
	b, ok := store.Base(start)
	if !ok {
		t.Fatal("starting base collapsed")
	}
	if b.Upkeep.Active {
		t.Error("starting base active without funds")
	}
}

func TestScoringVictory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Goal.SustainMinutes = 0.01
	cfg.ComputeDerived()

	store := NewStore()
	addTestBase(store, 0, 0, true, world.Resources{})
	for i := range cfg.Goal.ColoniesRequired {
		addTestBase(store, 5+i, 5, false, world.Resources{Biomass: cfg.Goal.MinStockAny})
	}

	ss := NewScoringSystem(store, nil)
	for i := 1; i < cfg.Derived.SustainTicks; i++ {
		ss.Update(cfg)
		if ss.State().Result != ResultNone {
			t.Fatalf("result at tick %d = %s", i, ss.State().Result)
		}
	}
	ss.Update(cfg)
	if ss.State().Result != ResultVictory {
		t.Fatalf("result = %q, want Victory", ss.State().Result)
	}
	if ss.State().ActiveColonies != cfg.Goal.ColoniesRequired {
		t.Errorf("active = %d", ss.State().ActiveColonies)
	}
}

func TestScoringSustainResets(t *testing.T) {
	cfg := testConfig(t)
	store := NewStore()
	var ids []uint32
	for i := range cfg.Goal.ColoniesRequired {
		ids = append(ids, addTestBase(store, i, 0, false, world.Resources{Water: 50}))
	}

	ss := NewScoringSystem(store, nil)
	ss.Update(cfg)
	ss.Update(cfg)
	if ss.State().SustainTicks != 2 {
		t.Fatalf("sustain = %d, want 2", ss.State().SustainTicks)
	}

	b, _ := store.Base(ids[0])
	b.Base.Stock.Water = cfg.Goal.MinStockAny - 1
	ss.Update(cfg)
	if ss.State().SustainTicks != 0 || ss.State().ActiveColonies != len(ids)-1 {
		t.Errorf("state = %+v", ss.State())
	}
}

func TestScoringDefeatIsTerminal(t *testing.T) {
	cfg := testConfig(t)
	cfg.Goal.SustainMinutes = 0.01
	cfg.ComputeDerived()

	store := NewStore()
	lost := addTestBase(store, 3, 3, false, world.Resources{})
	ss := NewScoringSystem(store, nil)
	ss.Update(cfg)

	store.RemoveBase(lost)
	ss.Update(cfg)
	if ss.State().Result != ResultDefeat {
		t.Fatalf("result = %q, want Defeat", ss.State().Result)
	}

	for i := range cfg.Goal.ColoniesRequired {
		addTestBase(store, i, 8, false, world.Resources{Biomass: 100})
	}
	for range cfg.Derived.SustainTicks + 1 {
		ss.Update(cfg)
	}
	if ss.State().Result != ResultDefeat {
		t.Errorf("result changed to %q after defeat", ss.State().Result)
	}
}
