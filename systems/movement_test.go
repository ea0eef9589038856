package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

// TestMovementBaseSpeedPerTerrain verifies one unit of input moves exactly base_speed.
func TestMovementBaseSpeedPerTerrain(t *testing.T) {
	cfg := testConfig(t)
	for _, terrain := range world.Terrains {
		stats := cfg.TerrainStats(terrain)
		if !stats.Passable() {
			continue
		}
		m := testMap(10, 10, terrain)
		store := NewStore()
		env := NewEnvironment(cfg, m, store)
		w := addTestWorker(store, cfg, 2.5, 3.5)
		w.Vel.X = 1

		NewMovementSystem(store).Update(cfg, m, env)

		v, _ := store.Worker(w.Worker.ID)
		if !near(v.Pos.X-2.5, stats.BaseSpeed) || v.Pos.Y != 3.5 {
			t.Errorf("%s: moved to (%v, %v), want dx %v", terrain, v.Pos.X, v.Pos.Y, stats.BaseSpeed)
		}
		if !near(v.Vel.Step, stats.BaseSpeed) {
			t.Errorf("%s: step = %v, want %v", terrain, v.Vel.Step, stats.BaseSpeed)
		}
	}
}

// TestMovementDiagonalClamped verifies raw velocity is capped at unit magnitude.
func TestMovementDiagonalClamped(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	store := NewStore()
	env := NewEnvironment(cfg, m, store)
	w := addTestWorker(store, cfg, 5, 5)
	w.Vel.X, w.Vel.Y = 1, 1

	NewMovementSystem(store).Update(cfg, m, env)

	v, _ := store.Worker(w.Worker.ID)
	dist := math.Hypot(v.Pos.X-5, v.Pos.Y-5)
	if !near(dist, 0.22) {
		t.Errorf("diagonal moved %v, want 0.22", dist)
	}
}

// TestMovementArrivalSnaps verifies a unit within one step lands exactly on its target.
func TestMovementArrivalSnaps(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	store := NewStore()
	env := NewEnvironment(cfg, m, store)
	w := addTestWorker(store, cfg, 5, 5)
	*w.Dest = components.Destination{X: 5.1, Y: 5.1, Active: true}

	NewMovementSystem(store).Update(cfg, m, env)

	v, _ := store.Worker(w.Worker.ID)
	if v.Pos.X != 5.1 || v.Pos.Y != 5.1 {
		t.Errorf("position = (%v, %v), want (5.1, 5.1)", v.Pos.X, v.Pos.Y)
	}
	if v.Dest.Active || v.Vel.Moving() {
		t.Error("arrival should clear destination and velocity")
	}
}

// TestMovementSteersTowardDestination verifies partial progress along the direction.
func TestMovementSteersTowardDestination(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	store := NewStore()
	env := NewEnvironment(cfg, m, store)
	w := addTestWorker(store, cfg, 1, 1)
	*w.Dest = components.Destination{X: 1, Y: 6, Active: true}

	ms := NewMovementSystem(store)
	for range 3 {
		ms.Update(cfg, m, env)
	}

	v, _ := store.Worker(w.Worker.ID)
	if !near(v.Pos.Y, 1+3*0.22) || v.Pos.X != 1 {
		t.Errorf("position = (%v, %v), want (1, %v)", v.Pos.X, v.Pos.Y, 1+3*0.22)
	}
	if !v.Dest.Active || !near(v.Vel.Y, 0.22) {
		t.Errorf("still travelling: dest %+v vel %+v", v.Dest, v.Vel)
	}
}

// TestMovementClampedToBounds verifies units never leave [0, w-1] x [0, h-1].
func TestMovementClampedToBounds(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(4, 4, world.TerrainDirt)
	store := NewStore()
	env := NewEnvironment(cfg, m, store)
	w := addTestWorker(store, cfg, 2.95, 0.1)
	w.Vel.X, w.Vel.Y = 0.8, -0.6

	ms := NewMovementSystem(store)
	for range 10 {
		ms.Update(cfg, m, env)
	}
	v, _ := store.Worker(w.Worker.ID)
	if v.Pos.X != 3 || v.Pos.Y != 0 {
		t.Errorf("position = (%v, %v), want (3, 0)", v.Pos.X, v.Pos.Y)
	}
}

// TestMovementSlimeAndAuraBonus verifies slime and aura add to speed.
func TestMovementSlimeAndAuraBonus(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(20, 20, world.TerrainDirt)
	m.At(15, 15).Slime = 0.5
	store := NewStore()
	addTestBase(store, 2, 2, true, world.Resources{})
	env := NewEnvironment(cfg, m, store)

	inAura := addTestWorker(store, cfg, 2.5, 2.5)
	inAura.Vel.X = 1
	slimed := addTestWorker(store, cfg, 15.2, 15.2)
	slimed.Vel.X = 1

	NewMovementSystem(store).Update(cfg, m, env)

	a, _ := store.Worker(inAura.Worker.ID)
	if want := 0.22 + cfg.Upkeep.Aura.SpeedBonus; !near(a.Pos.X-2.5, want) {
		t.Errorf("aura speed = %v, want %v", a.Pos.X-2.5, want)
	}
	s, _ := store.Worker(slimed.Worker.ID)
	if want := 0.22 + 0.5*cfg.Slime.SpeedBonusMax; !near(s.Pos.X-15.2, want) {
		t.Errorf("slime speed = %v, want %v", s.Pos.X-15.2, want)
	}
}

// TestMovementSkipsDead verifies dead workers stay put even with velocity set.
func TestMovementSkipsDead(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainDirt)
	store := NewStore()
	env := NewEnvironment(cfg, m, store)
	id := addTestWorker(store, cfg, 5, 5).Worker.ID
	store.MarkDead(id)

	v, ok := store.Worker(id)
	if !ok || !v.Dead {
		t.Fatal("dead worker missing from the store")
	}
	v.Vel.X = 1
	*v.Dest = components.Destination{X: 8, Y: 5, Active: true}
	NewMovementSystem(store).Update(cfg, m, env)

	v, _ = store.Worker(id)
	if v.Pos.X != 5 {
		t.Errorf("dead worker moved to %v", v.Pos.X)
	}
}

// TestHydrationCost verifies hydration cost with slime savings and aura multiplier.
func TestHydrationCost(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(30, 30, world.TerrainRoad)
	m.At(20, 20).Slime = 1
	store := NewStore()
	addTestBase(store, 2, 2, true, world.Resources{})
	m.At(2, 2).Terrain = world.TerrainRoad
	env := NewEnvironment(cfg, m, store)

	plain := addTestWorker(store, cfg, 10.5, 10.5)
	slimed := addTestWorker(store, cfg, 20.5, 20.5)
	aura := addTestWorker(store, cfg, 3.5, 3.5)
	idle := addTestWorker(store, cfg, 12.5, 12.5)
	for _, w := range []WorkerView{plain, slimed, aura} {
		w.Vel.Step = 0.1
		w.Vel.X = 0.1
	}

	NewHydrationSystem(store).Update(cfg, m, env)

	road := cfg.TerrainStats(world.TerrainRoad).HydrationCost
	cases := []struct {
		name string
		id   uint32
		want float64
	}{
		{"plain", plain.Worker.ID, 12 - road},
		{"slimed", slimed.Worker.ID, 12 - road*(1-cfg.Slime.HydrationSaveMax)},
		{"aura", aura.Worker.ID, 12 - road*cfg.Upkeep.Aura.HydrationHardMultiplier},
		{"idle", idle.Worker.ID, 12},
	}
	for _, c := range cases {
		v, _ := store.Worker(c.id)
		if !near(v.Hydration.Value, c.want) {
			t.Errorf("%s: hydration = %v, want %v", c.name, v.Hydration.Value, c.want)
		}
	}
}

// TestHydrationRefill verifies water tiles and colony tiles refill to max.
func TestHydrationRefill(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainSand)
	m.At(1, 1).Resources.Water = 2
	m.At(5, 5).Structure = world.StructureColony
	store := NewStore()
	env := NewEnvironment(cfg, m, store)

	wet := addTestWorker(store, cfg, 1.5, 1.5)
	wet.Hydration.Value = 1
	home := addTestWorker(store, cfg, 5.2, 5.7)
	home.Hydration.Value = 3
	home.Vel.Step = 0.1

	NewHydrationSystem(store).Update(cfg, m, env)

	for _, id := range []uint32{wet.Worker.ID, home.Worker.ID} {
		v, _ := store.Worker(id)
		if v.Hydration.Value != cfg.Worker.HydrationMax {
			t.Errorf("worker %d hydration = %v, want max", id, v.Hydration.Value)
		}
	}
}

// TestHydrationDeathOnHardTerrain verifies dehydration kills only on hard terrain.
func TestHydrationDeathOnHardTerrain(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(10, 10, world.TerrainRoad)
	for x := 0; x < 10; x++ {
		m.At(x, 9).Terrain = world.TerrainDirt
	}
	store := NewStore()
	env := NewEnvironment(cfg, m, store)

	hard := addTestWorker(store, cfg, 4.5, 4.5)
	hard.Hydration.Value = 0.3
	hard.Vel.Step = 0.1
	hard.Dest.Active = true
	soft := addTestWorker(store, cfg, 4.5, 9.5)
	soft.Hydration.Value = 0
	hardID, softID := hard.Worker.ID, soft.Worker.ID

	hs := NewHydrationSystem(store)
	hs.Update(cfg, m, env)

	h, _ := store.Worker(hardID)
	if !h.Dead || h.Worker.Task != components.TaskDead || h.Dest.Active {
		t.Errorf("worker on road should die: dead=%v task=%s", h.Dead, h.Worker.Task)
	}
	if h.Hydration.Value != 0 {
		t.Errorf("hydration = %v, want clamp at 0", h.Hydration.Value)
	}
	s, _ := store.Worker(softID)
	if s.Dead {
		t.Error("worker on soft terrain should survive at zero hydration")
	}

	// Dead stays dead even on a water tile
	h.Pos.X, h.Pos.Y = 4.5, 9.5
	m.At(4, 9).Resources.Water = 3
	hs.Update(cfg, m, env)
	if h, _ = store.Worker(hardID); !h.Dead || h.Hydration.Value != 0 {
		t.Error("dead worker revived")
	}
}

// TestHydrationBounded verifies hydration stays within [0, max] over many ticks.
func TestHydrationBounded(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(12, 12, world.TerrainSand)
	m.At(6, 0).Resources.Water = 4
	store := NewStore()
	env := NewEnvironment(cfg, m, store)
	ms := NewMovementSystem(store)
	hs := NewHydrationSystem(store)

	for i := 0; i < 5; i++ {
		w := addTestWorker(store, cfg, float64(i*2)+0.5, 0.5)
		*w.Dest = components.Destination{X: float64(i*2) + 0.5, Y: 11, Active: true}
	}
	for range 200 {
		ms.Update(cfg, m, env)
		hs.Update(cfg, m, env)
		for _, v := range store.Workers() {
			if v.Hydration.Value < 0 || v.Hydration.Value > v.Hydration.Max {
				t.Fatalf("hydration %v out of [0, %v]", v.Hydration.Value, v.Hydration.Max)
			}
		}
	}
}

// TestSlimeDepositAndDecay verifies deposit scaling, decay rates and clamping.
func TestSlimeDepositAndDecay(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(20, 20, world.TerrainRoad)
	store := NewStore()
	env := NewEnvironment(cfg, m, store)
	ss := NewSlimeSystem(store)

	w := addTestWorker(store, cfg, 10.5, 10.5)
	w.Vel.Step = 0.2
	ss.Deposit(cfg, m, env)
	if got, want := m.At(10, 10).Slime, cfg.Slime.DepositRate*0.2; !near(got, want) {
		t.Errorf("deposit = %v, want %v", got, want)
	}

	m.At(10, 10).Slime = 0.999
	w.Vel.Step = 5
	ss.Deposit(cfg, m, env)
	if m.At(10, 10).Slime != 1 {
		t.Errorf("slime = %v, want clamp at 1", m.At(10, 10).Slime)
	}

	m.At(3, 3).Slime = 0.5
	m.At(4, 4).Slime = 0.001
	ss.Decay(cfg, m, env)
	if got, want := m.At(3, 3).Slime, 0.5-cfg.Slime.Decay(config.BandWet, world.TerrainRoad); !near(got, want) {
		t.Errorf("decayed = %v, want %v", got, want)
	}
	if m.At(4, 4).Slime != 0 {
		t.Errorf("slime = %v, want floor at 0", m.At(4, 4).Slime)
	}
}

// TestSlimeDecayAuraProtects verifies tiles inside an aura decay at the reduced rate.
func TestSlimeDecayAuraProtects(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(20, 20, world.TerrainDirt)
	store := NewStore()
	addTestBase(store, 0, 0, true, world.Resources{})
	env := NewEnvironment(cfg, m, store)

	m.At(3, 4).Slime = 0.5 // distance 5, on the boundary
	m.At(10, 10).Slime = 0.5

	NewSlimeSystem(store).Decay(cfg, m, env)

	rate := cfg.Slime.Decay(config.BandWet, world.TerrainDirt)
	if got := m.At(3, 4).Slime; !near(got, 0.5-rate*cfg.Upkeep.Aura.SlimeDecayMultiplier) {
		t.Errorf("aura tile slime = %v", got)
	}
	if got := m.At(10, 10).Slime; !near(got, 0.5-rate) {
		t.Errorf("open tile slime = %v", got)
	}
}

// TestEnvironmentDryRoad verifies the dry Road variant is derived without touching config.
func TestEnvironmentDryRoad(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(4, 4, world.TerrainRoad)
	store := NewStore()
	base := cfg.TerrainStats(world.TerrainRoad)

	m.Moisture = cfg.Moisture.Thresholds.Damp
	env := NewEnvironment(cfg, m, store)
	if env.Band != config.BandDamp || env.Stats(world.TerrainRoad) != base {
		t.Errorf("damp band should use base road stats, got %+v", env.Stats(world.TerrainRoad))
	}

	for range 3 {
		UpdateMoistureAndAuras(cfg, m, store, env)
	}
	if env.Band != config.BandDry {
		t.Fatalf("band = %s, want dry", env.Band)
	}
	dry := env.Stats(world.TerrainRoad)
	if dry.BaseSpeed != cfg.Moisture.DryRoad.BaseSpeed || dry.HydrationCost != cfg.Moisture.DryRoad.HydrationCost {
		t.Errorf("dry road = %+v", dry)
	}
	if cfg.TerrainStats(world.TerrainRoad) != base {
		t.Error("config terrain table was modified")
	}
	if env.Stats(world.TerrainDirt) != cfg.TerrainStats(world.TerrainDirt) {
		t.Error("only Road should change in the dry band")
	}

	m.Moisture = 90
	env.Refresh(cfg, m, store)
	if env.Stats(world.TerrainRoad) != base {
		t.Error("road stats not restored after moisture recovered")
	}
}

// TestMoistureClamped verifies moisture never drops below zero.
func TestMoistureClamped(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(2, 2, world.TerrainDirt)
	m.Moisture = 0.01
	store := NewStore()
	env := NewEnvironment(cfg, m, store)
	UpdateMoistureAndAuras(cfg, m, store, env)
	if m.Moisture != 0 {
		t.Errorf("moisture = %v, want 0", m.Moisture)
	}
}

// TestAuraBoundaryInclusive verifies dx²+dy² ≤ r² and only active bases count.
func TestAuraBoundaryInclusive(t *testing.T) {
	cfg := testConfig(t)
	m := testMap(20, 20, world.TerrainDirt)
	store := NewStore()
	addTestBase(store, 0, 0, true, world.Resources{})
	dormant := addTestBase(store, 15, 15, false, world.Resources{})
	b, _ := store.Base(dormant)
	b.Upkeep.Active = false

	env := NewEnvironment(cfg, m, store)
	if !env.InAura(3, 4) {
		t.Error("(3,4) is exactly on the radius and should be inside")
	}
	if env.InAura(3, 4.01) {
		t.Error("(3,4.01) should be outside")
	}
	if env.InAura(15, 15) {
		t.Error("inactive base must not project an aura")
	}
}
