// Package game wires the ECS store, the tick pipeline and automation into a
// single simulation instance.
package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/slimeworks/automation"
	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/systems"
	"github.com/pthm-cable/slimeworks/telemetry"
	"github.com/pthm-cable/slimeworks/world"
)

// PhasePlanning times the automation pass that follows the pipeline.
const PhasePlanning = "automation_plan"

// Bookmark history in stats windows.
const bookmarkHistory = 10

// Options configures a simulation.
type Options struct {
	Logger        *slog.Logger                // nil uses slog.Default()
	StatsWindow   int                         // Ticks per stats window (0 = config)
	LogStats      bool                        // Log window stats and bookmarks
	Output        *telemetry.OutputManager    // nil disables CSV output
	StatsCallback func(telemetry.WindowStats) // Called on every flushed window
}

// Simulation is one room's world: map, store, systems and automation.
// It is not safe for concurrent use; a room goroutine owns it.
type Simulation struct {
	cfg    *config.Config
	m      *world.Map
	store  *systems.Store
	env    *systems.Environment
	order  []systems.StepKind
	logger *slog.Logger

	// Systems
	movement     *systems.MovementSystem
	hydration    *systems.HydrationSystem
	slime        *systems.SlimeSystem
	harvest      *systems.HarvestSystem
	colonization *systems.ColonizationSystem
	upkeep       *systems.UpkeepSystem
	scoring      *systems.ScoringSystem

	// Automation
	orders  *automation.OrderBook
	planner *automation.Planner
	driver  *automation.Driver

	// State
	tick           int
	startingBaseID uint32
	collapses      int

	// Telemetry
	collector     *telemetry.Collector
	perf          *telemetry.PerfCollector
	bookmarks     *telemetry.BookmarkDetector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// New creates a simulation on a copy of cfg with derived values recomputed. A nil map starts on cfg.StartMap().
// The map is cloned, so the caller's value is never mutated.
func New(cfg *config.Config, m *world.Map, opts Options) (*Simulation, error) {
	cfg = cfg.Clone()
	cfg.ComputeDerived()
	order, err := systems.ParseOrder(cfg.Simulation.Order)
	if err != nil {
		return nil, fmt.Errorf("building pipeline: %w", err)
	}
	if m == nil {
		if m, err = cfg.StartMap(); err != nil {
			return nil, fmt.Errorf("loading start map: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	window := opts.StatsWindow
	if window <= 0 {
		window = cfg.Telemetry.StatsWindow
	}

	store := systems.NewStore()
	orders := automation.NewOrderBook()
	s := &Simulation{
		cfg:    cfg,
		m:      m.Clone(),
		store:  store,
		order:  order,
		logger: logger,

		movement:     systems.NewMovementSystem(store),
		hydration:    systems.NewHydrationSystem(store),
		slime:        systems.NewSlimeSystem(store),
		harvest:      systems.NewHarvestSystem(store),
		colonization: systems.NewColonizationSystem(store, logger),
		upkeep:       systems.NewUpkeepSystem(store, logger),
		scoring:      systems.NewScoringSystem(store, logger),

		orders:  orders,
		planner: automation.NewPlanner(store, orders),
		driver:  automation.NewDriver(store, orders),

		collector:     telemetry.NewCollector(window, cfg.TickRate),
		perf:          telemetry.NewPerfCollector(window),
		bookmarks:     telemetry.NewBookmarkDetector(bookmarkHistory),
		output:        opts.Output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}
	s.seedBases()
	s.env = systems.NewEnvironment(cfg, s.m, store)
	return s, nil
}

// seedBases places the starting base and turns pre-marked colony tiles into
// active colonies.
func (s *Simulation) seedBases() {
	interval := s.cfg.Derived.UpkeepIntervalTicks
	start := s.m.ClampPoint(s.cfg.Base.X, s.cfg.Base.Y)

	s.startingBaseID = s.store.AddBase(0, start,
		components.Base{Starting: true, Stock: s.cfg.Base.Stock},
		components.Upkeep{Active: true, Timer: interval},
	)
	if tile := s.m.At(start.X, start.Y); tile != nil {
		tile.Structure = world.StructureColony
	}

	for _, p := range s.m.ColonyTiles() {
		if p == start {
			continue
		}
		s.store.AddBase(0, p, components.Base{}, components.Upkeep{Active: true, Timer: interval})
	}
}

// SetMap replaces the active map with a copy of m.
//
// Bases, construction, queued requests, automation routes and goal tracking
// are reset and reseeded from the new map. Workers survive: they are moved to
// the starting base's books, clamped into the new bounds and left idle with
// no order. A decided result is kept.
func (s *Simulation) SetMap(m *world.Map) {
	s.m = m.Clone()
	s.store.ClearBases()
	s.colonization.Reset()
	s.planner.Reset()
	s.orders.Clear()
	s.scoring.ResetTracking()
	s.seedBases()

	for _, w := range s.store.Workers() {
		w.Worker.BaseID = s.startingBaseID
		w.Pos.X, w.Pos.Y = s.m.Clamp(w.Pos.X, w.Pos.Y)
		w.Dest.X, w.Dest.Y = s.m.Clamp(w.Dest.X, w.Dest.Y)
		*w.Vel = components.Velocity{}
		if !w.Dead {
			w.Worker.Task = components.TaskIdle
		}
	}
	s.env.Refresh(s.cfg, s.m, s.store)
	s.logger.Info("map replaced", "width", s.m.Width, "height", s.m.Height, "colonies", len(s.store.Bases()))
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int {
	return s.tick
}

// Config returns the simulation's own configuration.
func (s *Simulation) Config() *config.Config {
	return s.cfg
}

// Map returns the live map. Callers must not mutate it while the simulation runs.
func (s *Simulation) Map() *world.Map {
	return s.m
}

// Store returns the entity store.
func (s *Simulation) Store() *systems.Store {
	return s.store
}

// Orders returns the automation order book.
func (s *Simulation) Orders() *automation.OrderBook {
	return s.orders
}

// StartingBaseID returns the id of the base that never collapses.
func (s *Simulation) StartingBaseID() uint32 {
	return s.startingBaseID
}

// Environment returns the derived state from the last moisture step.
func (s *Simulation) Environment() *systems.Environment {
	return s.env
}

// Collapses returns the number of colonies lost so far.
func (s *Simulation) Collapses() int {
	return s.collapses
}

// Perf returns the rolling per-step timings.
func (s *Simulation) Perf() telemetry.PerfStats {
	return s.perf.Stats()
}
