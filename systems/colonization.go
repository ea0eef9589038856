package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/world"
)

// BuildRequest asks to found a colony at a tile, funded by a base.
// WorkerID, when non-zero, is reassigned to the new colony on acceptance.
type BuildRequest struct {
	X, Y        int
	FundingBase uint32
	WorkerID    uint32
}

// BuildResult is the outcome of one processed request.
type BuildResult struct {
	Request  BuildRequest
	Accepted bool
	BaseID   uint32 // Reserved id of the new colony when accepted
}

// ColonizationSystem turns build requests into construction sites and finished sites into colonies.
type ColonizationSystem struct {
	store  *Store
	logger *slog.Logger

	pending   []BuildRequest
	completed []ecs.Entity
	results   []BuildResult
}

// NewColonizationSystem creates a new colonization system. A nil logger uses slog.Default().
func NewColonizationSystem(store *Store, logger *slog.Logger) *ColonizationSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &ColonizationSystem{store: store, logger: logger}
}

// Submit queues a request for the next Update.
func (s *ColonizationSystem) Submit(req BuildRequest) {
	s.pending = append(s.pending, req)
}

// Pending returns the number of queued requests.
func (s *ColonizationSystem) Pending() int {
	return len(s.pending)
}

// Results returns the outcomes from the last Update.
func (s *ColonizationSystem) Results() []BuildResult {
	return s.results
}

// Completed returns the number of sites finished by the last Update.
func (s *ColonizationSystem) Completed() int {
	return len(s.completed)
}

// Reset drops queued requests.
func (s *ColonizationSystem) Reset() {
	s.pending = s.pending[:0]
	s.results = s.results[:0]
}

// Update advances construction by one tick, then processes queued requests.
// Sites created by this call are not advanced until the next one.
func (s *ColonizationSystem) Update(cfg *config.Config, m *world.Map) {
	s.completed = s.completed[:0]
	query := s.store.timerFilter.Query()
	for query.Next() {
		_, timer := query.Get()
		timer.Remaining = max(0, timer.Remaining-1)
		if timer.Remaining == 0 {
			s.completed = append(s.completed, query.Entity())
		}
	}

	for _, e := range s.completed {
		pos := s.store.posMap.Get(e)
		id := s.store.timerMap.Get(e).BaseID
		x, y := world.Floor(pos.X, pos.Y)
		s.store.CompleteBuild(e,
			components.Base{},
			components.Upkeep{Active: false, Timer: cfg.Derived.UpkeepIntervalTicks},
		)
		if tile := m.At(x, y); tile != nil {
			tile.Structure = world.StructureColony
		}
		s.logger.Info("colony completed", "base_id", id, "x", x, "y", y)
	}

	s.results = s.results[:0]
	for _, req := range s.pending {
		id, ok := s.apply(cfg, m, req)
		s.results = append(s.results, BuildResult{Request: req, Accepted: ok, BaseID: id})
	}
	s.pending = s.pending[:0]
}

// apply validates and funds one request. Rejections are silent.
func (s *ColonizationSystem) apply(cfg *config.Config, m *world.Map, req BuildRequest) (uint32, bool) {
	tile := m.At(req.X, req.Y)
	if tile == nil || tile.Structure != world.StructureNone {
		return 0, false
	}
	p := world.Point{X: req.X, Y: req.Y}
	if s.store.SiteAt(p) {
		return 0, false
	}
	if !cfg.TerrainStats(tile.Terrain).ColonyBuildable || tile.Water == world.WaterFull {
		return 0, false
	}

	funder, ok := s.store.Base(req.FundingBase)
	if !ok || !funder.Base.CanAfford(cfg.Colony.BuildCost) {
		return 0, false
	}
	funder.Base.Pay(cfg.Colony.BuildCost)

	id := s.store.ReserveBaseID()
	s.store.AddBuildTimer(p, id, cfg.Derived.BuildTicks)
	if req.WorkerID != 0 {
		if w, ok := s.store.Worker(req.WorkerID); ok {
			w.Worker.BaseID = id
		}
	}
	return id, true
}
