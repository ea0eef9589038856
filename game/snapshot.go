package game

import (
	"github.com/pthm-cable/slimeworks/systems"
)

// WorkerState is the serialized view of one worker.
type WorkerState struct {
	ID           uint32  `json:"id"`
	Owner        string  `json:"owner"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Hydration    float64 `json:"hydration"`
	HydrationMax float64 `json:"hydration_max"`
	CarryBiomass float64 `json:"carry_biomass"`
	CarryWater   float64 `json:"carry_water"`
	BaseID       uint32  `json:"base_id"`
	Task         string  `json:"task"`
	Alive        bool    `json:"alive"`
}

// BaseState is the serialized view of one built base or colony.
type BaseState struct {
	ID          uint32  `json:"id"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	Starting    bool    `json:"starting"`
	Active      bool    `json:"active"`
	Biomass     float64 `json:"biomass"`
	Water       float64 `json:"water"`
	UpkeepTimer int     `json:"upkeep_timer"`
	Dormant     int     `json:"dormant_ticks"`
}

// SiteState is a colony under construction.
type SiteState struct {
	ID        uint32 `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Remaining int    `json:"build_ticks_remaining"`
}

// GoalState reports progress toward victory.
type GoalState struct {
	ActiveColonies   int     `json:"active_colonies"`
	RequiredColonies int     `json:"required_colonies"`
	SustainTicks     int     `json:"sustain_ticks"`
	SustainRequired  int     `json:"sustain_required_ticks"`
	Progress         float64 `json:"progress"` // SustainTicks over SustainRequired, capped at 1
	Result           string  `json:"result,omitempty"`
}

// Snapshot is a read-only projection of the simulation, ordered by id.
type Snapshot struct {
	Tick           int           `json:"tick"`
	Width          int           `json:"width"`
	Height         int           `json:"height"`
	Moisture       float64       `json:"moisture"`
	Band           string        `json:"band"`
	StartingBaseID uint32        `json:"starting_base_id"`
	Workers        []WorkerState `json:"workers"`
	Bases          []BaseState   `json:"bases"`
	Sites          []SiteState   `json:"sites"`
	Goal           GoalState     `json:"goal"`
	Collapses      int           `json:"collapses"`
}

// Snapshot captures the current state.
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:           s.tick,
		Width:          s.m.Width,
		Height:         s.m.Height,
		Moisture:       s.m.Moisture,
		Band:           string(s.env.Band),
		StartingBaseID: s.startingBaseID,
		Workers:        []WorkerState{},
		Bases:          []BaseState{},
		Sites:          []SiteState{},
		Goal:           s.GoalProgress(),
		Collapses:      s.collapses,
	}

	for _, w := range s.store.Workers() {
		snap.Workers = append(snap.Workers, WorkerState{
			ID:           w.Worker.ID,
			Owner:        w.Worker.Owner,
			X:            w.Pos.X,
			Y:            w.Pos.Y,
			Hydration:    w.Hydration.Value,
			HydrationMax: w.Hydration.Max,
			CarryBiomass: w.Worker.CarryBiomass,
			CarryWater:   w.Worker.CarryWater,
			BaseID:       w.Worker.BaseID,
			Task:         string(w.Worker.Task),
			Alive:        !w.Dead,
		})
	}

	for _, b := range s.store.Bases() {
		p := b.Tile()
		snap.Bases = append(snap.Bases, BaseState{
			ID:          b.Base.ID,
			X:           p.X,
			Y:           p.Y,
			Starting:    b.Base.Starting,
			Active:      b.Upkeep.Active,
			Biomass:     b.Base.Stock.Biomass,
			Water:       b.Base.Stock.Water,
			UpkeepTimer: b.Upkeep.Timer,
			Dormant:     b.Upkeep.Dormant,
		})
	}

	for _, site := range s.store.BuildSites() {
		snap.Sites = append(snap.Sites, SiteState{
			ID:        site.BaseID,
			X:         site.Tile.X,
			Y:         site.Tile.Y,
			Remaining: site.Remaining,
		})
	}
	return snap
}

// GoalProgress returns sustain progress toward victory.
func (s *Simulation) GoalProgress() GoalState {
	score := s.scoring.State()
	required := s.cfg.Derived.SustainTicks
	progress := 1.0
	if required > 0 {
		progress = min(1, float64(score.SustainTicks)/float64(required))
	}
	return GoalState{
		ActiveColonies:   score.ActiveColonies,
		RequiredColonies: s.cfg.Goal.ColoniesRequired,
		SustainTicks:     score.SustainTicks,
		SustainRequired:  required,
		Progress:         progress,
		Result:           string(score.Result),
	}
}

// GoalResult returns the terminal outcome, or ResultNone while undecided.
func (s *Simulation) GoalResult() systems.Result {
	return s.scoring.State().Result
}
