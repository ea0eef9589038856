package systems

import (
	"log/slog"

	"github.com/pthm-cable/slimeworks/config"
)

// Result is the terminal outcome of a session.
type Result string

const (
	ResultNone    Result = ""
	ResultVictory Result = "Victory"
	ResultDefeat  Result = "Defeat"
)

// ScoreState tracks progress toward the colony goal.
type ScoreState struct {
	SustainTicks   int
	ActiveColonies int
	Result         Result
	Tracked        map[uint32]struct{} // Non-starting colonies seen on the last check
}

// ScoringSystem evaluates the goal once per tick.
type ScoringSystem struct {
	store  *Store
	logger *slog.Logger
	state  ScoreState
}

// NewScoringSystem creates a new scoring system. A nil logger uses slog.Default().
func NewScoringSystem(store *Store, logger *slog.Logger) *ScoringSystem {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScoringSystem{
		store:  store,
		logger: logger,
		state:  ScoreState{Tracked: make(map[uint32]struct{})},
	}
}

// State returns the current score state.
func (s *ScoringSystem) State() *ScoreState {
	return &s.state
}

// ResetTracking forgets known colonies without touching the result.
func (s *ScoringSystem) ResetTracking() {
	clear(s.state.Tracked)
	s.state.SustainTicks = 0
	s.state.ActiveColonies = 0
}

// Update runs the scoring system.
func (s *ScoringSystem) Update(cfg *config.Config) {
	current := make(map[uint32]struct{}, len(s.state.Tracked))
	active := 0

	query := s.store.baseFilter.Query()
	for query.Next() {
		_, base, upkeep := query.Get()
		if base.Starting {
			continue
		}
		current[base.ID] = struct{}{}
		minStock := cfg.Goal.MinStockAny
		if upkeep.Active && (base.Stock.Biomass >= minStock || base.Stock.Water >= minStock) {
			active++
		}
	}

	for id := range s.state.Tracked {
		if _, ok := current[id]; !ok {
			s.setResult(ResultDefeat, "reason", "colony lost", "base_id", id)
			break
		}
	}
	s.state.Tracked = current

	s.state.ActiveColonies = active
	if active >= cfg.Goal.ColoniesRequired {
		s.state.SustainTicks++
	} else {
		s.state.SustainTicks = 0
	}
	if s.state.SustainTicks >= cfg.Derived.SustainTicks {
		s.setResult(ResultVictory, "sustain_ticks", s.state.SustainTicks)
	}
}

// setResult records an outcome once. Later outcomes are ignored.
func (s *ScoringSystem) setResult(r Result, attrs ...any) {
	if s.state.Result != ResultNone {
		return
	}
	s.state.Result = r
	s.logger.Info("goal result", append([]any{"result", string(r)}, attrs...)...)
}
