package main

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/game"
	"github.com/pthm-cable/slimeworks/systems"
	"github.com/pthm-cable/slimeworks/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	seeds      []uint32
	players    int
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestRun     *runResult
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int, seeds []uint32, players int, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		players:     max(1, players),
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestRun returns the best single-seed run of the best evaluation.
func (fe *FitnessEvaluator) BestRun() *runResult {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestRun
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Bot behaviour during evaluation runs.
const (
	botWorkers  = 3
	botReserve  = 0.5
	windowSec   = 10
	victoryBase = 2.0 // Any victory outranks every undecided run
)

// runResult holds the results from a single simulation run.
type runResult struct {
	Seed        uint32                  `json:"seed"`
	EndTick     int                     `json:"end_tick"`
	Result      systems.Result          `json:"result"`
	Collapses   int                     `json:"collapses"`
	Digest      string                  `json:"digest"`
	Fitness     float64                 `json:"fitness"`
	Quality     float64                 `json:"quality"`
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	// Run all seeds in parallel; simulations share nothing
	results := make([]*runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s uint32) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	var best *runResult
	for _, r := range results {
		totalFitness += r.Fitness
		totalQuality += r.Quality
		if best == nil || r.Fitness < best.Fitness {
			best = r
		}
	}
	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestRun = best
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run until the goal is decided or maxTicks.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed uint32) *runResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Map.Seed = seed

	result := &runResult{Seed: seed}
	sim, err := game.New(cfg, nil, game.Options{
		Logger:      slog.New(slog.DiscardHandler),
		StatsWindow: cfg.TickRate * windowSec,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		// A broken base config fails every evaluation the same way
		result.Fitness = math.Inf(1)
		return result
	}

	bots := &game.Bots{Workers: botWorkers, Reserve: botReserve, Interval: cfg.TickRate}
	for i := range fe.players {
		owner := fmt.Sprintf("bot-%d", i+1)
		bots.Owners = append(bots.Owners, owner)
		sim.Join(owner)
	}

	for sim.Tick() < fe.maxTicks && sim.GoalResult() == systems.ResultNone {
		sim.Step()
		bots.Update(sim)
	}

	result.EndTick = sim.Tick()
	result.Result = sim.GoalResult()
	result.Collapses = sim.Collapses()
	result.Digest, _ = sim.Digest()
	result.Quality = computeQuality(result.windowStats, cfg)
	result.Fitness = fe.computeFitness(result)
	return result
}

// computeFitness calculates the scalar fitness (lower = better).
// Victories score above 2 and earlier is better; undecided runs score their
// quality and defeats half of it.
func (fe *FitnessEvaluator) computeFitness(r *runResult) float64 {
	switch r.Result {
	case systems.ResultVictory:
		return -(victoryBase + 1 - float64(r.EndTick)/float64(fe.maxTicks))
	case systems.ResultDefeat:
		return -0.5 * r.Quality
	}
	return -r.Quality
}

// Quality component weights.
const (
	qualityWeightColonies  = 0.50
	qualityWeightHydration = 0.20
	qualityWeightTrails    = 0.15
	qualityWeightSurvival  = 0.15

	qualityWarmupWindows = 1   // skip first N windows (warmup)
	trailCoverageTarget  = 0.2 // coverage that scores full marks
)

// computeQuality computes colony health ∈ [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats, cfg *config.Config) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}
	valid := windows[qualityWarmupWindows:]

	var colonySum, hydrationSum, trailSum, survivalSum float64
	required := float64(max(1, cfg.Goal.ColoniesRequired))
	hydMax := max(1e-9, cfg.Worker.HydrationMax)
	for _, w := range valid {
		colonySum += clamp01(float64(w.ActiveColonies) / required)
		hydrationSum += clamp01(w.HydrationMean / hydMax)
		trailSum += clamp01(w.TrailCoverage / trailCoverageTarget)
		if total := w.Workers + w.DeadWorkers; total > 0 {
			survivalSum += float64(w.Workers) / float64(total)
		}
	}

	n := float64(len(valid))
	quality := qualityWeightColonies*colonySum/n +
		qualityWeightHydration*hydrationSum/n +
		qualityWeightTrails*trailSum/n +
		qualityWeightSurvival*survivalSum/n

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	return min(1, max(0, x))
}
