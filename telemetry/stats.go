package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int     `csv:"-"`
	WindowEndTick   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Workers     int `csv:"workers"`
	DeadWorkers int `csv:"dead_workers"`

	// Settlements at window end
	Colonies       int `csv:"colonies"`
	ActiveColonies int `csv:"active_colonies"`
	BuildSites     int `csv:"build_sites"`

	// Events during window
	Spawns            int `csv:"spawns"`
	Deaths            int `csv:"deaths"`
	ColoniesFounded   int `csv:"colonies_founded"`
	ColoniesCompleted int `csv:"colonies_completed"`
	Collapses         int `csv:"collapses"`

	// Economy
	StockBiomass     float64 `csv:"stock_biomass"`
	StockWater       float64 `csv:"stock_water"`
	CarriedResources float64 `csv:"carried"`

	// Environment
	Moisture float64 `csv:"moisture"`
	Band     string  `csv:"band"`

	// Slime distribution over all tiles
	SlimeMean     float64 `csv:"slime_mean"`
	SlimeStd      float64 `csv:"slime_std"`
	SlimeP90      float64 `csv:"slime_p90"`
	TrailCoverage float64 `csv:"trail_coverage"` // Fraction of tiles at or above the trail threshold

	// Hydration distribution over alive workers
	HydrationMean float64 `csv:"hydration_mean"`
	HydrationP10  float64 `csv:"hydration_p10"`
	HydrationP50  float64 `csv:"hydration_p50"`

	// Goal
	SustainTicks int    `csv:"sustain_ticks"`
	Result       string `csv:"result"`
}

// Percentile returns the p-th quantile of values, p in [0, 1]. Returns 0 if empty.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return stat.Quantile(min(1, max(0, p)), stat.Empirical, sorted, nil)
}

// ComputeDistribution returns the mean, population standard deviation and
// p10/p50/p90 of values.
func ComputeDistribution(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartTick),
		slog.Int("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("workers", s.Workers),
		slog.Int("dead_workers", s.DeadWorkers),
		slog.Int("colonies", s.Colonies),
		slog.Int("active_colonies", s.ActiveColonies),
		slog.Int("build_sites", s.BuildSites),
		slog.Int("spawns", s.Spawns),
		slog.Int("deaths", s.Deaths),
		slog.Int("colonies_founded", s.ColoniesFounded),
		slog.Int("colonies_completed", s.ColoniesCompleted),
		slog.Int("collapses", s.Collapses),
		slog.Float64("stock_biomass", s.StockBiomass),
		slog.Float64("stock_water", s.StockWater),
		slog.Float64("carried", s.CarriedResources),
		slog.Float64("moisture", s.Moisture),
		slog.String("band", s.Band),
		slog.Float64("slime_mean", s.SlimeMean),
		slog.Float64("slime_std", s.SlimeStd),
		slog.Float64("slime_p90", s.SlimeP90),
		slog.Float64("trail_coverage", s.TrailCoverage),
		slog.Float64("hydration_mean", s.HydrationMean),
		slog.Float64("hydration_p10", s.HydrationP10),
		slog.Float64("hydration_p50", s.HydrationP50),
		slog.Int("sustain_ticks", s.SustainTicks),
		slog.String("result", s.Result),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"workers", s.Workers,
		"dead", s.DeadWorkers,
		"colonies", s.Colonies,
		"active", s.ActiveColonies,
		"stock_biomass", s.StockBiomass,
		"stock_water", s.StockWater,
		"band", s.Band,
		"trail_coverage", s.TrailCoverage,
		"hydration_mean", s.HydrationMean,
		"result", s.Result,
	)
}
