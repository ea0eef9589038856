package game

import (
	"github.com/pthm-cable/slimeworks/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (s *Simulation) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.sample())
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			s.logger.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			s.logger.Error("failed to write perf", "error", err)
		}
	}

	for _, bm := range s.bookmarks.Check(stats) {
		if s.logStats {
			bm.LogBookmark()
		}
		if s.output != nil {
			if err := s.output.WriteBookmark(bm); err != nil {
				s.logger.Error("failed to write bookmark", "error", err)
			}
		}
	}
}

// sample measures the end-of-window state for the collector.
func (s *Simulation) sample() telemetry.Sample {
	score := s.scoring.State()
	smp := telemetry.Sample{
		BuildSites:     len(s.store.BuildSites()),
		Moisture:       s.m.Moisture,
		Band:           string(s.env.Band),
		Slime:          make([]float64, len(s.m.Tiles)),
		TrailThreshold: s.cfg.Automation.TrailThreshold,
		SustainTicks:   score.SustainTicks,
		Result:         string(score.Result),
	}

	for i := range s.m.Tiles {
		smp.Slime[i] = s.m.Tiles[i].Slime
	}

	for _, w := range s.store.Workers() {
		if w.Dead {
			smp.DeadWorkers++
			continue
		}
		smp.Workers++
		smp.Carried += w.Worker.Carried()
		smp.Hydration = append(smp.Hydration, w.Hydration.Value)
	}

	for _, b := range s.store.Bases() {
		smp.Colonies++
		if b.Upkeep.Active {
			smp.ActiveColonies++
		}
		smp.StockBiomass += b.Base.Stock.Biomass
		smp.StockWater += b.Base.Stock.Water
	}
	return smp
}
