package game

// LogState logs a summary of the current world state.
func (s *Simulation) LogState() {
	var alive, dead, carried int
	for _, w := range s.store.Workers() {
		if w.Dead {
			dead++
			continue
		}
		alive++
		if w.Worker.Carried() > 0 {
			carried++
		}
	}

	var active, dormant int
	var biomass, water float64
	for _, b := range s.store.Bases() {
		if b.Upkeep.Active {
			active++
		} else {
			dormant++
		}
		biomass += b.Base.Stock.Biomass
		water += b.Base.Stock.Water
	}

	goal := s.GoalProgress()
	s.logger.Info("world state",
		"tick", s.tick,
		"moisture", s.m.Moisture,
		"band", string(s.env.Band),
		"workers", alive,
		"dead", dead,
		"carrying", carried,
		"orders", s.orders.Len(),
		"bases_active", active,
		"bases_dormant", dormant,
		"sites", len(s.store.BuildSites()),
		"stock_biomass", biomass,
		"stock_water", water,
		"sustain", goal.SustainTicks,
		"result", goal.Result,
		"collapses", s.collapses,
	)
}
