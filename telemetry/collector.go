package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowTicks int
	tickRate    int

	// Current window tracking
	windowStartTick int

	// Event counters for current window
	spawns            int
	deaths            int
	coloniesFounded   int
	coloniesCompleted int
	collapses         int
}

// NewCollector creates a collector flushing every windowTicks ticks.
// tickRate converts ticks to simulation seconds.
func NewCollector(windowTicks, tickRate int) *Collector {
	return &Collector{
		windowTicks: max(1, windowTicks),
		tickRate:    max(1, tickRate),
	}
}

// RecordSpawn records a worker spawn.
func (c *Collector) RecordSpawn() {
	c.spawns++
}

// RecordDeath records a worker dying of dehydration.
func (c *Collector) RecordDeath() {
	c.deaths++
}

// RecordColonyFounded records an accepted build request.
func (c *Collector) RecordColonyFounded() {
	c.coloniesFounded++
}

// RecordColonyCompleted records a construction site finishing.
func (c *Collector) RecordColonyCompleted() {
	c.coloniesCompleted++
}

// RecordCollapse records a colony collapsing.
func (c *Collector) RecordCollapse() {
	c.collapses++
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Sample is the state measured at the end of a window.
type Sample struct {
	Workers        int
	DeadWorkers    int
	Colonies       int
	ActiveColonies int
	BuildSites     int

	StockBiomass float64
	StockWater   float64
	Carried      float64

	Moisture float64
	Band     string

	Slime          []float64 // One value per tile
	TrailThreshold float64
	Hydration      []float64 // One value per alive worker

	SustainTicks int
	Result       string
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int, s Sample) WindowStats {
	slimeMean, slimeStd, _, _, slimeP90 := ComputeDistribution(s.Slime)
	hydMean, _, hydP10, hydP50, _ := ComputeDistribution(s.Hydration)

	var coverage float64
	if len(s.Slime) > 0 {
		trail := 0
		for _, v := range s.Slime {
			if v >= s.TrailThreshold {
				trail++
			}
		}
		coverage = float64(trail) / float64(len(s.Slime))
	}

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) / float64(c.tickRate),

		Workers:        s.Workers,
		DeadWorkers:    s.DeadWorkers,
		Colonies:       s.Colonies,
		ActiveColonies: s.ActiveColonies,
		BuildSites:     s.BuildSites,

		Spawns:            c.spawns,
		Deaths:            c.deaths,
		ColoniesFounded:   c.coloniesFounded,
		ColoniesCompleted: c.coloniesCompleted,
		Collapses:         c.collapses,

		StockBiomass:     s.StockBiomass,
		StockWater:       s.StockWater,
		CarriedResources: s.Carried,

		Moisture: s.Moisture,
		Band:     s.Band,

		SlimeMean:     slimeMean,
		SlimeStd:      slimeStd,
		SlimeP90:      slimeP90,
		TrailCoverage: coverage,

		HydrationMean: hydMean,
		HydrationP10:  hydP10,
		HydrationP50:  hydP50,

		SustainTicks: s.SustainTicks,
		Result:       s.Result,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.spawns = 0
	c.deaths = 0
	c.coloniesFounded = 0
	c.coloniesCompleted = 0
	c.collapses = 0

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
