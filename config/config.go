// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/slimeworks/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is returned when a loaded configuration breaks a basic constraint.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation parameters.
type Config struct {
	TickRate   int                            `yaml:"tick_rate"`
	Terrain    map[world.Terrain]TerrainStats `yaml:"terrain"`
	Moisture   MoistureConfig                 `yaml:"moisture"`
	Slime      SlimeConfig                    `yaml:"slime"`
	Worker     WorkerConfig                   `yaml:"worker"`
	Base       BaseConfig                     `yaml:"base"`
	Colony     ColonyConfig                   `yaml:"colony"`
	Upkeep     UpkeepConfig                   `yaml:"upkeep"`
	Goal       GoalConfig                     `yaml:"goal"`
	Automation AutomationConfig               `yaml:"automation"`
	Simulation SimulationConfig               `yaml:"simulation"`
	Map        MapConfig                      `yaml:"map"`
	Room       RoomConfig                     `yaml:"room"`
	Telemetry  TelemetryConfig                `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// TerrainStats holds per-terrain movement and slime parameters.
type TerrainStats struct {
	BaseSpeed       float64 `yaml:"base_speed"`       // Tiles per tick with no slime
	HydrationCost   float64 `yaml:"hydration_cost"`   // Hydration spent per moving tick
	SlimeWeight     float64 `yaml:"slime_weight"`     // Deposit multiplier
	Hard            bool    `yaml:"hard"`             // Dehydration is lethal here
	ColonyBuildable bool    `yaml:"colony_buildable"` // Colonies may be founded here
}

// Passable reports whether units can traverse the terrain at all.
func (s TerrainStats) Passable() bool {
	return s.BaseSpeed > 0
}

// MoistureThresholds are the lower bounds of the wet and damp bands.
type MoistureThresholds struct {
	Wet  float64 `yaml:"wet"`
	Damp float64 `yaml:"damp"`
}

// DryRoadConfig replaces Road movement stats while the ground is dry.
type DryRoadConfig struct {
	BaseSpeed     float64 `yaml:"base_speed"`
	HydrationCost float64 `yaml:"hydration_cost"`
}

// MoistureConfig holds ambient moisture parameters.
type MoistureConfig struct {
	Start       float64            `yaml:"start"`
	DropPerTick float64            `yaml:"drop_per_tick"`
	Thresholds  MoistureThresholds `yaml:"thresholds"`
	DryRoad     DryRoadConfig      `yaml:"dry_road"`
}

// Band classifies a moisture value against the thresholds.
func (m MoistureConfig) Band(moisture float64) Band {
	switch {
	case moisture >= m.Thresholds.Wet:
		return BandWet
	case moisture >= m.Thresholds.Damp:
		return BandDamp
	default:
		return BandDry
	}
}

// Band is a moisture band.
type Band string

const (
	BandWet  Band = "wet"
	BandDamp Band = "damp"
	BandDry  Band = "dry"
)

// SlimeConfig holds slime deposit, bonus and decay parameters.
type SlimeConfig struct {
	DepositRate      float64                            `yaml:"deposit_rate"`
	SpeedBonusMax    float64                            `yaml:"speed_bonus_max"`
	HydrationSaveMax float64                            `yaml:"hydration_save_max"`
	DecayPerTick     map[Band]map[world.Terrain]float64 `yaml:"decay_per_tick"`
}

// Decay returns the per-tick decay rate for a terrain in a band. Missing entries decay at 0.
func (s SlimeConfig) Decay(band Band, terrain world.Terrain) float64 {
	return s.DecayPerTick[band][terrain]
}

// WorkerConfig holds worker unit parameters.
type WorkerConfig struct {
	HydrationMax  float64         `yaml:"hydration_max"`
	CarryCapacity float64         `yaml:"carry_capacity"`
	SpawnCost     world.Resources `yaml:"spawn_cost"`
}

// BaseConfig places and stocks the starting base.
type BaseConfig struct {
	X     int             `yaml:"x"`
	Y     int             `yaml:"y"`
	Stock world.Resources `yaml:"stock"`
}

// ColonyConfig holds colony construction parameters.
type ColonyConfig struct {
	BuildCost        world.Resources `yaml:"build_cost"`
	BuildTimeSeconds float64         `yaml:"build_time_seconds"`
}

// AuraConfig holds bonuses granted near active bases.
type AuraConfig struct {
	Radius                  float64 `yaml:"radius"`
	SpeedBonus              float64 `yaml:"speed_bonus"`               // Flat speed added inside an aura
	HydrationHardMultiplier float64 `yaml:"hydration_hard_multiplier"` // Scales hydration cost inside an aura
	SlimeDecayMultiplier    float64 `yaml:"slime_decay_multiplier"`    // Scales slime decay inside an aura
}

// UpkeepConfig holds periodic colony costs.
type UpkeepConfig struct {
	IntervalSeconds        float64         `yaml:"interval_seconds"`
	Base                   world.Resources `yaml:"base"`
	Colony                 world.Resources `yaml:"colony"`
	DormantCollapseSeconds float64         `yaml:"dormant_collapse_seconds"`
	Aura                   AuraConfig      `yaml:"aura"`
}

// GoalConfig holds victory conditions.
type GoalConfig struct {
	ColoniesRequired int     `yaml:"colonies_required"`
	SustainMinutes   float64 `yaml:"sustain_minutes"`
	MinStockAny      float64 `yaml:"active_min_stock_any"`
}

// RouteWeights tunes how strongly a route follows slime.
type RouteWeights struct {
	K               float64 `yaml:"k"`                // Hydration penalty reduction per unit slime
	SlimePreference float64 `yaml:"slime_preference"` // Flat discount on well-slimed tiles
}

// AutomationConfig holds worker automation parameters.
type AutomationConfig struct {
	IntervalTicks     int          `yaml:"interval_ticks"`     // 0 means tick_rate/2
	TrailThreshold    float64      `yaml:"trail_threshold"`    // Slime that counts as an existing trail
	RepairThreshold   float64      `yaml:"repair_threshold"`   // Slime below which maintenance is scheduled
	PioneerSlime      float64      `yaml:"pioneer_slime"`      // Slime painted along a pioneer route
	WaypointTolerance float64      `yaml:"waypoint_tolerance"` // Per-axis distance that counts as reached
	Pioneer           RouteWeights `yaml:"pioneer"`
	Convoy            RouteWeights `yaml:"convoy"`
	Maintenance       RouteWeights `yaml:"maintenance"`
}

// SimulationConfig holds the tick pipeline order.
type SimulationConfig struct {
	Order []string `yaml:"order"`
}

// MapConfig selects the map a simulation starts on.
type MapConfig struct {
	Path   string `yaml:"path"` // Map file; empty generates from seed
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Seed   uint32 `yaml:"seed"`
}

// RoomConfig holds room scheduling parameters.
type RoomConfig struct {
	MaxPlayers        int     `yaml:"max_players"`
	BroadcastEvery    int     `yaml:"broadcast_every"`     // Ticks between snapshots
	CommandsPerSecond float64 `yaml:"commands_per_second"` // Per-player command rate
	CommandBurst      int     `yaml:"command_burst"`
	InboxSize         int     `yaml:"inbox_size"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per statistics window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	UpkeepIntervalTicks     int // Upkeep.IntervalSeconds in ticks
	BuildTicks              int // Colony.BuildTimeSeconds in ticks
	DormantCollapseTicks    int // Upkeep.DormantCollapseSeconds in ticks
	SustainTicks            int // Goal.SustainMinutes in ticks
	AutomationIntervalTicks int // Ticks between automation passes
	AuraRadiusSq            float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error. Intended for tests and tools.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("%w: tick_rate must be positive, got %d", ErrInvalid, c.TickRate)
	}
	if c.Moisture.Thresholds.Damp > c.Moisture.Thresholds.Wet {
		return fmt.Errorf("%w: damp threshold %v above wet threshold %v",
			ErrInvalid, c.Moisture.Thresholds.Damp, c.Moisture.Thresholds.Wet)
	}
	for _, t := range world.Terrains {
		if _, ok := c.Terrain[t]; !ok {
			return fmt.Errorf("%w: terrain %s has no stats", ErrInvalid, t)
		}
	}
	if len(c.Simulation.Order) == 0 {
		return fmt.Errorf("%w: simulation.order is empty", ErrInvalid)
	}
	return nil
}

// ComputeDerived recalculates values derived from loaded config.
// Call it after changing any field by hand.
func (c *Config) ComputeDerived() {
	c.Derived.UpkeepIntervalTicks = c.Ticks(c.Upkeep.IntervalSeconds)
	c.Derived.BuildTicks = c.Ticks(c.Colony.BuildTimeSeconds)
	c.Derived.DormantCollapseTicks = c.Ticks(c.Upkeep.DormantCollapseSeconds)
	c.Derived.SustainTicks = c.Ticks(c.Goal.SustainMinutes * 60)

	c.Derived.AutomationIntervalTicks = c.Automation.IntervalTicks
	if c.Derived.AutomationIntervalTicks <= 0 {
		c.Derived.AutomationIntervalTicks = max(1, c.TickRate/2)
	}
	c.Derived.AuraRadiusSq = c.Upkeep.Aura.Radius * c.Upkeep.Aura.Radius
}

// Ticks converts seconds to whole ticks at the configured tick rate.
func (c *Config) Ticks(seconds float64) int {
	return int(math.Round(seconds * float64(c.TickRate)))
}

// TerrainStats returns stats for a terrain. Unknown terrain is impassable.
func (c *Config) TerrainStats(t world.Terrain) TerrainStats {
	return c.Terrain[t]
}

// IsHard reports whether a terrain is classified hard.
func (c *Config) IsHard(t world.Terrain) bool {
	return c.Terrain[t].Hard
}

// Clone returns a deep copy so that each simulation owns its parameters.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Terrain = maps.Clone(c.Terrain)
	cp.Slime.DecayPerTick = make(map[Band]map[world.Terrain]float64, len(c.Slime.DecayPerTick))
	for band, table := range c.Slime.DecayPerTick {
		cp.Slime.DecayPerTick[band] = maps.Clone(table)
	}
	cp.Simulation.Order = slices.Clone(c.Simulation.Order)
	return &cp
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
