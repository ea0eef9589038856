// Package world defines the tile map the simulation runs on.
package world

// Terrain names a ground type. Per-terrain stats live in the config terrain table.
type Terrain string

const (
	TerrainDirt            Terrain = "Dirt"
	TerrainMud             Terrain = "Mud"
	TerrainSand            Terrain = "Sand"
	TerrainRock            Terrain = "Rock"
	TerrainBrush           Terrain = "Brush"
	TerrainCliff           Terrain = "Cliff"
	TerrainShallowWaterBed Terrain = "ShallowWaterBed"
	TerrainRoad            Terrain = "Road"
)

// Terrains lists every known terrain in declaration order.
var Terrains = []Terrain{
	TerrainDirt,
	TerrainMud,
	TerrainSand,
	TerrainRock,
	TerrainBrush,
	TerrainCliff,
	TerrainShallowWaterBed,
	TerrainRoad,
}

// Valid reports whether t is a known terrain.
func (t Terrain) Valid() bool {
	for _, known := range Terrains {
		if t == known {
			return true
		}
	}
	return false
}

// WaterLayer is the standing water on a tile.
type WaterLayer string

const (
	WaterNone   WaterLayer = "None"
	WaterPuddle WaterLayer = "Puddle"
	WaterStream WaterLayer = "Stream"
	WaterFull   WaterLayer = "Full"
)

// GrassLayer is the vegetation cover on a tile.
type GrassLayer string

const (
	GrassNone   GrassLayer = "None"
	GrassSparse GrassLayer = "Sparse"
	GrassNormal GrassLayer = "Normal"
	GrassDense  GrassLayer = "Dense"
)

// Structure is a built feature occupying a tile.
type Structure string

const (
	StructureNone   Structure = "None"
	StructureColony Structure = "Colony"
	StructureBridge Structure = "Bridge"
)

// Resources is the harvestable stock embedded in a tile.
type Resources struct {
	Biomass float64 `yaml:"biomass" json:"biomass"`
	Water   float64 `yaml:"water" json:"water"`
}

// Empty reports whether nothing is left to harvest.
func (r Resources) Empty() bool {
	return r.Biomass <= 0 && r.Water <= 0
}

// Tile is one grid cell.
type Tile struct {
	Terrain   Terrain    `yaml:"terrain" json:"terrain"`
	Water     WaterLayer `yaml:"water" json:"water"`
	Grass     GrassLayer `yaml:"grass" json:"grass"`
	Structure Structure  `yaml:"structure" json:"structure"`
	Slime     float64    `yaml:"slime_intensity" json:"slime_intensity"`
	Resources Resources  `yaml:"resources" json:"resources"`
}

// AddSlime changes slime intensity by delta, keeping it within [0,1].
func (t *Tile) AddSlime(delta float64) {
	t.Slime = clamp01(t.Slime + delta)
}

// HasColony reports whether a colony structure stands on the tile.
func (t *Tile) HasColony() bool {
	return t.Structure == StructureColony
}

// normalize fills unset layer fields with their None values.
func (t *Tile) normalize() {
	if t.Terrain == "" {
		t.Terrain = TerrainDirt
	}
	if t.Water == "" {
		t.Water = WaterNone
	}
	if t.Grass == "" {
		t.Grass = GrassNone
	}
	if t.Structure == "" {
		t.Structure = StructureNone
	}
	t.Slime = clamp01(t.Slime)
	if t.Resources.Biomass < 0 {
		t.Resources.Biomass = 0
	}
	if t.Resources.Water < 0 {
		t.Resources.Water = 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
