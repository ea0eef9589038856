package world

// generatorPool is the weighted terrain pool for seeded maps.
var generatorPool = []Terrain{
	TerrainDirt,
	TerrainDirt,
	TerrainMud,
	TerrainBrush,
	TerrainBrush,
	TerrainSand,
	TerrainRock,
	TerrainRoad,
}

// lcg is a 32-bit linear congruential generator returning values in [0,1].
type lcg struct {
	state uint32
}

func (r *lcg) next() float64 {
	r.state = 1664525*r.state + 1013904223
	return float64(r.state) / float64(0xffffffff)
}

func (r *lcg) intn(n int) int {
	v := int(r.next() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// Generate builds a width x height map from seed. Identical seeds give identical maps.
// isHard classifies terrain for resource density; hard tiles carry fewer resources.
// The 4x4 corner around the origin is kept free of water and lightly seeded with biomass,
// and the origin tile itself is forced to Dirt.
func Generate(width, height int, seed uint32, moisture float64, isHard func(Terrain) bool) *Map {
	m := NewMap(width, height, TerrainDirt)
	m.Version = 1
	m.Moisture = moisture
	if width <= 0 || height <= 0 {
		return m
	}

	rng := &lcg{state: seed}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := m.At(x, y)
			t.Terrain = generatorPool[rng.intn(len(generatorPool))]

			hard := isHard != nil && isHard(t.Terrain)
			waterChance, biomassChance := 0.11, 0.23
			if hard {
				waterChance, biomassChance = 0.05, 0.07
			}

			if x <= 3 && y <= 3 {
				t.Resources = Resources{Biomass: 2}
				continue
			}
			if rng.next() < waterChance {
				t.Resources.Water = float64(2 + rng.intn(4))
			}
			if rng.next() < biomassChance {
				t.Resources.Biomass = float64(2 + rng.intn(5))
			}
		}
	}

	origin := m.At(0, 0)
	origin.Terrain = TerrainDirt
	origin.Resources = Resources{Biomass: 1}
	return m
}
