package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/slimeworks/world"
)

// LoadMap reads a map definition from a YAML (or JSON) file and validates it.
func LoadMap(path string) (*world.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map file: %w", err)
	}
	m := &world.Map{}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parsing map file: %w", err)
	}
	if m.Width <= 0 || m.Height <= 0 || len(m.Tiles) != m.Width*m.Height {
		return nil, fmt.Errorf("validating map file %s: %w", path, world.ErrBadDimensions)
	}
	m.Normalize()
	if err := world.Validate(m); err != nil {
		return nil, fmt.Errorf("validating map file %s: %w", path, err)
	}
	return m, nil
}

// StartMap returns the map a new simulation begins on: the configured file if set,
// otherwise one generated from the configured seed.
func (c *Config) StartMap() (*world.Map, error) {
	if c.Map.Path != "" {
		return LoadMap(c.Map.Path)
	}
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		return nil, fmt.Errorf("%w: map size %dx%d", ErrInvalid, c.Map.Width, c.Map.Height)
	}
	return world.Generate(c.Map.Width, c.Map.Height, c.Map.Seed, c.Moisture.Start, c.IsHard), nil
}
