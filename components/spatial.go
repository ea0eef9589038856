// Package components defines ECS components for the simulation.
package components

// Position represents an entity's position in continuous tile coordinates.
type Position struct {
	X, Y float64
}

// Velocity represents an entity's velocity.
// Step is the distance actually travelled during the last movement pass.
type Velocity struct {
	X, Y float64
	Step float64
}

// Moving reports whether the entity moved or was set moving this tick.
func (v Velocity) Moving() bool {
	return v.X != 0 || v.Y != 0
}

// Destination is a steering target. Active is cleared on arrival.
type Destination struct {
	X, Y   float64
	Active bool
}
