package room

import (
	"github.com/pthm-cable/slimeworks/game"
	"github.com/pthm-cable/slimeworks/world"
)

// Join adds a player. An empty Owner gets a generated id.
type Join struct {
	Owner string
	Reply chan<- JoinResult // Optional; dropped unless ready or buffered
}

// JoinResult answers a Join.
type JoinResult struct {
	Owner    string
	WorkerID uint32
	Accepted bool
}

// Leave removes a player and everything they own.
type Leave struct {
	Owner string
}

// Spawn buys a worker at the starting base.
type Spawn struct {
	Owner string
}

// Move sends a worker to a tile.
type Move struct {
	Owner    string
	WorkerID uint32
	X, Y     float64
}

// Steer applies directional input to a worker.
type Steer struct {
	Owner    string
	WorkerID uint32
	DX, DY   float64
}

// Build queues a colony on a worker's tile.
type Build struct {
	Owner    string
	WorkerID uint32
}

// AutoMode toggles automation for a player.
type AutoMode struct {
	Owner   string
	Enabled bool
}

// SetMap replaces the room's map.
type SetMap struct {
	Map *world.Map
}

// Query reads a snapshot from inside the room goroutine.
type Query struct {
	Reply chan<- game.Snapshot // Dropped unless ready or buffered
}

// owner returns the player a rate-limited command belongs to.
func owner(cmd any) (string, bool) {
	switch c := cmd.(type) {
	case Spawn:
		return c.Owner, true
	case Move:
		return c.Owner, true
	case Steer:
		return c.Owner, true
	case Build:
		return c.Owner, true
	case AutoMode:
		return c.Owner, true
	}
	return "", false
}
