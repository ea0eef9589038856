package automation

import (
	"math"
	"slices"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/config"
	"github.com/pthm-cable/slimeworks/systems"
)

// Driver feeds order waypoints into worker destinations.
type Driver struct {
	store  *systems.Store
	orders *OrderBook
}

// NewDriver creates a driver over an order book.
func NewDriver(store *systems.Store, orders *OrderBook) *Driver {
	return &Driver{store: store, orders: orders}
}

// Update advances every alive worker's order by one tick.
//
// Waypoints the worker is standing on are popped. An exhausted looping order
// refills from its loop; an exhausted one-shot order is deleted. A worker that
// is not travelling is sent toward its next waypoint.
func (d *Driver) Update(cfg *config.Config) {
	tol := cfg.Automation.WaypointTolerance
	for _, w := range d.store.Workers() {
		if w.Dead {
			continue
		}
		o, ok := d.orders.Get(w.Worker.ID)
		if !ok {
			if !w.Dest.Active && w.Worker.Task != components.TaskManual {
				w.Worker.Task = components.TaskIdle
			}
			continue
		}

		for len(o.Waypoints) > 0 {
			next := o.Waypoints[0]
			if math.Abs(w.Pos.X-float64(next.X)) >= tol || math.Abs(w.Pos.Y-float64(next.Y)) >= tol {
				break
			}
			o.Waypoints = o.Waypoints[1:]
		}

		if len(o.Waypoints) == 0 {
			if len(o.Loop) == 0 {
				d.orders.Delete(w.Worker.ID)
				if !w.Dest.Active {
					w.Worker.Task = components.TaskIdle
				}
				continue
			}
			o.Waypoints = slices.Clone(o.Loop)
		}

		if !w.Dest.Active {
			next, _ := o.Next()
			*w.Dest = destination(next)
		}
	}
}

// Cleanup deletes orders whose worker is dead or gone.
func (d *Driver) Cleanup() {
	for _, id := range d.orders.WorkerIDs() {
		if w, ok := d.store.Worker(id); !ok || w.Dead {
			d.orders.Delete(id)
		}
	}
}

// ClearOwner drops every order held by an owner's workers and stops the
// survivors where they stand.
func (d *Driver) ClearOwner(owner string) {
	for _, w := range d.store.Workers() {
		if w.Worker.Owner != owner {
			continue
		}
		d.orders.Delete(w.Worker.ID)
		if w.Dead {
			continue
		}
		w.Worker.Task = components.TaskIdle
		*w.Dest = components.Destination{X: w.Pos.X, Y: w.Pos.Y}
		*w.Vel = components.Velocity{}
	}
}
