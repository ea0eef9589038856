// Package automation plans and drives autonomous worker routes: pioneers that
// blaze slime trails, convoys that ferry resources and maintainers that repair
// decayed trail tiles. Orders live in a side table keyed by worker id, outside
// the ECS store, and are dropped whenever their worker dies or is removed.
package automation

import (
	"slices"

	"github.com/pthm-cable/slimeworks/components"
	"github.com/pthm-cable/slimeworks/world"
)

// Order is a waypoint route assigned to one worker.
type Order struct {
	Kind      components.Task
	BaseID    uint32
	Waypoints []world.Point
	Loop      []world.Point // Refills Waypoints when exhausted; nil for one-shot routes
}

// Next returns the waypoint the worker is heading for.
func (o *Order) Next() (world.Point, bool) {
	if len(o.Waypoints) == 0 {
		return world.Point{}, false
	}
	return o.Waypoints[0], true
}

// OrderBook holds worker orders keyed by worker id.
type OrderBook struct {
	orders map[uint32]*Order
}

// NewOrderBook creates an empty order book.
func NewOrderBook() *OrderBook {
	return &OrderBook{orders: make(map[uint32]*Order)}
}

// Get returns a worker's order.
func (b *OrderBook) Get(workerID uint32) (*Order, bool) {
	o, ok := b.orders[workerID]
	return o, ok
}

// Has reports whether a worker has an order.
func (b *OrderBook) Has(workerID uint32) bool {
	_, ok := b.orders[workerID]
	return ok
}

// Kind returns the kind of a worker's order, or TaskIdle without one.
func (b *OrderBook) Kind(workerID uint32) components.Task {
	if o, ok := b.orders[workerID]; ok {
		return o.Kind
	}
	return components.TaskIdle
}

// Set replaces a worker's order.
func (b *OrderBook) Set(workerID uint32, o *Order) {
	b.orders[workerID] = o
}

// Delete drops a worker's order.
func (b *OrderBook) Delete(workerID uint32) {
	delete(b.orders, workerID)
}

// Len returns the number of orders.
func (b *OrderBook) Len() int {
	return len(b.orders)
}

// WorkerIDs returns ids of workers holding orders, ascending.
func (b *OrderBook) WorkerIDs() []uint32 {
	ids := make([]uint32, 0, len(b.orders))
	for id := range b.orders {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Clear drops every order.
func (b *OrderBook) Clear() {
	clear(b.orders)
}
