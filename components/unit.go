package components

// Task is what a worker is currently doing.
type Task string

const (
	TaskIdle        Task = "idle"
	TaskManual      Task = "manual"
	TaskPioneer     Task = "pioneer"
	TaskConvoy      Task = "convoy"
	TaskMaintenance Task = "maintenance"
	TaskDead        Task = "dead"
)

// Worker holds unit identity, cargo and assignment.
type Worker struct {
	ID            uint32
	Owner         string
	BaseID        uint32 // Base the worker delivers to
	CarryBiomass  float64
	CarryWater    float64
	CarryCapacity float64
	Task          Task
}

// Carried returns total cargo.
func (w *Worker) Carried() float64 {
	return w.CarryBiomass + w.CarryWater
}

// FreeCapacity returns remaining cargo space, never negative.
func (w *Worker) FreeCapacity() float64 {
	return max(0, w.CarryCapacity-w.Carried())
}

// Hydration tracks a worker's water reserve.
type Hydration struct {
	Value float64
	Max   float64
}

// Dead tag component for workers that dehydrated on hard terrain.
type Dead struct{}
