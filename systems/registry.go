package systems

import (
	"errors"
	"fmt"
)

// ErrUnknownStep is returned when a pipeline names a step that does not exist.
var ErrUnknownStep = errors.New("unknown pipeline step")

// StepKind identifies one pipeline step.
type StepKind uint8

const (
	StepUpdateMoistureAndAuras StepKind = iota
	StepColonization
	StepSlimeDecay
	StepDriveWorkerOrders
	StepUnitMovement
	StepHydration
	StepSlimeDeposit
	StepUnitMovementAndSlimeDeposit
	StepGatherAndDeliver
	StepUpkeep
	StepCheckGoal
	StepCleanupOrders
	numStepKinds
)

// SystemInfo describes a pipeline step.
type SystemInfo struct {
	Kind        StepKind
	ID          string // Name used in simulation.order
	Description string
	Category    string // Grouping (e.g. "environment", "economy")
}

// steps is indexed by StepKind.
var steps = [numStepKinds]SystemInfo{
	{StepUpdateMoistureAndAuras, "update_moisture_and_auras", "Dries the ground and collects active auras", "environment"},
	{StepColonization, "colonization", "Advances construction and funds build requests", "economy"},
	{StepSlimeDecay, "slime_decay", "Decays slime by moisture band", "environment"},
	{StepDriveWorkerOrders, "drive_worker_orders", "Feeds order waypoints to destinations", "automation"},
	{StepUnitMovement, "unit_movement", "Moves units toward destinations", "units"},
	{StepHydration, "hydration", "Charges and refills hydration", "units"},
	{StepSlimeDeposit, "slime_deposit", "Deposits slime under moving units", "units"},
	{StepUnitMovementAndSlimeDeposit, "unit_movement_and_slime_deposit", "Movement, hydration and deposit in order", "units"},
	{StepGatherAndDeliver, "gather_and_deliver", "Harvests tiles and unloads at bases", "economy"},
	{StepUpkeep, "upkeep_tick_if_due", "Charges upkeep and collapses dormant colonies", "economy"},
	{StepCheckGoal, "check_goal", "Updates goal progress and result", "scoring"},
	{StepCleanupOrders, "cleanup_orders", "Drops orders of dead or removed workers", "automation"},
}

var stepsByID = func() map[string]StepKind {
	byID := make(map[string]StepKind, len(steps))
	for _, info := range steps {
		byID[info.ID] = info.Kind
	}
	return byID
}()

// String returns the configuration name of the step.
func (k StepKind) String() string {
	if k < numStepKinds {
		return steps[k].ID
	}
	return fmt.Sprintf("StepKind(%d)", uint8(k))
}

// Info returns the description of the step.
func (k StepKind) Info() SystemInfo {
	if k < numStepKinds {
		return steps[k]
	}
	return SystemInfo{Kind: k, ID: k.String()}
}

// ParseStep resolves a configured step name.
func ParseStep(name string) (StepKind, error) {
	kind, ok := stepsByID[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownStep, name)
	}
	return kind, nil
}

// ParseOrder resolves a full pipeline order. Any unknown name fails the whole order.
func ParseOrder(names []string) ([]StepKind, error) {
	order := make([]StepKind, 0, len(names))
	for i, name := range names {
		kind, err := ParseStep(name)
		if err != nil {
			return nil, fmt.Errorf("simulation.order[%d]: %w", i, err)
		}
		order = append(order, kind)
	}
	return order, nil
}

// AllSteps returns every step in declaration order.
func AllSteps() []SystemInfo {
	return append([]SystemInfo(nil), steps[:]...)
}
