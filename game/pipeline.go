package game

import (
	"fmt"

	"github.com/pthm-cable/slimeworks/systems"
	"github.com/pthm-cable/slimeworks/telemetry"
)

// Step advances the simulation by one tick.
//
// The configured steps run in order. Every automation interval the planner
// then assigns new orders, which the driver picks up on the next tick.
func (s *Simulation) Step() {
	s.tick++
	s.perf.StartTick()

	for _, step := range s.order {
		s.perf.StartPhase(step.String())
		s.runStep(step)
	}

	if s.tick%s.cfg.Derived.AutomationIntervalTicks == 0 {
		s.perf.StartPhase(PhasePlanning)
		s.planner.Plan(s.cfg, s.m, s.env, s.startingBaseID)
	}

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	s.perf.EndTick()
}

// RunStep executes a single pipeline step outside the configured order.
// It does not advance the tick counter.
func (s *Simulation) RunStep(step systems.StepKind) {
	s.runStep(step)
}

func (s *Simulation) runStep(step systems.StepKind) {
	switch step {
	case systems.StepUpdateMoistureAndAuras:
		systems.UpdateMoistureAndAuras(s.cfg, s.m, s.store, s.env)
	case systems.StepColonization:
		s.colonization.Update(s.cfg, s.m)
		for _, r := range s.colonization.Results() {
			if r.Accepted {
				s.collector.RecordColonyFounded()
			}
		}
		for range s.colonization.Completed() {
			s.collector.RecordColonyCompleted()
		}
	case systems.StepSlimeDecay:
		s.slime.Decay(s.cfg, s.m, s.env)
	case systems.StepDriveWorkerOrders:
		s.driver.Update(s.cfg)
	case systems.StepUnitMovement:
		s.movement.Update(s.cfg, s.m, s.env)
	case systems.StepHydration:
		s.updateHydration()
	case systems.StepSlimeDeposit:
		s.slime.Deposit(s.cfg, s.m, s.env)
	case systems.StepUnitMovementAndSlimeDeposit:
		s.movement.Update(s.cfg, s.m, s.env)
		s.updateHydration()
		s.slime.Deposit(s.cfg, s.m, s.env)
	case systems.StepGatherAndDeliver:
		s.harvest.Update(s.m, s.startingBaseID)
	case systems.StepUpkeep:
		for _, c := range s.upkeep.Update(s.cfg, s.m, s.startingBaseID) {
			s.collapses++
			s.collector.RecordCollapse()
			s.planner.ForgetBase(c.BaseID)
		}
	case systems.StepCheckGoal:
		s.scoring.Update(s.cfg)
	case systems.StepCleanupOrders:
		s.driver.Cleanup()
	default:
		// Orders are parsed at construction, so this is a programming error
		panic(fmt.Sprintf("game: unhandled pipeline step %s", step))
	}
}

func (s *Simulation) updateHydration() {
	s.hydration.Update(s.cfg, s.m, s.env)
	for range s.hydration.Deaths() {
		s.collector.RecordDeath()
	}
}
