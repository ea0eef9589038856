package systems

import (
	"errors"
	"testing"
)

func TestParseOrderDefaults(t *testing.T) {
	cfg := testConfig(t)
	order, err := ParseOrder(cfg.Simulation.Order)
	if err != nil {
		t.Fatalf("default order: %v", err)
	}
	if len(order) != len(cfg.Simulation.Order) {
		t.Fatalf("parsed %d steps, want %d", len(order), len(cfg.Simulation.Order))
	}
	for i, k := range order {
		if k.String() != cfg.Simulation.Order[i] {
			t.Errorf("step %d = %s, want %s", i, k, cfg.Simulation.Order[i])
		}
	}
}

func TestParseOrderUnknown(t *testing.T) {
	_, err := ParseOrder([]string{"colonization", "teleport"})
	if !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("err = %v, want ErrUnknownStep", err)
	}
}

func TestAllStepsIndexed(t *testing.T) {
	seen := make(map[string]bool)
	for i, info := range AllSteps() {
		if int(info.Kind) != i {
			t.Errorf("step %s at index %d has kind %d", info.ID, i, info.Kind)
		}
		if seen[info.ID] {
			t.Errorf("duplicate step id %s", info.ID)
		}
		seen[info.ID] = true
		if k, err := ParseStep(info.ID); err != nil || k != info.Kind {
			t.Errorf("ParseStep(%s) = %v, %v", info.ID, k, err)
		}
	}
	if StepKind(200).String() != "StepKind(200)" {
		t.Errorf("out of range String = %s", StepKind(200))
	}
}
