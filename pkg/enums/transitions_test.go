package enums

import "testing"

func TestGroupOrderTransitions(t *testing.T) {
	allowed := []struct {
		from GroupOrderStatus
		to   GroupOrderStatus
	}{
		{GroupOrderStatusPending, GroupOrderStatusInProgress},
		{GroupOrderStatusPending, GroupOrderStatusCancelled},
		{GroupOrderStatusInProgress, GroupOrderStatusCompleted},
	}
	for _, tt := range allowed {
		if !tt.from.CanTransitionTo(tt.to) {
			t.Fatalf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}

	denied := []struct {
		from GroupOrderStatus
		to   GroupOrderStatus
	}{
		{GroupOrderStatusPending, GroupOrderStatusCompleted},
		{GroupOrderStatusInProgress, GroupOrderStatusCancelled},
		{GroupOrderStatusCompleted, GroupOrderStatusPending},
		{GroupOrderStatusCancelled, GroupOrderStatusInProgress},
		{GroupOrderStatusCompleted, GroupOrderStatusCancelled},
	}
	for _, tt := range denied {
		if tt.from.CanTransitionTo(tt.to) {
			t.Fatalf("expected %s -> %s to be rejected", tt.from, tt.to)
		}
	}

	if !GroupOrderStatusCompleted.IsTerminal() || !GroupOrderStatusCancelled.IsTerminal() {
		t.Fatalf("completed and cancelled should be terminal")
	}
	if GroupOrderStatusPending.IsTerminal() {
		t.Fatalf("pending should not be terminal")
	}
}

func TestDistributionTransitions(t *testing.T) {
	if !DistributionStatusPending.CanTransitionTo(DistributionStatusScheduled) {
		t.Fatalf("pending should schedule")
	}
	if !DistributionStatusPending.CanTransitionTo(DistributionStatusCancelled) {
		t.Fatalf("pending should cancel")
	}
	if !DistributionStatusScheduled.CanTransitionTo(DistributionStatusDistributed) {
		t.Fatalf("scheduled should distribute")
	}

	if DistributionStatusScheduled.CanTransitionTo(DistributionStatusCancelled) {
		t.Fatalf("scheduled must not cancel")
	}
	if DistributionStatusDistributed.CanTransitionTo(DistributionStatusScheduled) {
		t.Fatalf("distributed must not move back")
	}
	if DistributionStatusPending.CanTransitionTo(DistributionStatusDistributed) {
		t.Fatalf("pending must not skip scheduled")
	}

	if !DistributionStatusDistributed.IsTerminal() || !DistributionStatusCancelled.IsTerminal() {
		t.Fatalf("distributed and cancelled should be terminal")
	}
}

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("DEPT_HEAD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if role != UserRoleDeptHead {
		t.Fatalf("unexpected role %s", role)
	}
	if _, err := ParseUserRole("dept_head"); err == nil {
		t.Fatalf("lowercase role should be rejected")
	}
}
