package authz

import "testing"

func TestCanDeliverableTransition_HappyPath(t *testing.T) {
	path := []DeliverableStatus{
		DeliverablePending,
		DeliverableInProgress,
		DeliverableBetaReady,
		DeliverableAwaitingApproval,
		DeliverableApproved,
		DeliverablePaymentPending,
		DeliverableFinalDelivered,
	}

	for i := 0; i < len(path)-1; i++ {
		if !CanDeliverableTransition(path[i], path[i+1]) {
			t.Errorf("%s → %s should be allowed", path[i], path[i+1])
		}
	}
}

func TestCanDeliverableTransition_RevisionLoop(t *testing.T) {
	if !CanDeliverableTransition(DeliverableAwaitingApproval, DeliverableRevisionRequested) {
		t.Error("awaiting_approval → revision_requested should be allowed")
	}
	if !CanDeliverableTransition(DeliverableRevisionRequested, DeliverableInProgress) {
		t.Error("revision_requested → in_progress should be allowed")
	}
	if !CanDeliverableTransition(DeliverableAwaitingApproval, DeliverableRejected) {
		t.Error("awaiting_approval → rejected should be allowed")
	}
	if !CanDeliverableTransition(DeliverableRejected, DeliverableInProgress) {
		t.Error("rejected → in_progress should be allowed")
	}
}

func TestCanDeliverableTransition_Forbidden(t *testing.T) {
	tests := []struct {
		from, to DeliverableStatus
	}{
		{DeliverablePending, DeliverableFinalDelivered},
		{DeliverablePending, DeliverableApproved},
		{DeliverableInProgress, DeliverableAwaitingApproval},
		{DeliverableApproved, DeliverableInProgress},
		{DeliverableFinalDelivered, DeliverableInProgress},
		{DeliverableFinalDelivered, DeliverablePending},
		{DeliverableAwaitingApproval, DeliverableFinalDelivered},
	}

	for _, tt := range tests {
		if CanDeliverableTransition(tt.from, tt.to) {
			t.Errorf("%s → %s should not be allowed", tt.from, tt.to)
		}
	}
}

func TestNextDeliverableStatuses(t *testing.T) {
	next := NextDeliverableStatuses(DeliverableAwaitingApproval)
	if len(next) != 3 {
		t.Errorf("awaiting_approval should have 3 next statuses, got %d: %v", len(next), next)
	}

	if got := NextDeliverableStatuses(DeliverableFinalDelivered); len(got) != 0 {
		t.Errorf("final_delivered should be terminal, got %v", got)
	}

	// Returned slice is a copy; mutating it must not corrupt the table.
	next[0] = DeliverablePending
	again := NextDeliverableStatuses(DeliverableAwaitingApproval)
	if again[0] == DeliverablePending {
		t.Error("NextDeliverableStatuses should return a copy of the table row")
	}
}

func TestProjectStatus_Valid(t *testing.T) {
	for _, s := range ProjectStatuses {
		if !s.Valid() {
			t.Errorf("ProjectStatus(%q).Valid() = false, expected true", s)
		}
	}
	for _, s := range []ProjectStatus{"", "deleted", "ACTIVE", "paused"} {
		if s.Valid() {
			t.Errorf("ProjectStatus(%q).Valid() = true, expected false", s)
		}
	}
}
