package authz

import (
	"strings"
	"testing"
)

// TestValidateTransition_AllPairs checks every ordered pair of the seven
// project statuses, including self-pairs, so no combination is left to
// chance.
func TestValidateTransition_AllPairs(t *testing.T) {
	for _, from := range ProjectStatuses {
		for _, to := range ProjectStatuses {
			result := ValidateTransition(from, to)

			var wantValid bool
			switch {
			case from == to:
				wantValid = false
			case from == ProjectArchived:
				wantValid = false
			case from == ProjectCompleted && to == ProjectDraft:
				wantValid = false
			default:
				wantValid = true
			}

			if result.IsValid != wantValid {
				t.Errorf("ValidateTransition(%s, %s).IsValid = %v, expected %v",
					from, to, result.IsValid, wantValid)
			}
			if !result.IsValid && result.Error == "" {
				t.Errorf("ValidateTransition(%s, %s) invalid but Error is empty", from, to)
			}
			if result.IsValid && result.Error != "" {
				t.Errorf("ValidateTransition(%s, %s) valid but Error = %q", from, to, result.Error)
			}
		}
	}
}

func TestValidateTransition_SelfTransition(t *testing.T) {
	for _, s := range ProjectStatuses {
		result := ValidateTransition(s, s)
		if result.IsValid {
			t.Errorf("self-transition for %s should be invalid", s)
		}
		if result.Error != "project is already in this status" {
			t.Errorf("self-transition error = %q, expected %q",
				result.Error, "project is already in this status")
		}
	}
}

func TestValidateTransition_ArchivedIsOneWay(t *testing.T) {
	result := ValidateTransition(ProjectArchived, ProjectActive)
	if result.IsValid {
		t.Error("archived → active should be invalid")
	}
	if result.Error != "archived projects cannot change status" {
		t.Errorf("error = %q, expected %q", result.Error, "archived projects cannot change status")
	}

	result = ValidateTransition(ProjectActive, ProjectArchived)
	if !result.IsValid {
		t.Errorf("active → archived should be valid, got error %q", result.Error)
	}
}

func TestValidateTransition_ArchivingAlwaysAllowed(t *testing.T) {
	for _, from := range ProjectStatuses {
		if from == ProjectArchived {
			continue
		}
		if result := ValidateTransition(from, ProjectArchived); !result.IsValid {
			t.Errorf("%s → archived should be valid, got error %q", from, result.Error)
		}
	}
}

func TestValidateTransition_CompletedCannotReturnToDraft(t *testing.T) {
	result := ValidateTransition(ProjectCompleted, ProjectDraft)
	if result.IsValid {
		t.Error("completed → draft should be invalid")
	}
	if result.Error != "completed projects cannot be moved back to draft" {
		t.Errorf("error = %q, expected %q",
			result.Error, "completed projects cannot be moved back to draft")
	}

	// A completed project can be reopened or parked anywhere else.
	for _, to := range []ProjectStatus{ProjectActive, ProjectInReview, ProjectAwaitingPayment, ProjectOnHold, ProjectArchived} {
		if result := ValidateTransition(ProjectCompleted, to); !result.IsValid {
			t.Errorf("completed → %s should be valid, got error %q", to, result.Error)
		}
	}
}

func TestValidateTransition_OperationalStatesInterchangeable(t *testing.T) {
	operational := []ProjectStatus{ProjectDraft, ProjectActive, ProjectInReview, ProjectAwaitingPayment, ProjectOnHold}
	for _, from := range operational {
		for _, to := range operational {
			if from == to {
				continue
			}
			if result := ValidateTransition(from, to); !result.IsValid {
				t.Errorf("%s → %s should be valid, got error %q", from, to, result.Error)
			}
		}
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	tests := []struct {
		from, to ProjectStatus
	}{
		{"deleted", ProjectActive},
		{ProjectActive, "deleted"},
		{"", ProjectActive},
		{ProjectActive, ""},
	}

	for _, tt := range tests {
		result := ValidateTransition(tt.from, tt.to)
		if result.IsValid {
			t.Errorf("ValidateTransition(%q, %q) should be invalid", tt.from, tt.to)
		}
		if !strings.Contains(result.Error, "unknown project status") {
			t.Errorf("ValidateTransition(%q, %q) error = %q, expected unknown-status message",
				tt.from, tt.to, result.Error)
		}
	}
}

func TestAllowedTransitions(t *testing.T) {
	if got := AllowedTransitions(ProjectArchived); len(got) != 0 {
		t.Errorf("archived should have no allowed transitions, got %v", got)
	}

	active := AllowedTransitions(ProjectActive)
	if len(active) != 6 {
		t.Errorf("active should have 6 allowed transitions, got %d: %v", len(active), active)
	}

	completed := AllowedTransitions(ProjectCompleted)
	for _, to := range completed {
		if to == ProjectDraft {
			t.Error("completed should not allow transition to draft")
		}
	}
}
