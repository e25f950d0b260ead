package authz

import "fmt"

// TransitionResult reports whether a project status change is allowed.
// When IsValid is false, Error carries a user-displayable message that the
// caller must surface verbatim and the status change must not be applied.
type TransitionResult struct {
	IsValid bool   `json:"is_valid"`
	Error   string `json:"error,omitempty"`
}

// projectTransitions is the exhaustive adjacency table for project status
// changes. The five operational states (draft, active, in_review,
// awaiting_payment, on_hold) are freely interchangeable — projects go on
// hold and resume, wait for payment and resume. Completed projects can be
// reopened or archived but never return to draft. Archiving is always
// permitted as a hide-rather-than-destroy action; archived is a dead end
// whose only exit is deletion, which is not a transition.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectDraft:           {ProjectActive, ProjectInReview, ProjectAwaitingPayment, ProjectOnHold, ProjectCompleted, ProjectArchived},
	ProjectActive:          {ProjectDraft, ProjectInReview, ProjectAwaitingPayment, ProjectOnHold, ProjectCompleted, ProjectArchived},
	ProjectInReview:        {ProjectDraft, ProjectActive, ProjectAwaitingPayment, ProjectOnHold, ProjectCompleted, ProjectArchived},
	ProjectAwaitingPayment: {ProjectDraft, ProjectActive, ProjectInReview, ProjectOnHold, ProjectCompleted, ProjectArchived},
	ProjectOnHold:          {ProjectDraft, ProjectActive, ProjectInReview, ProjectAwaitingPayment, ProjectCompleted, ProjectArchived},
	ProjectCompleted:       {ProjectActive, ProjectInReview, ProjectAwaitingPayment, ProjectOnHold, ProjectArchived},
	ProjectArchived:        {},
}

// ValidateTransition checks a project status change against the adjacency
// table. Every ordered pair of known statuses resolves deterministically;
// unknown statuses are invalid.
func ValidateTransition(from, to ProjectStatus) TransitionResult {
	if !from.Valid() {
		return TransitionResult{Error: fmt.Sprintf("unknown project status %q", string(from))}
	}
	if !to.Valid() {
		return TransitionResult{Error: fmt.Sprintf("unknown project status %q", string(to))}
	}
	if from == to {
		return TransitionResult{Error: "project is already in this status"}
	}
	if from == ProjectArchived {
		return TransitionResult{Error: "archived projects cannot change status"}
	}
	for _, allowed := range projectTransitions[from] {
		if allowed == to {
			return TransitionResult{IsValid: true}
		}
	}
	if from == ProjectCompleted && to == ProjectDraft {
		return TransitionResult{Error: "completed projects cannot be moved back to draft"}
	}
	return TransitionResult{Error: fmt.Sprintf("cannot change status from %s to %s", string(from), string(to))}
}

// AllowedTransitions returns the statuses reachable from the given status.
// The result is a copy; callers may modify it.
func AllowedTransitions(from ProjectStatus) []ProjectStatus {
	allowed := projectTransitions[from]
	out := make([]ProjectStatus, len(allowed))
	copy(out, allowed)
	return out
}
