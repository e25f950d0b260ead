package authz

// ProjectStatus is the project lifecycle state. Deletion is not a status:
// it is a terminal removal only reachable from archived, and only by a
// super-admin.
type ProjectStatus string

const (
	ProjectDraft           ProjectStatus = "draft"
	ProjectActive          ProjectStatus = "active"
	ProjectInReview        ProjectStatus = "in_review"
	ProjectAwaitingPayment ProjectStatus = "awaiting_payment"
	ProjectOnHold          ProjectStatus = "on_hold"
	ProjectCompleted       ProjectStatus = "completed"
	ProjectArchived        ProjectStatus = "archived"
)

// ProjectStatuses lists every project status, in lifecycle order.
var ProjectStatuses = []ProjectStatus{
	ProjectDraft,
	ProjectActive,
	ProjectInReview,
	ProjectAwaitingPayment,
	ProjectOnHold,
	ProjectCompleted,
	ProjectArchived,
}

// Valid reports whether s is one of the seven defined project statuses.
func (s ProjectStatus) Valid() bool {
	for _, known := range ProjectStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// DeliverableStatus is the deliverable lifecycle state.
type DeliverableStatus string

const (
	DeliverablePending           DeliverableStatus = "pending"
	DeliverableInProgress        DeliverableStatus = "in_progress"
	DeliverableBetaReady         DeliverableStatus = "beta_ready"
	DeliverableAwaitingApproval  DeliverableStatus = "awaiting_approval"
	DeliverableApproved          DeliverableStatus = "approved"
	DeliverableRevisionRequested DeliverableStatus = "revision_requested"
	DeliverableRejected          DeliverableStatus = "rejected"
	DeliverablePaymentPending    DeliverableStatus = "payment_pending"
	DeliverableFinalDelivered    DeliverableStatus = "final_delivered"
)

// DeliverableStatuses lists every deliverable status, in lifecycle order.
var DeliverableStatuses = []DeliverableStatus{
	DeliverablePending,
	DeliverableInProgress,
	DeliverableBetaReady,
	DeliverableAwaitingApproval,
	DeliverableApproved,
	DeliverableRevisionRequested,
	DeliverableRejected,
	DeliverablePaymentPending,
	DeliverableFinalDelivered,
}

// Valid reports whether s is one of the nine defined deliverable statuses.
func (s DeliverableStatus) Valid() bool {
	for _, known := range DeliverableStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// deliverableTransitions is the deliverable workflow:
// pending → in_progress → beta_ready → awaiting_approval, the client then
// approves, requests a revision, or rejects; approval leads through
// payment to final delivery, while revisions and rejections loop back to
// in_progress. final_delivered is terminal.
var deliverableTransitions = map[DeliverableStatus][]DeliverableStatus{
	DeliverablePending:           {DeliverableInProgress},
	DeliverableInProgress:        {DeliverableBetaReady},
	DeliverableBetaReady:         {DeliverableAwaitingApproval, DeliverableInProgress},
	DeliverableAwaitingApproval:  {DeliverableApproved, DeliverableRevisionRequested, DeliverableRejected},
	DeliverableApproved:          {DeliverablePaymentPending},
	DeliverableRevisionRequested: {DeliverableInProgress},
	DeliverableRejected:          {DeliverableInProgress},
	DeliverablePaymentPending:    {DeliverableFinalDelivered},
	DeliverableFinalDelivered:    {},
}

// CanDeliverableTransition reports whether a deliverable may move from one
// status to another.
func CanDeliverableTransition(from, to DeliverableStatus) bool {
	for _, allowed := range deliverableTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// NextDeliverableStatuses returns the statuses reachable from the given
// status. The result is a copy; callers may modify it.
func NextDeliverableStatuses(from DeliverableStatus) []DeliverableStatus {
	allowed := deliverableTransitions[from]
	out := make([]DeliverableStatus, len(allowed))
	copy(out, allowed)
	return out
}

// clientVisible reports whether a deliverable in this status may be shown
// to clients: only once something is ready for, or past, client review.
func (s DeliverableStatus) clientVisible() bool {
	switch s {
	case DeliverableBetaReady, DeliverableAwaitingApproval, DeliverableApproved,
		DeliverablePaymentPending, DeliverableFinalDelivered:
		return true
	}
	return false
}

// betaWindow reports whether the watermarked beta preview is still open.
// Beta visibility closes once final files are in play.
func (s DeliverableStatus) betaWindow() bool {
	switch s {
	case DeliverableBetaReady, DeliverableAwaitingApproval, DeliverableApproved:
		return true
	}
	return false
}
