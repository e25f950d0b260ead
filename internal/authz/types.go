// Package authz is the authorization and workflow decision engine for the
// portal. It gates every sensitive action (viewing deliverables, uploading
// beta/final files, approving, requesting revisions, editing tasks,
// archiving projects) on the actor's role, their relationship to the
// project, and the lifecycle state of both the deliverable and the project.
//
// The package is a pure library: no I/O, no mutation of inputs, no clock
// reads. Callers load fresh records, map them to the snapshot types below,
// ask the engine, and only then perform the mutation themselves. A decision
// is only valid for the snapshot it was computed from — conditions can
// change between calls, so callers must re-fetch immediately before both
// the check and the mutation.
package authz

import "time"

// User is a point-in-time snapshot of an actor.
type User struct {
	ID   uint
	Role Role

	// Memberships maps project ID to the user's per-project membership.
	// Only meaningful for clients. A nil or empty map means membership
	// data has not been populated for this user; see
	// Config.DefaultPrimaryContactWhenUnset for how that is resolved.
	Memberships map[uint]Membership
}

// Membership is a client's relationship to a single project.
type Membership struct {
	IsPrimaryContact bool
}

// Project is a point-in-time snapshot of a project.
type Project struct {
	ID     uint
	Status ProjectStatus

	// TermsAcceptedAt is nil until the client accepts the engagement
	// terms. Approvals and revision requests are blocked while nil.
	TermsAcceptedAt *time.Time

	// TeamIDs are the user IDs on the project team, in display order,
	// without duplicates.
	TeamIDs []uint
}

// Deliverable is a point-in-time snapshot of a deliverable.
type Deliverable struct {
	ID     uint
	Status DeliverableStatus

	// ExpiresAt is set when the deliverable reaches final_delivered and
	// bounds post-delivery file access. Expiry is a view-permission
	// cutoff, not data deletion.
	ExpiresAt *time.Time

	RevisionsUsed int
}

// Task is a point-in-time snapshot of a task.
type Task struct {
	ID          uint
	AssigneeID  *uint
	AssigneeIDs []uint
}

// Request carries the snapshot an action is evaluated against. Deliverable
// and Task are optional; absent values resolve to the safe default (deny)
// for rules that consult them. Now is supplied by the caller so decisions
// stay referentially transparent.
type Request struct {
	User        *User
	Project     *Project
	Deliverable *Deliverable
	Task        *Task
	Now         time.Time
}

// Decision is the outcome of evaluating an action. Reason is empty when
// Allowed is true and a user-displayable denial message otherwise.
type Decision struct {
	Allowed bool
	Reason  string
}
