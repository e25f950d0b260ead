package authz

import (
	"testing"
	"time"
)

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig())
}

func acceptedTerms() *time.Time {
	t := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	return &t
}

func primaryClient(projectID uint) *User {
	return &User{ID: 100, Role: RoleClient, Memberships: map[uint]Membership{
		projectID: {IsPrimaryContact: true},
	}}
}

func secondaryClient(projectID uint) *User {
	return &User{ID: 101, Role: RoleClient, Memberships: map[uint]Membership{
		projectID: {IsPrimaryContact: false},
	}}
}

func TestCanApprove_HappyPath(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive, TermsAcceptedAt: acceptedTerms()}
	d := &Deliverable{ID: 1, Status: DeliverableAwaitingApproval}

	if !e.CanApprove(primaryClient(1), d, p) {
		t.Error("primary contact should be able to approve a deliverable awaiting approval")
	}
	if reason := e.ExplainDenial(ActionApprove, Request{User: primaryClient(1), Deliverable: d, Project: p}); reason != "" {
		t.Errorf("allowed action should have empty denial reason, got %q", reason)
	}
}

func TestCanApprove_NotPrimaryContact(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive, TermsAcceptedAt: acceptedTerms()}
	d := &Deliverable{ID: 1, Status: DeliverableAwaitingApproval}

	u := secondaryClient(1)
	if e.CanApprove(u, d, p) {
		t.Error("secondary contact should not be able to approve")
	}
	if got := e.ExplainDenial(ActionApprove, Request{User: u, Deliverable: d, Project: p}); got != ReasonApproveNotPrimary {
		t.Errorf("reason = %q, expected %q", got, ReasonApproveNotPrimary)
	}

	// Internal roles never approve either; approval belongs to the client.
	for _, role := range []Role{RoleSuperAdmin, RoleProjectManager, RoleTeamMember} {
		if e.CanApprove(&User{ID: 2, Role: role}, d, p) {
			t.Errorf("%s should not be able to approve", role)
		}
	}
}

func TestCanApprove_BlockedByPayment(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectAwaitingPayment, TermsAcceptedAt: acceptedTerms()}
	d := &Deliverable{ID: 1, Status: DeliverableAwaitingApproval}
	u := primaryClient(1)

	if e.CanApprove(u, d, p) {
		t.Error("approval should be blocked while the project awaits payment")
	}
	got := e.ExplainDenial(ActionApprove, Request{User: u, Deliverable: d, Project: p})
	if got != "Payment is required before approving new deliverables" {
		t.Errorf("reason = %q, expected payment-required message", got)
	}
}

// Request-revision deliberately skips the payment gate: a client may still
// contest quality while an invoice is outstanding.
func TestCanRequestRevision_AllowedDuringPaymentHold(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectAwaitingPayment, TermsAcceptedAt: acceptedTerms()}
	d := &Deliverable{ID: 1, Status: DeliverableAwaitingApproval}
	u := primaryClient(1)

	if !e.CanRequestRevision(u, d, p) {
		t.Error("revision request should be allowed while the project awaits payment")
	}
	if e.CanApprove(u, d, p) {
		t.Error("approval should still be blocked while the project awaits payment")
	}
}

func TestApproveAndRevision_TermsGate(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive}
	d := &Deliverable{ID: 1, Status: DeliverableAwaitingApproval}
	u := primaryClient(1)

	if e.CanApprove(u, d, p) {
		t.Error("approval should be blocked until terms are accepted")
	}
	if got := e.ExplainDenial(ActionApprove, Request{User: u, Deliverable: d, Project: p}); got != ReasonApproveTermsNotAccepted {
		t.Errorf("approve reason = %q, expected %q", got, ReasonApproveTermsNotAccepted)
	}

	if e.CanRequestRevision(u, d, p) {
		t.Error("revision request should be blocked until terms are accepted")
	}
	if got := e.ExplainDenial(ActionRequestRevision, Request{User: u, Deliverable: d, Project: p}); got != ReasonRevisionTermsNotAccepted {
		t.Errorf("revision reason = %q, expected %q", got, ReasonRevisionTermsNotAccepted)
	}

	p.TermsAcceptedAt = acceptedTerms()
	if !e.CanApprove(u, d, p) {
		t.Error("approval should be allowed once terms are accepted")
	}
	if !e.CanRequestRevision(u, d, p) {
		t.Error("revision request should be allowed once terms are accepted")
	}
}

func TestCanApprove_RequiresAwaitingApproval(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive, TermsAcceptedAt: acceptedTerms()}
	u := primaryClient(1)

	for _, s := range []DeliverableStatus{
		DeliverablePending, DeliverableInProgress, DeliverableBetaReady,
		DeliverableApproved, DeliverableRevisionRequested, DeliverableRejected,
		DeliverablePaymentPending, DeliverableFinalDelivered,
	} {
		d := &Deliverable{ID: 1, Status: s}
		if e.CanApprove(u, d, p) {
			t.Errorf("approval should be blocked for deliverable status %s", s)
		}
		if got := e.ExplainDenial(ActionApprove, Request{User: u, Deliverable: d, Project: p}); got != ReasonNotAwaitingApproval {
			t.Errorf("status %s: reason = %q, expected %q", s, got, ReasonNotAwaitingApproval)
		}
	}
}

func TestCanApprove_ProjectOnHoldOrArchived(t *testing.T) {
	e := newTestEngine()
	d := &Deliverable{ID: 1, Status: DeliverableAwaitingApproval}
	u := primaryClient(1)

	hold := &Project{ID: 1, Status: ProjectOnHold, TermsAcceptedAt: acceptedTerms()}
	if e.CanApprove(u, d, hold) {
		t.Error("approval should be blocked while the project is on hold")
	}
	if got := e.ExplainDenial(ActionApprove, Request{User: u, Deliverable: d, Project: hold}); got != ReasonProjectOnHold {
		t.Errorf("reason = %q, expected %q", got, ReasonProjectOnHold)
	}

	archived := &Project{ID: 1, Status: ProjectArchived, TermsAcceptedAt: acceptedTerms()}
	if e.CanApprove(u, d, archived) {
		t.Error("approval should be blocked on an archived project")
	}
}

// While a deliverable awaits client approval nobody can edit it, including
// super admins. The lock lifts as soon as the status moves on.
func TestCanEditDeliverable_LockAppliesToEveryone(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive}
	locked := &Deliverable{ID: 1, Status: DeliverableAwaitingApproval}

	for _, role := range []Role{RoleSuperAdmin, RoleProjectManager, RoleTeamMember, RoleClient} {
		u := &User{ID: 5, Role: role}
		if e.CanEditDeliverable(u, locked, p) {
			t.Errorf("%s should not be able to edit a deliverable awaiting approval", role)
		}
		if got := e.ExplainDenial(ActionEditDeliverable, Request{User: u, Deliverable: locked, Project: p}); got != ReasonDeliverableLocked {
			t.Errorf("%s: reason = %q, expected %q", role, got, ReasonDeliverableLocked)
		}
	}

	unlocked := &Deliverable{ID: 1, Status: DeliverableRevisionRequested}
	if !e.CanEditDeliverable(&User{ID: 5, Role: RoleTeamMember}, unlocked, p) {
		t.Error("team member should be able to edit once the lock lifts")
	}
}

func TestCanEditDeliverable_ClosedProjects(t *testing.T) {
	e := newTestEngine()
	d := &Deliverable{ID: 1, Status: DeliverableInProgress}

	for _, s := range []ProjectStatus{ProjectCompleted, ProjectArchived} {
		p := &Project{ID: 1, Status: s}
		if e.CanEditDeliverable(&User{ID: 2, Role: RoleProjectManager}, d, p) {
			t.Errorf("project manager should not edit deliverables on a %s project", s)
		}
		if !e.CanEditDeliverable(&User{ID: 1, Role: RoleSuperAdmin}, d, p) {
			t.Errorf("super admin should still edit deliverables on a %s project", s)
		}
	}
}

func TestCanView_ClientVisibilityWindow(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive}
	client := primaryClient(1)

	visible := []DeliverableStatus{
		DeliverableBetaReady, DeliverableAwaitingApproval, DeliverableApproved,
		DeliverablePaymentPending, DeliverableFinalDelivered,
	}
	hidden := []DeliverableStatus{
		DeliverablePending, DeliverableInProgress,
		DeliverableRevisionRequested, DeliverableRejected,
	}

	for _, s := range visible {
		if !e.CanView(client, &Deliverable{ID: 1, Status: s}, p) {
			t.Errorf("client should see deliverable in status %s", s)
		}
	}
	for _, s := range hidden {
		d := &Deliverable{ID: 1, Status: s}
		if e.CanView(client, d, p) {
			t.Errorf("client should not see deliverable in status %s", s)
		}
		if got := e.ExplainDenial(ActionViewDeliverable, Request{User: client, Deliverable: d, Project: p}); got != ReasonDeliverableNotVisible {
			t.Errorf("status %s: reason = %q, expected %q", s, got, ReasonDeliverableNotVisible)
		}
	}

	// Internal team sees every status on an active project.
	for _, s := range DeliverableStatuses {
		if !e.CanView(&User{ID: 2, Role: RoleTeamMember}, &Deliverable{ID: 1, Status: s}, p) {
			t.Errorf("team member should see deliverable in status %s", s)
		}
	}
}

func TestCanView_ArchivedAndDraftProjects(t *testing.T) {
	e := newTestEngine()
	d := &Deliverable{ID: 1, Status: DeliverableApproved}

	archived := &Project{ID: 1, Status: ProjectArchived}
	if !e.CanView(&User{ID: 1, Role: RoleSuperAdmin}, d, archived) {
		t.Error("super admin should view deliverables on an archived project")
	}
	for _, role := range []Role{RoleProjectManager, RoleTeamMember, RoleClient} {
		u := &User{ID: 2, Role: role}
		if e.CanView(u, d, archived) {
			t.Errorf("%s should not view deliverables on an archived project", role)
		}
		if got := e.ExplainDenial(ActionViewDeliverable, Request{User: u, Deliverable: d, Project: archived}); got != ReasonProjectArchivedView {
			t.Errorf("%s: reason = %q, expected %q", role, got, ReasonProjectArchivedView)
		}
	}

	draft := &Project{ID: 1, Status: ProjectDraft}
	for _, role := range []Role{RoleSuperAdmin, RoleProjectManager} {
		if !e.CanView(&User{ID: 3, Role: role}, d, draft) {
			t.Errorf("%s should view deliverables on a draft project", role)
		}
	}
	for _, role := range []Role{RoleTeamMember, RoleClient} {
		if e.CanView(&User{ID: 3, Role: role}, d, draft) {
			t.Errorf("%s should not view deliverables on a draft project", role)
		}
	}
}

func TestCanViewBetaFiles_Window(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive}
	client := primaryClient(1)

	open := []DeliverableStatus{DeliverableBetaReady, DeliverableAwaitingApproval, DeliverableApproved}
	for _, s := range open {
		if !e.CanViewBetaFiles(client, &Deliverable{ID: 1, Status: s}, p) {
			t.Errorf("beta files should be visible in status %s", s)
		}
	}

	closed := []DeliverableStatus{
		DeliverablePending, DeliverableInProgress, DeliverableRevisionRequested,
		DeliverableRejected, DeliverablePaymentPending, DeliverableFinalDelivered,
	}
	for _, s := range closed {
		d := &Deliverable{ID: 1, Status: s}
		if e.CanViewBetaFiles(client, d, p) {
			t.Errorf("beta files should not be visible in status %s", s)
		}
		if got := e.ExplainDenial(ActionViewBetaFiles, Request{User: client, Deliverable: d, Project: p}); got != ReasonBetaWindowClosed {
			t.Errorf("status %s: reason = %q, expected %q", s, got, ReasonBetaWindowClosed)
		}
	}

	// The window gates internal users too; they see source files elsewhere.
	if e.CanViewBetaFiles(&User{ID: 1, Role: RoleSuperAdmin}, &Deliverable{ID: 1, Status: DeliverableFinalDelivered}, p) {
		t.Error("beta window applies regardless of role")
	}
}

func TestCanAccessFinalFiles(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := primaryClient(1)

	future := now.Add(30 * 24 * time.Hour)
	past := now.Add(-time.Hour)

	active := &Project{ID: 1, Status: ProjectActive}
	delivered := &Deliverable{ID: 1, Status: DeliverableFinalDelivered, ExpiresAt: &future}

	if !e.CanAccessFinalFiles(client, delivered, active, now) {
		t.Error("client should access final files before expiry")
	}

	// Not yet delivered.
	if e.CanAccessFinalFiles(client, &Deliverable{ID: 1, Status: DeliverableApproved}, active, now) {
		t.Error("final files should not be accessible before final delivery")
	}

	// Expired: clients lose access, super admins keep it.
	expired := &Deliverable{ID: 1, Status: DeliverableFinalDelivered, ExpiresAt: &past}
	if e.CanAccessFinalFiles(client, expired, active, now) {
		t.Error("client should lose access after expiry")
	}
	if got := e.ExplainDenial(ActionAccessFinalFiles, Request{User: client, Deliverable: expired, Project: active, Now: now}); got != ReasonFinalAccessExpired {
		t.Errorf("reason = %q, expected %q", got, ReasonFinalAccessExpired)
	}
	if !e.CanAccessFinalFiles(&User{ID: 1, Role: RoleSuperAdmin}, expired, active, now) {
		t.Error("super admin should retain access after expiry")
	}

	// A nil expiry never expires.
	open := &Deliverable{ID: 1, Status: DeliverableFinalDelivered}
	if !e.CanAccessFinalFiles(client, open, active, now) {
		t.Error("nil expiry should mean no cutoff")
	}

	// Project must be active or completed for non-admins.
	onHold := &Project{ID: 1, Status: ProjectOnHold}
	if e.CanAccessFinalFiles(client, delivered, onHold, now) {
		t.Error("final files should not be accessible while the project is on hold")
	}
	completed := &Project{ID: 1, Status: ProjectCompleted}
	if !e.CanAccessFinalFiles(client, delivered, completed, now) {
		t.Error("final files should be accessible on a completed project")
	}
}

func TestCanUploadBeta(t *testing.T) {
	e := newTestEngine()
	active := &Project{ID: 1, Status: ProjectActive}
	member := &User{ID: 7, Role: RoleTeamMember}
	assignee := uint(7)

	// Assignment flips the decision for team members.
	if e.CanUploadBeta(member, active, &Task{ID: 1}) {
		t.Error("unassigned team member should not upload beta files")
	}
	if !e.CanUploadBeta(member, active, &Task{ID: 1, AssigneeID: &assignee}) {
		t.Error("assigned team member should upload beta files")
	}
	if !e.CanUploadBeta(member, active, &Task{ID: 1, AssigneeIDs: []uint{3, 7}}) {
		t.Error("team member in assignees collection should upload beta files")
	}

	// Management uploads without an assignment.
	if !e.CanUploadBeta(&User{ID: 2, Role: RoleProjectManager}, active, nil) {
		t.Error("project manager should upload beta files without an assignment")
	}

	if e.CanUploadBeta(primaryClient(1), active, nil) {
		t.Error("clients should not upload beta files")
	}

	// Frozen projects block everyone below super admin.
	for _, s := range []ProjectStatus{ProjectOnHold, ProjectArchived} {
		frozen := &Project{ID: 1, Status: s}
		if e.CanUploadBeta(&User{ID: 2, Role: RoleProjectManager}, frozen, nil) {
			t.Errorf("uploads should be blocked while the project is %s", s)
		}
		if !e.CanUploadBeta(&User{ID: 1, Role: RoleSuperAdmin}, frozen, nil) {
			t.Errorf("super admin should upload while the project is %s", s)
		}
	}
}

func TestCanUploadFinal(t *testing.T) {
	e := newTestEngine()
	active := &Project{ID: 1, Status: ProjectActive}

	for _, role := range []Role{RoleSuperAdmin, RoleProjectManager} {
		if !e.CanUploadFinal(&User{ID: 1, Role: role}, active) {
			t.Errorf("%s should upload final files", role)
		}
	}
	for _, role := range []Role{RoleTeamMember, RoleClient} {
		u := &User{ID: 2, Role: role}
		if e.CanUploadFinal(u, active) {
			t.Errorf("%s should not upload final files", role)
		}
		if got := e.ExplainDenial(ActionUploadFinal, Request{User: u, Project: active}); got != ReasonUploadFinalRole {
			t.Errorf("%s: reason = %q, expected %q", role, got, ReasonUploadFinalRole)
		}
	}
}

func TestCanEditTask_AssignmentFlip(t *testing.T) {
	e := newTestEngine()
	member := &User{ID: 7, Role: RoleTeamMember}

	unassigned := &Task{ID: 1, AssigneeIDs: []uint{3, 11}}
	if e.CanEditTask(member, unassigned) {
		t.Error("team member should not edit a task not assigned to them")
	}
	if got := e.ExplainDenial(ActionEditTask, Request{User: member, Task: unassigned}); got != ReasonEditTaskNotAssigned {
		t.Errorf("reason = %q, expected %q", got, ReasonEditTaskNotAssigned)
	}

	assigned := &Task{ID: 1, AssigneeIDs: []uint{3, 7, 11}}
	if !e.CanEditTask(member, assigned) {
		t.Error("team member should edit a task assigned to them")
	}

	if !e.CanEditTask(&User{ID: 2, Role: RoleProjectManager}, unassigned) {
		t.Error("project manager should edit any task")
	}
	if e.CanEditTask(primaryClient(1), assigned) {
		t.Error("clients should not edit tasks")
	}

	if e.CanDeleteTask(member, unassigned) {
		t.Error("team member should not delete a task not assigned to them")
	}
	if !e.CanDeleteTask(member, assigned) {
		t.Error("team member should delete a task assigned to them")
	}
}

func TestCanViewApprovalHistory(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive}

	for _, role := range []Role{RoleSuperAdmin, RoleProjectManager, RoleTeamMember} {
		if !e.CanViewApprovalHistory(&User{ID: 1, Role: role}, p) {
			t.Errorf("%s should view approval history", role)
		}
	}
	if !e.CanViewApprovalHistory(primaryClient(1), p) {
		t.Error("primary contact should view approval history")
	}

	u := secondaryClient(1)
	if e.CanViewApprovalHistory(u, p) {
		t.Error("secondary contact should not view approval history")
	}
	if got := e.ExplainDenial(ActionViewApprovalHistory, Request{User: u, Project: p}); got != ReasonHistoryNotPrimary {
		t.Errorf("reason = %q, expected %q", got, ReasonHistoryNotPrimary)
	}
}

func TestCanCreateDeliverable(t *testing.T) {
	e := newTestEngine()

	for _, s := range []ProjectStatus{ProjectDraft, ProjectActive} {
		p := &Project{ID: 1, Status: s}
		if !e.CanCreateDeliverable(&User{ID: 2, Role: RoleProjectManager}, p) {
			t.Errorf("project manager should create deliverables while the project is %s", s)
		}
	}

	inReview := &Project{ID: 1, Status: ProjectInReview}
	if e.CanCreateDeliverable(&User{ID: 2, Role: RoleProjectManager}, inReview) {
		t.Error("deliverable creation should be blocked outside draft and active")
	}
	if !e.CanCreateDeliverable(&User{ID: 1, Role: RoleSuperAdmin}, inReview) {
		t.Error("super admin should create deliverables in any project state")
	}

	active := &Project{ID: 1, Status: ProjectActive}
	for _, role := range []Role{RoleTeamMember, RoleClient} {
		if e.CanCreateDeliverable(&User{ID: 3, Role: role}, active) {
			t.Errorf("%s should not create deliverables", role)
		}
	}
}

func TestProjectLifecycleActions(t *testing.T) {
	e := newTestEngine()
	active := &Project{ID: 1, Status: ProjectActive}
	archived := &Project{ID: 1, Status: ProjectArchived}

	for _, role := range []Role{RoleSuperAdmin, RoleProjectManager} {
		u := &User{ID: 1, Role: role}
		if !e.CanChangeProjectStatus(u, active) {
			t.Errorf("%s should change project status", role)
		}
		if !e.CanArchiveProject(u, active) {
			t.Errorf("%s should archive projects", role)
		}
	}
	for _, role := range []Role{RoleTeamMember, RoleClient} {
		u := &User{ID: 2, Role: role}
		if e.CanChangeProjectStatus(u, active) {
			t.Errorf("%s should not change project status", role)
		}
		if e.CanArchiveProject(u, active) {
			t.Errorf("%s should not archive projects", role)
		}
	}

	// Deletion is admin-only and requires the project to be archived first.
	admin := &User{ID: 1, Role: RoleSuperAdmin}
	if e.CanDeleteProject(admin, active) {
		t.Error("active projects should not be deletable")
	}
	if got := e.ExplainDenial(ActionDeleteProject, Request{User: admin, Project: active}); got != ReasonDeleteProjectNotArchived {
		t.Errorf("reason = %q, expected %q", got, ReasonDeleteProjectNotArchived)
	}
	if !e.CanDeleteProject(admin, archived) {
		t.Error("super admin should delete an archived project")
	}
	if e.CanDeleteProject(&User{ID: 2, Role: RoleProjectManager}, archived) {
		t.Error("project manager should not delete projects")
	}
}

func TestProjectFileActions(t *testing.T) {
	e := newTestEngine()
	active := &Project{ID: 1, Status: ProjectActive}
	archived := &Project{ID: 1, Status: ProjectArchived}

	// Everyone on the project can add reference files.
	for _, role := range []Role{RoleSuperAdmin, RoleProjectManager, RoleTeamMember, RoleClient} {
		if !e.CanUploadProjectFile(&User{ID: 1, Role: role}, active) {
			t.Errorf("%s should upload project files", role)
		}
	}
	if e.CanUploadProjectFile(&User{ID: 2, Role: RoleClient}, archived) {
		t.Error("project files should not be uploaded to an archived project")
	}

	// Deletion is internal-only.
	if !e.CanDeleteProjectFile(&User{ID: 3, Role: RoleTeamMember}, active) {
		t.Error("team member should delete project files")
	}
	if e.CanDeleteProjectFile(primaryClient(1), active) {
		t.Error("clients should not delete project files")
	}
}

func TestDecide_UnknownAction(t *testing.T) {
	e := newTestEngine()
	d := e.Decide(Action("nonsense.action"), Request{User: &User{ID: 1, Role: RoleSuperAdmin}})
	if d.Allowed {
		t.Error("unknown actions must deny")
	}
	if d.Reason != ReasonDenied {
		t.Errorf("reason = %q, expected generic denial", d.Reason)
	}
}

func TestDecide_NilUserDenies(t *testing.T) {
	e := newTestEngine()
	p := &Project{ID: 1, Status: ProjectActive, TermsAcceptedAt: acceptedTerms()}
	d := &Deliverable{ID: 1, Status: DeliverableAwaitingApproval}

	for _, a := range Actions() {
		dec := e.Decide(a, Request{Project: p, Deliverable: d})
		if dec.Allowed {
			t.Errorf("action %s should deny a nil user", a)
		}
	}
}

// Every denial, for every combination of role and lifecycle state, must
// carry a non-empty user-displayable reason; every allow must carry none.
func TestDecide_ReasonPairing(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assignee := uint(7)

	users := []*User{
		{ID: 1, Role: RoleSuperAdmin},
		{ID: 2, Role: RoleProjectManager},
		{ID: 7, Role: RoleTeamMember},
		primaryClient(1),
		secondaryClient(1),
	}

	for _, a := range Actions() {
		for _, u := range users {
			for _, ps := range ProjectStatuses {
				for _, ds := range DeliverableStatuses {
					r := Request{
						User:        u,
						Project:     &Project{ID: 1, Status: ps, TermsAcceptedAt: acceptedTerms()},
						Deliverable: &Deliverable{ID: 1, Status: ds},
						Task:        &Task{ID: 1, AssigneeID: &assignee},
						Now:         now,
					}
					dec := e.Decide(a, r)
					if dec.Allowed && dec.Reason != "" {
						t.Errorf("%s/%s/%s/%s: allowed with reason %q", a, u.Role, ps, ds, dec.Reason)
					}
					if !dec.Allowed && dec.Reason == "" {
						t.Errorf("%s/%s/%s/%s: denied without a reason", a, u.Role, ps, ds)
					}
					if got := e.ExplainDenial(a, r); (got == "") != dec.Allowed {
						t.Errorf("%s/%s/%s/%s: ExplainDenial disagrees with Decide", a, u.Role, ps, ds)
					}
				}
			}
		}
	}
}
