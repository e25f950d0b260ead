package authz

import "time"

// Config tunes engine behavior that is deliberately policy, not code.
type Config struct {
	// DefaultPrimaryContactWhenUnset controls what happens when a client
	// has no membership data at all: when true (the shipped default),
	// such a client is treated as the primary contact of every project.
	// This silently grants approval and revision rights until membership
	// rows are populated, and is kept as an explicit flag so it can be
	// turned off without touching call sites.
	DefaultPrimaryContactWhenUnset bool `yaml:"default_primary_contact_when_unset"`
}

// DefaultConfig returns the shipped engine configuration.
func DefaultConfig() Config {
	return Config{DefaultPrimaryContactWhenUnset: true}
}

// Engine evaluates guarded actions against request snapshots. It holds no
// mutable state and never caches decisions; a zero-cost value shared
// between goroutines.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// IsPrimaryContact reports whether the user is the primary contact for the
// given project. Non-clients are never primary contacts. A client with no
// membership data falls back to Config.DefaultPrimaryContactWhenUnset; a
// client with membership data is primary only where the entry says so.
func (e *Engine) IsPrimaryContact(u *User, projectID uint) bool {
	if !IsClient(u) {
		return false
	}
	if len(u.Memberships) == 0 {
		return e.cfg.DefaultPrimaryContactWhenUnset
	}
	m, ok := u.Memberships[projectID]
	return ok && m.IsPrimaryContact
}

// Decide evaluates an action against a snapshot. Unknown actions deny.
func (e *Engine) Decide(action Action, r Request) Decision {
	rules, ok := actionRules[action]
	if !ok {
		return Decision{Reason: ReasonDenied}
	}
	for _, rl := range rules {
		switch rl.eval(e, r) {
		case verdictAllow:
			return Decision{Allowed: true}
		case verdictDeny:
			return Decision{Reason: rl.reason}
		}
	}
	return Decision{Reason: ReasonDenied}
}

// ExplainDenial returns the user-displayable reason the action is denied
// for this snapshot, or the empty string when the action is allowed. The
// reason comes from the same rule that made the predicate deny, so the
// two cannot disagree.
func (e *Engine) ExplainDenial(action Action, r Request) string {
	d := e.Decide(action, r)
	if d.Allowed {
		return ""
	}
	return d.Reason
}

// Named predicates. Each is a thin wrapper over Decide so route handlers
// read naturally; the semantics live entirely in the rule table.

func (e *Engine) CanView(u *User, d *Deliverable, p *Project) bool {
	return e.Decide(ActionViewDeliverable, Request{User: u, Deliverable: d, Project: p}).Allowed
}

func (e *Engine) CanViewBetaFiles(u *User, d *Deliverable, p *Project) bool {
	return e.Decide(ActionViewBetaFiles, Request{User: u, Deliverable: d, Project: p}).Allowed
}

func (e *Engine) CanAccessFinalFiles(u *User, d *Deliverable, p *Project, now time.Time) bool {
	return e.Decide(ActionAccessFinalFiles, Request{User: u, Deliverable: d, Project: p, Now: now}).Allowed
}

func (e *Engine) CanComment(u *User, d *Deliverable, p *Project) bool {
	return e.Decide(ActionComment, Request{User: u, Deliverable: d, Project: p}).Allowed
}

func (e *Engine) CanUploadBeta(u *User, p *Project, t *Task) bool {
	return e.Decide(ActionUploadBeta, Request{User: u, Project: p, Task: t}).Allowed
}

func (e *Engine) CanUploadFinal(u *User, p *Project) bool {
	return e.Decide(ActionUploadFinal, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanApprove(u *User, d *Deliverable, p *Project) bool {
	return e.Decide(ActionApprove, Request{User: u, Deliverable: d, Project: p}).Allowed
}

func (e *Engine) CanRequestRevision(u *User, d *Deliverable, p *Project) bool {
	return e.Decide(ActionRequestRevision, Request{User: u, Deliverable: d, Project: p}).Allowed
}

func (e *Engine) CanViewApprovalHistory(u *User, p *Project) bool {
	return e.Decide(ActionViewApprovalHistory, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanEditDeliverable(u *User, d *Deliverable, p *Project) bool {
	return e.Decide(ActionEditDeliverable, Request{User: u, Deliverable: d, Project: p}).Allowed
}

func (e *Engine) CanCreateDeliverable(u *User, p *Project) bool {
	return e.Decide(ActionCreateDeliverable, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanDeleteDeliverable(u *User, p *Project) bool {
	return e.Decide(ActionDeleteDeliverable, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanCreateTask(u *User, p *Project) bool {
	return e.Decide(ActionCreateTask, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanEditTask(u *User, t *Task) bool {
	return e.Decide(ActionEditTask, Request{User: u, Task: t}).Allowed
}

func (e *Engine) CanDeleteTask(u *User, t *Task) bool {
	return e.Decide(ActionDeleteTask, Request{User: u, Task: t}).Allowed
}

func (e *Engine) CanUploadProjectFile(u *User, p *Project) bool {
	return e.Decide(ActionUploadProjectFile, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanDeleteProjectFile(u *User, p *Project) bool {
	return e.Decide(ActionDeleteProjectFile, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanChangeProjectStatus(u *User, p *Project) bool {
	return e.Decide(ActionChangeProjectStatus, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanArchiveProject(u *User, p *Project) bool {
	return e.Decide(ActionArchiveProject, Request{User: u, Project: p}).Allowed
}

func (e *Engine) CanDeleteProject(u *User, p *Project) bool {
	return e.Decide(ActionDeleteProject, Request{User: u, Project: p}).Allowed
}
