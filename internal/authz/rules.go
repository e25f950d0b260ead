package authz

// Action identifies a guarded operation.
type Action string

const (
	ActionViewDeliverable     Action = "deliverable.view"
	ActionViewBetaFiles       Action = "deliverable.view_beta_files"
	ActionAccessFinalFiles    Action = "deliverable.access_final_files"
	ActionComment             Action = "deliverable.comment"
	ActionUploadBeta          Action = "deliverable.upload_beta"
	ActionUploadFinal         Action = "deliverable.upload_final"
	ActionApprove             Action = "deliverable.approve"
	ActionRequestRevision     Action = "deliverable.request_revision"
	ActionViewApprovalHistory Action = "project.view_approval_history"
	ActionEditDeliverable     Action = "deliverable.edit"
	ActionCreateDeliverable   Action = "deliverable.create"
	ActionDeleteDeliverable   Action = "deliverable.delete"
	ActionCreateTask          Action = "task.create"
	ActionEditTask            Action = "task.edit"
	ActionDeleteTask          Action = "task.delete"
	ActionUploadProjectFile   Action = "project_file.upload"
	ActionDeleteProjectFile   Action = "project_file.delete"
	ActionChangeProjectStatus Action = "project.change_status"
	ActionArchiveProject      Action = "project.archive"
	ActionDeleteProject       Action = "project.delete"
)

// ReasonDenied is the generic fallback used only when no specific rule
// matched. Every documented denial condition carries its own message.
const ReasonDenied = "You do not have permission to perform this action"

// Denial messages. The predicate and its explanation are driven from one
// rule table, so a predicate can never deny without one of these strings
// being the reason.
const (
	ReasonProjectArchivedView      = "Archived projects are only accessible to administrators"
	ReasonProjectDraftView         = "This project is still being set up"
	ReasonDeliverableNotVisible    = "This deliverable is not ready for client review yet"
	ReasonBetaWindowClosed         = "Beta previews are no longer available for this deliverable"
	ReasonFinalNotDelivered        = "Final files have not been delivered yet"
	ReasonFinalAccessExpired       = "Access to the final files has expired"
	ReasonFinalProjectInactive     = "Final files are only available while the project is active or completed"
	ReasonUploadProjectFrozen      = "Files cannot be uploaded while the project is on hold or archived"
	ReasonUploadBetaNotAssigned    = "You can only upload files for tasks assigned to you"
	ReasonUploadBetaClient         = "Clients cannot upload deliverable files"
	ReasonUploadFinalRole          = "Only administrators and project managers can upload final deliverables"
	ReasonApproveNotPrimary        = "Only the primary contact can approve deliverables"
	ReasonNotAwaitingApproval      = "This deliverable is not awaiting approval"
	ReasonProjectOnHold            = "This project is currently on hold"
	ReasonProjectArchived          = "This project has been archived"
	ReasonApprovePaymentRequired   = "Payment is required before approving new deliverables"
	ReasonApproveTermsNotAccepted  = "Engagement terms must be accepted before approving deliverables"
	ReasonRevisionTermsNotAccepted = "Engagement terms must be accepted before requesting revisions"
	ReasonHistoryNotPrimary        = "Approval history is only available to the primary contact"
	ReasonDeliverableLocked        = "Deliverables are locked while awaiting client approval"
	ReasonEditClosedProject        = "Only administrators can edit deliverables on completed or archived projects"
	ReasonEditDeliverableClient    = "Clients cannot edit deliverables"
	ReasonCreateDeliverableState   = "Deliverables can only be added while the project is in draft or active"
	ReasonCreateDeliverableRole    = "Only administrators and project managers can create deliverables"
	ReasonDeleteDeliverableRole    = "Only administrators can delete deliverables"
	ReasonCreateTaskClient         = "Clients cannot create tasks"
	ReasonEditTaskNotAssigned      = "You can only edit tasks assigned to you"
	ReasonEditTaskClient           = "Clients cannot edit tasks"
	ReasonDeleteTaskNotAssigned    = "You can only delete tasks assigned to you"
	ReasonDeleteTaskClient         = "Clients cannot delete tasks"
	ReasonFileProjectArchived      = "Files cannot be uploaded to an archived project"
	ReasonFileDeleteArchived       = "Files cannot be deleted from an archived project"
	ReasonFileDeleteClient         = "Clients cannot delete project files"
	ReasonStatusChangeRole         = "Only administrators and project managers can change project status"
	ReasonArchiveRole              = "Only administrators and project managers can archive projects"
	ReasonDeleteProjectRole        = "Only administrators can delete projects"
	ReasonDeleteProjectNotArchived = "Projects must be archived before they can be deleted"
)

type verdict int

const (
	verdictNext verdict = iota
	verdictAllow
	verdictDeny
)

// rule is one step in an action's decision chain. eval either settles the
// decision or passes to the next rule; reason is the denial message when
// eval settles with verdictDeny. Chains are evaluated in order and fail
// closed: a chain that runs out of rules denies with the generic fallback.
type rule struct {
	eval   func(e *Engine, r Request) verdict
	reason string
}

func denyIf(cond func(e *Engine, r Request) bool, reason string) rule {
	return rule{
		eval: func(e *Engine, r Request) verdict {
			if cond(e, r) {
				return verdictDeny
			}
			return verdictNext
		},
		reason: reason,
	}
}

func allowIf(cond func(e *Engine, r Request) bool) rule {
	return rule{
		eval: func(e *Engine, r Request) verdict {
			if cond(e, r) {
				return verdictAllow
			}
			return verdictNext
		},
	}
}

// Nil-safe snapshot accessors. Absent optional records resolve to zero
// values, which every rule treats as the deny side.

func projectStatus(r Request) ProjectStatus {
	if r.Project == nil {
		return ""
	}
	return r.Project.Status
}

func deliverableStatus(r Request) DeliverableStatus {
	if r.Deliverable == nil {
		return ""
	}
	return r.Deliverable.Status
}

func termsAccepted(r Request) bool {
	return r.Project != nil && r.Project.TermsAcceptedAt != nil
}

func finalAccessExpired(r Request) bool {
	if r.Deliverable == nil || r.Deliverable.ExpiresAt == nil {
		return false
	}
	return r.Now.After(*r.Deliverable.ExpiresAt)
}

// Shared rule chains.

// viewRules gates plain visibility of a deliverable and is the tail of
// every file-access chain: archived projects are admin-only, draft
// projects are hidden from everyone below project manager, internal team
// sees everything else, and clients see a deliverable only once its
// status has reached the client-visible window.
var viewRules = []rule{
	denyIf(func(e *Engine, r Request) bool {
		return projectStatus(r) == ProjectArchived && !isSuperAdmin(r.User)
	}, ReasonProjectArchivedView),
	denyIf(func(e *Engine, r Request) bool {
		return projectStatus(r) == ProjectDraft && !isManagement(r.User)
	}, ReasonProjectDraftView),
	allowIf(func(e *Engine, r Request) bool { return IsInternalTeam(r.User) }),
	allowIf(func(e *Engine, r Request) bool {
		return IsClient(r.User) && deliverableStatus(r).clientVisible()
	}),
	denyIf(func(e *Engine, r Request) bool { return IsClient(r.User) }, ReasonDeliverableNotVisible),
}

// approvalRules are the checks shared by approve and request-revision:
// primary contact only, deliverable must be under review, project must not
// be paused or archived. The payment gate applies to approval alone — a
// client may still contest quality while a payment is pending — and the
// terms gate is appended per action so each carries its own message.
var approvalRules = []rule{
	denyIf(func(e *Engine, r Request) bool {
		return r.Project == nil || !e.IsPrimaryContact(r.User, r.Project.ID)
	}, ReasonApproveNotPrimary),
	denyIf(func(e *Engine, r Request) bool {
		return deliverableStatus(r) != DeliverableAwaitingApproval
	}, ReasonNotAwaitingApproval),
	denyIf(func(e *Engine, r Request) bool {
		return projectStatus(r) == ProjectOnHold
	}, ReasonProjectOnHold),
	denyIf(func(e *Engine, r Request) bool {
		return projectStatus(r) == ProjectArchived
	}, ReasonProjectArchived),
}

func chain(chains ...[]rule) []rule {
	var out []rule
	for _, c := range chains {
		out = append(out, c...)
	}
	return out
}

func allowAll() rule {
	return rule{eval: func(e *Engine, r Request) verdict { return verdictAllow }}
}

// actionRules is the single source of truth for every predicate and its
// denial explanation.
var actionRules = map[Action][]rule{
	ActionViewDeliverable: viewRules,
	ActionComment:         viewRules,

	ActionViewBetaFiles: chain(
		[]rule{
			denyIf(func(e *Engine, r Request) bool {
				return !deliverableStatus(r).betaWindow()
			}, ReasonBetaWindowClosed),
		},
		viewRules,
	),

	ActionAccessFinalFiles: chain(
		[]rule{
			denyIf(func(e *Engine, r Request) bool {
				return deliverableStatus(r) != DeliverableFinalDelivered
			}, ReasonFinalNotDelivered),
			denyIf(func(e *Engine, r Request) bool {
				return finalAccessExpired(r) && !isSuperAdmin(r.User)
			}, ReasonFinalAccessExpired),
			denyIf(func(e *Engine, r Request) bool {
				s := projectStatus(r)
				return s != ProjectActive && s != ProjectCompleted && !isSuperAdmin(r.User)
			}, ReasonFinalProjectInactive),
		},
		viewRules,
	),

	ActionUploadBeta: {
		denyIf(func(e *Engine, r Request) bool {
			s := projectStatus(r)
			return (s == ProjectOnHold || s == ProjectArchived) && !isSuperAdmin(r.User)
		}, ReasonUploadProjectFrozen),
		allowIf(func(e *Engine, r Request) bool { return isManagement(r.User) }),
		allowIf(func(e *Engine, r Request) bool {
			return r.User != nil && r.User.Role == RoleTeamMember && IsAssignedToTask(r.User, r.Task)
		}),
		denyIf(func(e *Engine, r Request) bool {
			return r.User != nil && r.User.Role == RoleTeamMember
		}, ReasonUploadBetaNotAssigned),
		denyIf(func(e *Engine, r Request) bool { return IsClient(r.User) }, ReasonUploadBetaClient),
	},

	ActionUploadFinal: {
		denyIf(func(e *Engine, r Request) bool {
			s := projectStatus(r)
			return (s == ProjectOnHold || s == ProjectArchived) && !isSuperAdmin(r.User)
		}, ReasonUploadProjectFrozen),
		allowIf(func(e *Engine, r Request) bool { return isManagement(r.User) }),
		denyIf(func(e *Engine, r Request) bool { return r.User != nil }, ReasonUploadFinalRole),
	},

	ActionApprove: chain(
		approvalRules,
		[]rule{
			denyIf(func(e *Engine, r Request) bool {
				return projectStatus(r) == ProjectAwaitingPayment
			}, ReasonApprovePaymentRequired),
			denyIf(func(e *Engine, r Request) bool { return !termsAccepted(r) }, ReasonApproveTermsNotAccepted),
			allowAll(),
		},
	),

	ActionRequestRevision: chain(
		approvalRules,
		[]rule{
			denyIf(func(e *Engine, r Request) bool { return !termsAccepted(r) }, ReasonRevisionTermsNotAccepted),
			allowAll(),
		},
	),

	ActionViewApprovalHistory: {
		allowIf(func(e *Engine, r Request) bool { return IsInternalTeam(r.User) }),
		allowIf(func(e *Engine, r Request) bool {
			return r.Project != nil && e.IsPrimaryContact(r.User, r.Project.ID)
		}),
		denyIf(func(e *Engine, r Request) bool { return IsClient(r.User) }, ReasonHistoryNotPrimary),
	},

	ActionEditDeliverable: {
		// Edit lock: while a deliverable awaits client approval nobody
		// may change it, super-admins included — the clock is ticking on
		// the client, don't move the goalposts mid-review.
		denyIf(func(e *Engine, r Request) bool {
			return deliverableStatus(r) == DeliverableAwaitingApproval
		}, ReasonDeliverableLocked),
		denyIf(func(e *Engine, r Request) bool {
			s := projectStatus(r)
			return (s == ProjectCompleted || s == ProjectArchived) && !isSuperAdmin(r.User)
		}, ReasonEditClosedProject),
		allowIf(func(e *Engine, r Request) bool { return IsInternalTeam(r.User) }),
		denyIf(func(e *Engine, r Request) bool { return IsClient(r.User) }, ReasonEditDeliverableClient),
	},

	ActionCreateDeliverable: {
		denyIf(func(e *Engine, r Request) bool {
			s := projectStatus(r)
			return s != ProjectActive && s != ProjectDraft && !isSuperAdmin(r.User)
		}, ReasonCreateDeliverableState),
		allowIf(func(e *Engine, r Request) bool { return isManagement(r.User) }),
		denyIf(func(e *Engine, r Request) bool { return r.User != nil }, ReasonCreateDeliverableRole),
	},

	ActionDeleteDeliverable: {
		allowIf(func(e *Engine, r Request) bool { return isSuperAdmin(r.User) }),
		denyIf(func(e *Engine, r Request) bool { return r.User != nil }, ReasonDeleteDeliverableRole),
	},

	ActionCreateTask: {
		allowIf(func(e *Engine, r Request) bool { return IsInternalTeam(r.User) }),
		denyIf(func(e *Engine, r Request) bool { return IsClient(r.User) }, ReasonCreateTaskClient),
	},

	ActionEditTask: {
		allowIf(func(e *Engine, r Request) bool { return isManagement(r.User) }),
		allowIf(func(e *Engine, r Request) bool {
			return r.User != nil && r.User.Role == RoleTeamMember && IsAssignedToTask(r.User, r.Task)
		}),
		denyIf(func(e *Engine, r Request) bool {
			return r.User != nil && r.User.Role == RoleTeamMember
		}, ReasonEditTaskNotAssigned),
		denyIf(func(e *Engine, r Request) bool { return IsClient(r.User) }, ReasonEditTaskClient),
	},

	ActionDeleteTask: {
		allowIf(func(e *Engine, r Request) bool { return isManagement(r.User) }),
		allowIf(func(e *Engine, r Request) bool {
			return r.User != nil && r.User.Role == RoleTeamMember && IsAssignedToTask(r.User, r.Task)
		}),
		denyIf(func(e *Engine, r Request) bool {
			return r.User != nil && r.User.Role == RoleTeamMember
		}, ReasonDeleteTaskNotAssigned),
		denyIf(func(e *Engine, r Request) bool { return IsClient(r.User) }, ReasonDeleteTaskClient),
	},

	ActionUploadProjectFile: {
		denyIf(func(e *Engine, r Request) bool {
			return projectStatus(r) == ProjectArchived && !isSuperAdmin(r.User)
		}, ReasonFileProjectArchived),
		allowIf(func(e *Engine, r Request) bool {
			return IsInternalTeam(r.User) || IsClient(r.User)
		}),
	},

	ActionDeleteProjectFile: {
		denyIf(func(e *Engine, r Request) bool {
			return projectStatus(r) == ProjectArchived && !isSuperAdmin(r.User)
		}, ReasonFileDeleteArchived),
		allowIf(func(e *Engine, r Request) bool { return IsInternalTeam(r.User) }),
		denyIf(func(e *Engine, r Request) bool { return IsClient(r.User) }, ReasonFileDeleteClient),
	},

	ActionChangeProjectStatus: {
		allowIf(func(e *Engine, r Request) bool { return isManagement(r.User) }),
		denyIf(func(e *Engine, r Request) bool { return r.User != nil }, ReasonStatusChangeRole),
	},

	ActionArchiveProject: {
		allowIf(func(e *Engine, r Request) bool { return isManagement(r.User) }),
		denyIf(func(e *Engine, r Request) bool { return r.User != nil }, ReasonArchiveRole),
	},

	ActionDeleteProject: {
		denyIf(func(e *Engine, r Request) bool { return !isSuperAdmin(r.User) }, ReasonDeleteProjectRole),
		denyIf(func(e *Engine, r Request) bool {
			return projectStatus(r) != ProjectArchived
		}, ReasonDeleteProjectNotArchived),
		allowAll(),
	},
}

// Actions lists every guarded action, for exhaustive tests and docs.
func Actions() []Action {
	out := make([]Action, 0, len(actionRules))
	for a := range actionRules {
		out = append(out, a)
	}
	return out
}
