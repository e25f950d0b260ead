package authz

// Role is the closed set of platform roles. Anything outside these four
// values carries no privileges at all — the engine fails closed on roles
// it does not recognize.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleProjectManager Role = "project_manager"
	RoleTeamMember     Role = "team_member"
	RoleClient         Role = "client"
)

// Valid reports whether r is one of the four defined roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleProjectManager, RoleTeamMember, RoleClient:
		return true
	}
	return false
}

// IsInternalTeam reports whether the user is agency staff: super-admin,
// project manager or team member.
func IsInternalTeam(u *User) bool {
	if u == nil {
		return false
	}
	switch u.Role {
	case RoleSuperAdmin, RoleProjectManager, RoleTeamMember:
		return true
	}
	return false
}

// IsClient reports whether the user has the client role.
func IsClient(u *User) bool {
	return u != nil && u.Role == RoleClient
}

// IsAssignedToTask reports whether the user is the task's single assignee
// or appears in its assignees collection. Ownership is exact id
// membership; there is no wildcard or role-based task ownership here.
func IsAssignedToTask(u *User, t *Task) bool {
	if u == nil || t == nil {
		return false
	}
	if t.AssigneeID != nil && *t.AssigneeID == u.ID {
		return true
	}
	for _, id := range t.AssigneeIDs {
		if id == u.ID {
			return true
		}
	}
	return false
}

func isSuperAdmin(u *User) bool {
	return u != nil && u.Role == RoleSuperAdmin
}

func isManagement(u *User) bool {
	if u == nil {
		return false
	}
	return u.Role == RoleSuperAdmin || u.Role == RoleProjectManager
}
