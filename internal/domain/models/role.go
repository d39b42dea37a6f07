package models

import "fmt"

// Role is a member's role inside a workspace.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// ParseRole converts user input into a Role, rejecting unknown values.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember, RoleViewer:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Action is a workspace-scoped operation subject to role policy.
type Action string

const (
	ActionRead            Action = "read"
	ActionCreateFolder    Action = "create folder"
	ActionUpdateFolder    Action = "rename folder"
	ActionDeleteFolder    Action = "delete folder"
	ActionRecordFile      Action = "record file"
	ActionDeleteFile      Action = "delete file"
	ActionManageTasks     Action = "manage tasks"
	ActionComment         Action = "comment"
	ActionRunBriefing     Action = "run briefing"
	ActionManageMembers   Action = "manage members"
	ActionUpdateWorkspace Action = "update workspace"
	ActionDeleteWorkspace Action = "delete workspace"
)

// Can reports whether the role may perform the action.
// Every role is listed explicitly; an unrecognized role is never granted anything.
func (r Role) Can(a Action) bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleMember:
		switch a {
		case ActionManageMembers, ActionUpdateWorkspace, ActionDeleteWorkspace:
			return false
		default:
			return true
		}
	case RoleViewer:
		return a == ActionRead
	default:
		return false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}
