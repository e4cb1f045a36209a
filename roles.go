package docauth

// Role is a fixed job-function category. The set is closed: roles are
// baked into the permission matrix, never user-editable data.
type Role string

const (
	// RoleAdministrator is the top administrative role, the only one
	// allowed to register new accounts.
	RoleAdministrator Role = "administrator"
	// RolePresident is the organization president.
	RolePresident Role = "president"
	// RoleVicePresident is the organization vice-president.
	RoleVicePresident Role = "vice-president"
	// RoleSecretaryGeneral runs the general secretariat workspace.
	RoleSecretaryGeneral Role = "secretary-general"
	// RoleSecretaryFinance runs the finance workspace.
	RoleSecretaryFinance Role = "secretary-finance"
	// RoleSecretaryPrograms runs the programs workspace.
	RoleSecretaryPrograms Role = "secretary-programs"
	// RoleTerritorialOfficer covers the territorial delegations.
	RoleTerritorialOfficer Role = "territorial-officer"
	// RoleCommissionMember sits on one or more commissions.
	RoleCommissionMember Role = "commission-member"
)

// IsValid checks if the role is one of the predefined valid roles
func (r Role) IsValid() bool {
	switch r {
	case RoleAdministrator, RolePresident, RoleVicePresident,
		RoleSecretaryGeneral, RoleSecretaryFinance, RoleSecretaryPrograms,
		RoleTerritorialOfficer, RoleCommissionMember:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// AllRoles returns every predefined role
func AllRoles() []Role {
	return []Role{
		RoleAdministrator,
		RolePresident,
		RoleVicePresident,
		RoleSecretaryGeneral,
		RoleSecretaryFinance,
		RoleSecretaryPrograms,
		RoleTerritorialOfficer,
		RoleCommissionMember,
	}
}

// ParseRole safely parses a string into a Role type
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, role.IsValid()
}

// Workspace is an organizational department. A user belongs to exactly
// one home workspace but may hold cross-workspace grants through the
// permission matrix.
type Workspace string

const (
	WorkspacePresidency         Workspace = "presidency"
	WorkspaceGeneralSecretariat Workspace = "general-secretariat"
	WorkspaceFinance            Workspace = "finance"
	WorkspacePrograms           Workspace = "programs"
	WorkspaceTerritorial        Workspace = "territorial"
	WorkspaceCommissions        Workspace = "commissions"
)

// IsValid checks if the workspace is one of the predefined departments
func (w Workspace) IsValid() bool {
	switch w {
	case WorkspacePresidency, WorkspaceGeneralSecretariat, WorkspaceFinance,
		WorkspacePrograms, WorkspaceTerritorial, WorkspaceCommissions:
		return true
	default:
		return false
	}
}

func (w Workspace) String() string {
	return string(w)
}

// AllWorkspaces returns every predefined workspace
func AllWorkspaces() []Workspace {
	return []Workspace{
		WorkspacePresidency,
		WorkspaceGeneralSecretariat,
		WorkspaceFinance,
		WorkspacePrograms,
		WorkspaceTerritorial,
		WorkspaceCommissions,
	}
}

// ParseWorkspace safely parses a string into a Workspace type
func ParseWorkspace(workspaceStr string) (Workspace, bool) {
	workspace := Workspace(workspaceStr)
	return workspace, workspace.IsValid()
}

// Action is one of the four workspace-scoped capabilities carried by
// the permission matrix.
type Action string

const (
	ActionView     Action = "view"
	ActionDownload Action = "download"
	ActionArchive  Action = "archive"
	ActionManage   Action = "manage"
)

// IsValid checks if the action is one of the four known capabilities
func (a Action) IsValid() bool {
	switch a {
	case ActionView, ActionDownload, ActionArchive, ActionManage:
		return true
	default:
		return false
	}
}

func (a Action) String() string {
	return string(a)
}
