package rbac

// Role tags. Keep these stable; they are part of the token contract and
// appear verbatim in issued claims.
const (
	RoleCitizen        = "CITIZEN"
	RoleTeamMember     = "TEAM_MEMBER"
	RoleDepartmentHead = "DEPARTMENT_HEAD"
	RoleSystemAdmin    = "SYSTEM_ADMIN"
)
