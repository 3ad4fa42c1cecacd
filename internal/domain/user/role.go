package user

import "strings"

type Role string

const (
	RoleTechnician Role = "technician"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// Capability is a permission a role may hold. Handlers and the inspection
// engine check capabilities, never role names.
type Capability string

const (
	CapSubmitInspection   Capability = "submit-inspection"
	CapValidateInspection Capability = "validate-inspection"
	CapDeleteInspection   Capability = "delete-inspection"
	CapViewStatistics     Capability = "view-statistics"
	CapManageUsers        Capability = "manage-users"
	// CapManageSuperAdmins covers creating, promoting to, editing and
	// deleting superadmin accounts.
	CapManageSuperAdmins  Capability = "manage-superadmins"
)

type capabilitySet map[Capability]struct{}

func caps(list ...Capability) capabilitySet {
	s := make(capabilitySet, len(list))
	for _, c := range list {
		s[c] = struct{}{}
	}
	return s
}

var roleCapabilities = map[Role]capabilitySet{
	RoleTechnician: caps(CapSubmitInspection),
	RoleSupervisor: caps(CapSubmitInspection, CapValidateInspection, CapViewStatistics),
	RoleAdmin: caps(CapSubmitInspection, CapValidateInspection, CapViewStatistics,
		CapDeleteInspection, CapManageUsers),
	RoleSuperAdmin: caps(CapSubmitInspection, CapValidateInspection, CapViewStatistics,
		CapDeleteInspection, CapManageUsers, CapManageSuperAdmins),
}

// ParseRole normalizes r and reports whether it names a known role.
// The legacy French spelling "superviseur" is accepted.
func ParseRole(r string) (Role, bool) {
	v := Role(strings.ToLower(strings.TrimSpace(r)))
	if v == "superviseur" {
		v = RoleSupervisor
	}
	_, ok := roleCapabilities[v]
	return v, ok
}

func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether r holds capability c. Unknown roles hold nothing.
func (r Role) Can(c Capability) bool {
	_, ok := roleCapabilities[r][c]
	return ok
}
