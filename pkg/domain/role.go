package domain

import dErrors "scouthub/pkg/domain-errors"

// Role is the closed set of platform roles. Construct via ParseRole at trust
// boundaries; direct casting bypasses the allowlist.
type Role string

// Supported roles, from most to least privileged.
const (
	RoleRoot             Role = "ROOT"
	RoleSystem           Role = "SYSTEM"
	RoleAdmin            Role = "ADMIN"
	RoleCommissionMember Role = "COMMISSION_MEMBER"
	RoleScout            Role = "SCOUT"
	RoleUser             Role = "USER"
)

// roleRanks is the single source of truth for role privilege. Ranks are
// fixed, unique per role, and never recomputed at runtime.
var roleRanks = map[Role]int{
	RoleRoot:             100,
	RoleSystem:           90,
	RoleAdmin:            80,
	RoleCommissionMember: 70,
	RoleScout:            60,
	RoleUser:             50,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or outside the
// closed role set; no other errors are expected.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}

// IsValid checks whether the role is one of the supported enum values.
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// Rank returns the fixed privilege rank of the role. Zero for roles outside
// the closed set; validated principals never carry such a role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// Outranks reports whether a is strictly more privileged than b.
// Ranks are unique per role, so there is no tie case between distinct roles.
func (r Role) Outranks(other Role) bool {
	return r.Rank() > other.Rank()
}

// IsHigherThanUser reports whether the role carries any staff capability,
// i.e. outranks the base USER role. This is the single predicate gating
// reviewer-only operations.
func (r Role) IsHigherThanUser() bool {
	return r.Outranks(RoleUser)
}

// Roles lists the closed role set, most privileged first.
func Roles() []Role {
	return []Role{RoleRoot, RoleSystem, RoleAdmin, RoleCommissionMember, RoleScout, RoleUser}
}
