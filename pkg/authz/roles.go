package authz

import "fmt"

// Role is a closed enumeration of every role a user can hold. Route
// allow-lists and role assignments only ever deal in these values, so a
// mistyped role string fails at parse time instead of silently failing a
// permission check.
type Role string

const (
	RoleSystemOwner    Role = "system_owner"
	RoleOrgAdmin       Role = "org_admin"
	RoleDepartmentHead Role = "department_head"
	RoleTeacher        Role = "teacher"
	RoleClassTeacher   Role = "class_teacher"
	RoleLabIncharge    Role = "lab_incharge"
	RoleLibrarian      Role = "librarian"
	RoleManager        Role = "manager"
	RoleAccountant     Role = "accountant"
	RoleParent         Role = "parent"
	RoleStudent        Role = "student"
)

var allRoles = map[Role]struct{}{
	RoleSystemOwner:    {},
	RoleOrgAdmin:       {},
	RoleDepartmentHead: {},
	RoleTeacher:        {},
	RoleClassTeacher:   {},
	RoleLabIncharge:    {},
	RoleLibrarian:      {},
	RoleManager:        {},
	RoleAccountant:     {},
	RoleParent:         {},
	RoleStudent:        {},
}

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := allRoles[r]; !ok {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

func (r Role) String() string { return string(r) }

// TeacherRoles is the allow-list for teacher-facing routes. A class teacher
// holds class_teacher on top of teacher, so both appear here.
var TeacherRoles = []Role{RoleTeacher, RoleClassTeacher}

// RoleSet is the set of roles held by one user. A user may hold several
// roles at once (e.g. teacher and class_teacher); authorization always
// operates on the whole set.
type RoleSet map[Role]struct{}

// NewRoleSet builds a RoleSet, silently dropping duplicates.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s RoleSet) Slice() []Role {
	roles := make([]Role, 0, len(s))
	for r := range s {
		roles = append(roles, r)
	}
	return roles
}

// IsAuthorized reports whether an actor holding actorRoles may access a
// resource gated by allowed. True iff the intersection is non-empty; an
// empty actor set (no session) is never authorized.
func IsAuthorized(actorRoles RoleSet, allowed []Role) bool {
	for _, r := range allowed {
		if actorRoles.Has(r) {
			return true
		}
	}
	return false
}
