package authz

import "strings"

// Role is a member's role within a single project.
type Role string

const (
	RoleOwner          Role = "Owner"
	RoleProjectManager Role = "Project Manager"
	RoleDeveloper      Role = "Developer"
	RoleDesigner       Role = "Designer"
	RoleReviewer       Role = "Reviewer"
	RoleTester         Role = "Tester"
	RoleViewer         Role = "Viewer"
)

// Roles lists every role, highest privilege first.
var Roles = []Role{
	RoleOwner,
	RoleProjectManager,
	RoleDeveloper,
	RoleDesigner,
	RoleReviewer,
	RoleTester,
	RoleViewer,
}

// ParseRole accepts the stored role name, case-insensitively.
func ParseRole(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(string(r), s) {
			return r, true
		}
	}
	return "", false
}

func (r Role) Valid() bool {
	return r.bit() != 0
}

func (r Role) String() string {
	return string(r)
}

type roleSet uint8

func (r Role) bit() roleSet {
	switch r {
	case RoleOwner:
		return 1 << 0
	case RoleProjectManager:
		return 1 << 1
	case RoleDeveloper:
		return 1 << 2
	case RoleDesigner:
		return 1 << 3
	case RoleReviewer:
		return 1 << 4
	case RoleTester:
		return 1 << 5
	case RoleViewer:
		return 1 << 6
	}
	return 0
}

func setOf(roles ...Role) roleSet {
	var s roleSet
	for _, r := range roles {
		s |= r.bit()
	}
	return s
}

func (s roleSet) has(r Role) bool {
	b := r.bit()
	return b != 0 && s&b != 0
}

var (
	everyone     = setOf(Roles...)
	contributors = setOf(RoleOwner, RoleProjectManager, RoleDeveloper, RoleDesigner, RoleReviewer, RoleTester)
	managers     = setOf(RoleOwner, RoleProjectManager)
	builders     = setOf(RoleOwner, RoleProjectManager, RoleDeveloper, RoleDesigner, RoleReviewer)
)
