package authz

// Role is the name of a role as stored in the roles table and carried in tokens.
type Role string

const (
	SuperAdmin Role = "Super Admin"
	Admin      Role = "Admin"
	Manager    Role = "Manager"
	Employee   Role = "Employee"
)

// hierarchy lists every known role from most to least privileged.
var hierarchy = []Role{SuperAdmin, Admin, Manager, Employee}

// dominates maps each role to the roles it outranks or equals.
// Adding a role means adding it to hierarchy and to this table, nothing else.
var dominates = map[Role][]Role{
	SuperAdmin: {SuperAdmin, Admin, Manager, Employee},
	Admin:      {Admin, Manager, Employee},
	Manager:    {Manager, Employee},
	Employee:   {Employee},
}

// Roles returns the known roles, most privileged first.
func Roles() []Role {
	out := make([]Role, len(hierarchy))
	copy(out, hierarchy)
	return out
}

func (r Role) Valid() bool {
	_, ok := dominates[r]
	return ok
}

func (r Role) String() string { return string(r) }

// Dominates reports whether r ranks at or above other. Unknown roles dominate nothing.
func (r Role) Dominates(other Role) bool {
	for _, d := range dominates[r] {
		if d == other {
			return true
		}
	}
	return false
}

// RoleSet is an allow-list of role names for a gate.
type RoleSet []Role

// Contains is an exact, case-sensitive match on the role name.
func (s RoleSet) Contains(name Role) bool {
	for _, r := range s {
		if r == name {
			return true
		}
	}
	return false
}

func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// AtLeast returns every role that dominates floor, most privileged first.
func AtLeast(floor Role) RoleSet {
	var out RoleSet
	for _, r := range hierarchy {
		if r.Dominates(floor) {
			out = append(out, r)
		}
	}
	return out
}

var (
	SuperAdminOnly = AtLeast(SuperAdmin)
	AdminOrAbove   = AtLeast(Admin)
	ManagerOrAbove = AtLeast(Manager)
)
