package role

import "github.com/geocoder89/taskhub/internal/authz"

// Fixed ids so that seeded databases agree across environments.
const (
	SuperAdminID = "d290f1ee-6c54-4b01-90e6-d701748f0851"
	AdminID      = "e390f1ee-6c54-4b01-90e6-d701748f0852"
	ManagerID    = "f490f1ee-6c54-4b01-90e6-d701748f0853"
	EmployeeID   = "a590f1ee-6c54-4b01-90e6-d701748f0854"
)

var DefaultRoles = []Role{
	{ID: SuperAdminID, Name: string(authz.SuperAdmin), Description: "Full system access"},
	{ID: AdminID, Name: string(authz.Admin), Description: "Manages users and tasks"},
	{ID: ManagerID, Name: string(authz.Manager), Description: "Creates and assigns tasks"},
	{ID: EmployeeID, Name: string(authz.Employee), Description: "Works on assigned tasks"},
}

var DefaultPermissions = []Permission{
	{ID: "b4467cbc-86c3-4d4c-9d28-9ec712da900b", Name: "user.create", Description: "Create users"},
	{ID: "aff82ec7-4d29-4448-89f6-52910e6318b6", Name: "user.read", Description: "Read users"},
	{ID: "d56fae0b-3515-4be7-bfb0-231777b3a145", Name: "user.update", Description: "Update users"},
	{ID: "dea0e41b-542f-476e-822d-92f8f756e6bd", Name: "user.delete", Description: "Delete users"},
	{ID: "5897d155-71f4-4317-9233-1a9db1df3606", Name: "task.create", Description: "Create tasks"},
	{ID: "8b8918a5-ce80-40a3-a919-87c6e2704b23", Name: "task.read", Description: "Read tasks"},
	{ID: "b69d9bc6-1682-4034-85de-16f6883f243f", Name: "task.update", Description: "Update tasks"},
	{ID: "87033af7-98a8-471b-9dc1-0c72a478aea2", Name: "task.delete", Description: "Delete tasks"},
	{ID: "6c4c0008-8171-4d3b-bde4-0f230f87e891", Name: "role.manage", Description: "Manage roles and permissions"},
	{ID: "aa2d1efb-a4e2-4e18-8aa9-9debd4a7a726", Name: "system.admin", Description: "System administration"},
}

// DefaultGrants maps role ids to the permission names attached to them.
var DefaultGrants = map[string][]string{
	SuperAdminID: {
		"user.create", "user.read", "user.update", "user.delete",
		"task.create", "task.read", "task.update", "task.delete",
		"role.manage", "system.admin",
	},
	AdminID: {
		"user.create", "user.read", "user.update", "user.delete",
		"task.create", "task.read", "task.update", "task.delete",
	},
	ManagerID:  {"task.create", "task.read", "task.update"},
	EmployeeID: {"task.read", "task.update"},
}

// PermissionByName looks up a catalog permission.
func PermissionByName(name string) (Permission, bool) {
	for _, p := range DefaultPermissions {
		if p.Name == name {
			return p, true
		}
	}
	return Permission{}, false
}
