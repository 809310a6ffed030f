package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCannedGatesFollowDominance(t *testing.T) {
	assert.Equal(t, RoleSet{SuperAdmin}, SuperAdminOnly)
	assert.Equal(t, RoleSet{SuperAdmin, Admin}, AdminOrAbove)
	assert.Equal(t, RoleSet{SuperAdmin, Admin, Manager}, ManagerOrAbove)
	assert.Equal(t, RoleSet{SuperAdmin, Admin, Manager, Employee}, AtLeast(Employee))
}

func TestRoleDominates(t *testing.T) {
	assert.True(t, SuperAdmin.Dominates(Employee))
	assert.True(t, Manager.Dominates(Manager))
	assert.False(t, Manager.Dominates(Admin))
	assert.False(t, Employee.Dominates(Manager))
	assert.False(t, Role("Intern").Dominates(Employee))
}

func TestRoleSetContainsIsExact(t *testing.T) {
	assert.True(t, AdminOrAbove.Contains(Admin))
	assert.False(t, AdminOrAbove.Contains(Role("admin")))
	assert.False(t, AdminOrAbove.Contains(Role("Admin ")))
}

func TestRolesReturnsCopy(t *testing.T) {
	rs := Roles()
	rs[0] = Employee
	assert.Equal(t, SuperAdmin, Roles()[0])
	assert.True(t, Manager.Valid())
	assert.False(t, Role("Owner").Valid())
}
