package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestRequireAnyOf(t *testing.T) {
	err := RequireAnyOf(nil, AdminOrAbove)
	d, ok := AsDenial(err)
	require.True(t, ok)
	assert.Equal(t, Unauthenticated, d.Kind)
	assert.Equal(t, MsgAuthRequired, d.Message)

	err = RequireAnyOf(&Identity{UserID: "u1", Role: Manager}, AdminOrAbove)
	d, ok = AsDenial(err)
	require.True(t, ok)
	assert.Equal(t, Forbidden, d.Kind)
	assert.Equal(t, MsgInsufficient, d.Message)

	assert.NoError(t, RequireAnyOf(&Identity{UserID: "u1", Role: Admin}, AdminOrAbove))
}

func TestCanAssignPriority(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		priority *string
		wantErr  bool
	}{
		{name: "employee high", role: Employee, priority: ptr("high"), wantErr: true},
		{name: "employee medium", role: Employee, priority: ptr("medium")},
		{name: "employee absent", role: Employee},
		{name: "manager high", role: Manager, priority: ptr("high")},
		{name: "admin high", role: Admin, priority: ptr("high")},
		{name: "super admin high", role: SuperAdmin, priority: ptr("high")},
		{name: "unknown role high", role: Role("Contractor"), priority: ptr("high"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanAssignPriority(&Identity{UserID: "u1", Role: tt.role}, tt.priority)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			d, ok := AsDenial(err)
			require.True(t, ok)
			assert.Equal(t, Forbidden, d.Kind)
			assert.Equal(t, MsgHighPriority, d.Message)
		})
	}
}

func TestCanAssignPriorityWithoutIdentity(t *testing.T) {
	d, ok := AsDenial(CanAssignPriority(nil, ptr("low")))
	require.True(t, ok)
	assert.Equal(t, Unauthenticated, d.Kind)
}

func TestOwnerOrRoleIn(t *testing.T) {
	emp := Identity{UserID: "e1", Role: Employee}
	assert.True(t, OwnerOrRoleIn(emp, "e1", ManagerOrAbove))
	assert.False(t, OwnerOrRoleIn(emp, "e2", ManagerOrAbove))
	assert.True(t, OwnerOrRoleIn(Identity{UserID: "m1", Role: Manager}, "e2", ManagerOrAbove))
	assert.False(t, OwnerOrRoleIn(Identity{Role: Employee}, "", ManagerOrAbove))
}

func TestTaskRules(t *testing.T) {
	emp := Identity{UserID: "e1", Role: Employee}
	mgr := Identity{UserID: "m1", Role: Manager}

	assert.NoError(t, CanViewTask(emp, "e1"))
	assert.EqualError(t, CanViewTask(emp, "e2"), MsgViewTask)
	assert.NoError(t, CanViewTask(mgr, "e2"))

	assert.NoError(t, CanUpdateTask(emp, "e1"))
	assert.EqualError(t, CanUpdateTask(emp, "e2"), MsgUpdateTask)
	assert.NoError(t, CanUpdateTask(mgr, "e2"))

	assert.Nil(t, TaskScope(mgr))
	scope := TaskScope(emp)
	require.NotNil(t, scope)
	assert.Equal(t, "e1", *scope)
}

func TestUserRules(t *testing.T) {
	emp := Identity{UserID: "e1", Role: Employee}
	admin := Identity{UserID: "a1", Role: Admin}

	assert.EqualError(t, CanViewUser(emp, "e2"), MsgViewProfile)
	assert.NoError(t, CanViewUser(emp, "e1"))
	assert.NoError(t, CanViewUser(admin, "e2"))

	assert.EqualError(t, CanUpdateUser(emp, "e2"), MsgUpdateProfile)
	assert.EqualError(t, CanChangeRole(emp, ptr("r1")), MsgChangeRole)
	assert.NoError(t, CanChangeRole(emp, nil))
	assert.NoError(t, CanChangeRole(admin, ptr("r1")))

	assert.NoError(t, CanAssignRole(admin, Manager))
	assert.EqualError(t, CanAssignRole(admin, SuperAdmin), MsgRoleAboveOwn)

	manager := Identity{UserID: "m1", Role: Manager}
	assert.EqualError(t, CanModifyUser(manager, "s1", SuperAdmin), MsgTargetOutranks)
	assert.EqualError(t, CanModifyUser(manager, "a1", Admin), MsgTargetOutranks)
	assert.NoError(t, CanModifyUser(manager, "e1", Employee))
	assert.NoError(t, CanModifyUser(manager, "m1", Manager))
	assert.NoError(t, CanModifyUser(admin, "x1", Role("Contractor")))

	upper := Identity{UserID: "aa-bb", Role: Admin}
	assert.True(t, upper.Is("AA-BB"))
	_, ok := AsDenial(CanDeleteUser(upper, "AA-BB"))
	assert.True(t, ok)

	d, ok := AsDenial(CanDeleteUser(admin, "a1"))
	require.True(t, ok)
	assert.Equal(t, Rejected, d.Kind)
	assert.Equal(t, MsgSelfDelete, d.Message)
	assert.NoError(t, CanDeleteUser(admin, "e1"))
}

func TestIsSelfRegistrationRole(t *testing.T) {
	assert.True(t, IsSelfRegistrationRole("Employee"))
	assert.True(t, IsSelfRegistrationRole("EMPLOYEE"))
	assert.False(t, IsSelfRegistrationRole("Manager"))
	assert.False(t, IsSelfRegistrationRole(""))
}
