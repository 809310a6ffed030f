package validation

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	employeeRoleID = role.EmployeeID
	managerRoleID  = role.ManagerID
	aliceID        = "11111111-1111-4111-8111-111111111111"
	bobID          = "22222222-2222-4222-8222-222222222222"
)

type fakeRoles struct {
	err error
}

func (f fakeRoles) GetByID(_ context.Context, id string) (role.Role, error) {
	if f.err != nil {
		return role.Role{}, f.err
	}
	for _, r := range role.DefaultRoles {
		if r.ID == id {
			return r, nil
		}
	}
	return role.Role{}, role.ErrNotFound
}

type fakeUsers struct {
	byID map[string]user.User
	err  error
}

func (f fakeUsers) GetByID(_ context.Context, id string) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	if f.err != nil {
		return user.User{}, f.err
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func newValidator() *Validator {
	return New(fakeRoles{}, fakeUsers{byID: map[string]user.User{
		aliceID: {ID: aliceID, Email: "alice@example.com"},
		bobID:   {ID: bobID, Email: "bob@example.com"},
	}})
}

func strPtr(s string) *string { return &s }

func TestRegistration(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	tests := []struct {
		name string
		req  user.RegisterRequest
		want []string
	}{
		{
			name: "valid employee",
			req:  user.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "secret1", RoleID: employeeRoleID},
		},
		{
			name: "manager role refused",
			req:  user.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "secret1", RoleID: managerRoleID},
			want: []string{authz.MsgSelfRegistration},
		},
		{
			name: "unknown role",
			req:  user.RegisterRequest{Name: "Carol", Email: "carol@example.com", Password: "secret1", RoleID: "99999999-9999-4999-8999-999999999999"},
			want: []string{MsgRoleNotFound},
		},
		{
			name: "everything wrong at once",
			req:  user.RegisterRequest{Name: "  ", Email: "nope", Password: "123", RoleID: "abc"},
			want: []string{
				"Name is required and must be a non-empty string.",
				"Must be a valid email",
				"Password must be at least 6 characters",
				"Role ID must be a valid UUID",
			},
		},
		{
			name: "missing email",
			req:  user.RegisterRequest{Name: "Carol", Password: "secret1", RoleID: employeeRoleID},
			want: []string{"Email is required"},
		},
		{
			name: "email taken",
			req:  user.RegisterRequest{Name: "Alice", Email: "Alice@Example.com", Password: "secret1", RoleID: employeeRoleID},
			want: []string{MsgEmailTaken},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Registration(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAdminCreateUserAllowsAnyRole(t *testing.T) {
	got, err := newValidator().AdminCreateUser(context.Background(), user.CreateUserRequest{
		Name: "Dana", Email: "dana@example.com", Password: "secret1", RoleID: role.SuperAdminID,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRegistrationStoreError(t *testing.T) {
	v := New(fakeRoles{err: errors.New("db down")}, fakeUsers{})
	_, err := v.Registration(context.Background(), user.RegisterRequest{
		Name: "Carol", Email: "carol@example.com", Password: "secret1", RoleID: employeeRoleID,
	})
	assert.Error(t, err)
}

func TestLogin(t *testing.T) {
	got, err := newValidator().Login(context.Background(), user.LoginRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Email is required", "Password is required"}, got)
}

func TestUserUpdate(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	got, err := v.UserUpdate(ctx, aliceID, user.UpdateRequest{Email: strPtr("alice@example.com")})
	require.NoError(t, err)
	assert.Empty(t, got, "keeping your own email is fine")

	got, err = v.UserUpdate(ctx, aliceID, user.UpdateRequest{Email: strPtr("bob@example.com")})
	require.NoError(t, err)
	assert.Equal(t, []string{MsgEmailTaken}, got)

	got, err = v.UserUpdate(ctx, aliceID, user.UpdateRequest{Name: strPtr(""), RoleID: strPtr("99999999-9999-4999-8999-999999999999")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name must be a non-empty string", MsgRoleNotFound}, got)

	got, err = v.UserUpdate(ctx, aliceID, user.UpdateRequest{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTaskCreate(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	got, err := v.TaskCreate(ctx, task.CreateRequest{Title: "Ship", Priority: "high", AssignedTo: aliceID})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = v.TaskCreate(ctx, task.CreateRequest{
		Title:      "",
		Priority:   "urgent",
		AssignedTo: "33333333-3333-4333-8333-333333333333",
		DueDate:    strPtr("someday"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Title is required and must be a non-empty string.",
		"Priority must be low, medium, or high",
		"Due date must be a valid ISO date",
		MsgAssignedUserNotFound,
	}, got)
}

func TestTaskCreateKeepsInvalidFields(t *testing.T) {
	v := newValidator()

	got, err := v.TaskCreate(context.Background(),
		task.CreateRequest{Title: "", Priority: "urgent"},
		Invalid{Field: "assigned_to", Message: "assigned_to must be of type string"},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"assigned_to must be of type string",
		"Title is required and must be a non-empty string.",
		"Priority must be low, medium, or high",
	}, got)
}

func TestTaskUpdate(t *testing.T) {
	v := newValidator()
	ctx := context.Background()

	got, err := v.TaskUpdate(ctx, task.UpdateRequest{Status: strPtr("done"), AssignedTo: strPtr("not-a-uuid")})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Status must be pending, in_progress, or completed",
		"Assigned user ID must be a valid UUID",
	}, got)

	got, err = v.TaskUpdate(ctx, task.UpdateRequest{Status: strPtr("in_progress"), AssignedTo: strPtr(bobID)})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIsUUID(t *testing.T) {
	assert.True(t, IsUUID("D290F1EE-6C54-4B01-90E6-D701748F0851"))
	assert.True(t, IsUUID(role.EmployeeID))
	assert.False(t, IsUUID("d290f1ee6c544b0190e6d701748f0851"))
	assert.False(t, IsUUID(""))
}
