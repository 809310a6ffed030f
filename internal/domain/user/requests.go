package user

import "strings"

// RegisterRequest is the self-registration payload. The role must resolve to
// the employee role.
type RegisterRequest struct {
	Name     string `json:"name" validate:"notblank,max=50" msg:"Name is required and must be a non-empty string." msg_max:"Name must be at most 50 characters"`
	Email    string `json:"email" validate:"required,email,max=50" msg:"Must be a valid email" msg_required:"Email is required"`
	Password string `json:"password" validate:"required,min=6" msg:"Password must be at least 6 characters"`
	RoleID   string `json:"roleId" validate:"required,uuidshape" msg:"Role ID must be a valid UUID"`
}

// CreateUserRequest is the admin-initiated creation payload; any role is allowed.
type CreateUserRequest = RegisterRequest

type LoginRequest struct {
	Email    string `json:"email" validate:"required" msg:"Email is required"`
	Password string `json:"password" validate:"required" msg:"Password is required"`
}

// UpdateRequest is a partial update; absent and null fields are left alone.
type UpdateRequest struct {
	Name   *string `json:"name" validate:"omitempty,notblank,max=50" msg:"Name must be a non-empty string" msg_max:"Name must be at most 50 characters"`
	Email  *string `json:"email" validate:"omitempty,email,max=50" msg:"Must be a valid email"`
	RoleID *string `json:"roleId" validate:"omitempty,uuidshape" msg:"Role ID must be a valid UUID"`
}

func (r RegisterRequest) Params(hash string) CreateParams {
	return CreateParams{Name: strings.TrimSpace(r.Name), Email: normalizeEmail(r.Email), PasswordHash: hash, RoleID: r.RoleID}
}

func (r UpdateRequest) Params() UpdateParams {
	p := UpdateParams{RoleID: r.RoleID}
	if r.Name != nil {
		n := strings.TrimSpace(*r.Name)
		p.Name = &n
	}
	if r.Email != nil {
		e := normalizeEmail(*r.Email)
		p.Email = &e
	}
	return p
}

// NormalizeEmail is applied before every lookup and write so that uniqueness
// is case-insensitive.
func NormalizeEmail(email string) string { return normalizeEmail(email) }

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
