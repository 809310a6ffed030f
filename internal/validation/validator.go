package validation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/go-playground/validator/v10"
)

const (
	MsgRoleNotFound         = "Role not found"
	MsgEmailTaken           = "User with this email already exists"
	MsgAssignedUserNotFound = "Assigned user not found"
)

var uuidShape = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsUUID reports whether s has the 8-4-4-4-12 hex shape.
func IsUUID(s string) bool { return uuidShape.MatchString(s) }

type RoleLookup interface {
	GetByID(ctx context.Context, id string) (role.Role, error)
}

type UserLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

// Validator runs structural checks from struct tags and then the referential
// checks that need the store. All problems are collected, none short-circuit.
type Validator struct {
	v     *validator.Validate
	roles RoleLookup
	users UserLookup
}

func New(roles RoleLookup, users UserLookup) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		return jsonNameFromStructField(sf)
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "uuidshape", func(fl validator.FieldLevel) bool {
		return IsUUID(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, ok := task.ParseDueDate(fl.Field().String())
		return ok
	})

	return &Validator{v: v, roles: roles, users: users}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Problems accumulates messages and remembers which fields already failed.
type Problems struct {
	msgs   []string
	failed map[string]bool
}

func (p *Problems) Add(field, msg string) {
	if p.failed == nil {
		p.failed = make(map[string]bool)
	}
	p.failed[field] = true
	p.msgs = append(p.msgs, msg)
}

// Invalid is a field rejected before struct validation ran, such as a JSON
// value of the wrong type.
type Invalid struct {
	Field   string
	Message string
}

func (p *Problems) Failed(field string) bool { return p.failed[field] }

func (p *Problems) Messages() []string { return p.msgs }

// Struct applies the struct tags of req, which must be a pointer to a struct.
// Fields listed in invalid keep their message and skip tag validation.
func (v *Validator) Struct(req any, invalid ...Invalid) *Problems {
	p := &Problems{}
	for _, in := range invalid {
		p.Add(in.Field, in.Message)
	}
	err := v.v.Struct(req)
	if err == nil {
		return p
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		p.Add("", err.Error())
		return p
	}

	rootType := baseStructType(req)
	for _, fe := range fieldErrors {
		sf, ok := structField(rootType, fe)
		field := fe.Field()
		if p.Failed(field) {
			continue
		}
		msg := field + " " + validationMessage(fe.Tag(), fe.Param())
		if ok {
			msg = messageFor(sf, field, fe)
		}
		p.Add(field, msg)
	}
	return p
}

func (v *Validator) Login(_ context.Context, req user.LoginRequest, invalid ...Invalid) ([]string, error) {
	return v.Struct(&req, invalid...).Messages(), nil
}

// Registration validates a self-service sign-up: the role must be the employee role.
func (v *Validator) Registration(ctx context.Context, req user.RegisterRequest, invalid ...Invalid) ([]string, error) {
	return v.newUser(ctx, req, true, invalid)
}

// AdminCreateUser validates an admin-initiated creation; any existing role is accepted.
func (v *Validator) AdminCreateUser(ctx context.Context, req user.CreateUserRequest, invalid ...Invalid) ([]string, error) {
	return v.newUser(ctx, req, false, invalid)
}

func (v *Validator) newUser(ctx context.Context, req user.RegisterRequest, selfService bool, invalid []Invalid) ([]string, error) {
	p := v.Struct(&req, invalid...)

	if !p.Failed("roleId") {
		r, err := v.roles.GetByID(ctx, req.RoleID)
		switch {
		case errors.Is(err, role.ErrNotFound):
			p.Add("roleId", MsgRoleNotFound)
		case err != nil:
			return nil, fmt.Errorf("lookup role: %w", err)
		case selfService && !authz.IsSelfRegistrationRole(r.Name):
			p.Add("roleId", authz.MsgSelfRegistration)
		}
	}

	if !p.Failed("email") {
		taken, err := v.emailTaken(ctx, req.Email, "")
		if err != nil {
			return nil, err
		}
		if taken {
			p.Add("email", MsgEmailTaken)
		}
	}
	return p.Messages(), nil
}

// UserUpdate validates a partial user update of targetID.
func (v *Validator) UserUpdate(ctx context.Context, targetID string, req user.UpdateRequest, invalid ...Invalid) ([]string, error) {
	p := v.Struct(&req, invalid...)

	if req.RoleID != nil && !p.Failed("roleId") {
		_, err := v.roles.GetByID(ctx, *req.RoleID)
		switch {
		case errors.Is(err, role.ErrNotFound):
			p.Add("roleId", MsgRoleNotFound)
		case err != nil:
			return nil, fmt.Errorf("lookup role: %w", err)
		}
	}

	if req.Email != nil && !p.Failed("email") {
		taken, err := v.emailTaken(ctx, *req.Email, targetID)
		if err != nil {
			return nil, err
		}
		if taken {
			p.Add("email", MsgEmailTaken)
		}
	}
	return p.Messages(), nil
}

func (v *Validator) TaskCreate(ctx context.Context, req task.CreateRequest, invalid ...Invalid) ([]string, error) {
	p := v.Struct(&req, invalid...)

	if !p.Failed("assigned_to") {
		if err := v.assigneeExists(ctx, req.AssignedTo, p); err != nil {
			return nil, err
		}
	}
	return p.Messages(), nil
}

func (v *Validator) TaskUpdate(ctx context.Context, req task.UpdateRequest, invalid ...Invalid) ([]string, error) {
	p := v.Struct(&req, invalid...)

	if req.AssignedTo != nil && !p.Failed("assigned_to") {
		if err := v.assigneeExists(ctx, *req.AssignedTo, p); err != nil {
			return nil, err
		}
	}
	return p.Messages(), nil
}

func (v *Validator) assigneeExists(ctx context.Context, id string, p *Problems) error {
	_, err := v.users.GetByID(ctx, id)
	switch {
	case errors.Is(err, user.ErrNotFound):
		p.Add("assigned_to", MsgAssignedUserNotFound)
	case err != nil:
		return fmt.Errorf("lookup assignee: %w", err)
	}
	return nil
}

// emailTaken reports whether email belongs to a user other than exceptID.
func (v *Validator) emailTaken(ctx context.Context, email, exceptID string) (bool, error) {
	email = user.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	u, err := v.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, user.ErrNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("lookup email: %w", err)
	}
	return !strings.EqualFold(u.ID, exceptID), nil
}
