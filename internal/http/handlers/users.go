package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
)

const (
	MsgUserNotFound  = "User not found"
	MsgInvalidUserID = "User ID must be a valid UUID"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Update(ctx context.Context, id string, p user.UpdateParams) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type RoleGetter interface {
	GetByID(ctx context.Context, id string) (role.Role, error)
}

type UsersHandler struct {
	users     UserStore
	roles     RoleGetter
	validator *validation.Validator
	log       *slog.Logger
}

func NewUsersHandler(users UserStore, roles RoleGetter, v *validation.Validator, log *slog.Logger) *UsersHandler {
	if log == nil {
		log = slog.Default()
	}
	return &UsersHandler{users: users, roles: roles, validator: v, log: log}
}

func (h *UsersHandler) ValidateUpdate() gin.HandlerFunc {
	return ValidateJSON(h.log, func(ctx context.Context, c *gin.Context, req *user.UpdateRequest, invalid []validation.Invalid) ([]string, error) {
		return h.validator.UserUpdate(ctx, userPathID(c), *req, invalid...)
	})
}

func (h *UsersHandler) List(ctx *gin.Context) {
	cctx, cancel := storeContext(ctx)
	defer cancel()

	users, err := h.users.List(cctx)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list users failed", "err", err)
		RespondInternal(ctx, "Failed to retrieve users")
		return
	}
	RespondData(ctx, http.StatusOK, "", users)
}

// Get returns a user. Callers below Manager may only read themselves.
func (h *UsersHandler) Get(ctx *gin.Context) {
	caller, ok := middlewares.Identity(ctx)
	if !ok {
		RespondUnauthorized(ctx, authz.MsgAuthRequired)
		return
	}
	id := userPathID(ctx)

	if err := authz.CanViewUser(caller, id); err != nil {
		h.denied(ctx, caller, id, err)
		return
	}
	if !validation.IsUUID(id) {
		RespondValidation(ctx, []string{MsgInvalidUserID})
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	u, err := h.users.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, MsgUserNotFound)
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "get user failed", "user_id", id, "err", err)
		RespondInternal(ctx, "Failed to retrieve user")
		return
	}
	RespondData(ctx, http.StatusOK, "", u)
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	caller, ok := middlewares.Identity(ctx)
	if !ok {
		RespondUnauthorized(ctx, authz.MsgAuthRequired)
		return
	}
	id := userPathID(ctx)

	if err := authz.CanUpdateUser(caller, id); err != nil {
		h.denied(ctx, caller, id, err)
		return
	}
	if !validation.IsUUID(id) {
		RespondValidation(ctx, []string{MsgInvalidUserID})
		return
	}

	req, ok := boundBody[user.UpdateRequest](ctx)
	if !ok {
		RespondInternal(ctx, "Failed to update user")
		return
	}

	if err := authz.CanChangeRole(caller, req.RoleID); err != nil {
		h.denied(ctx, caller, id, err)
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	if !caller.Is(id) {
		current, err := h.users.GetByID(cctx, id)
		switch {
		case errors.Is(err, user.ErrNotFound):
			RespondNotFound(ctx, MsgUserNotFound)
			return
		case err != nil:
			h.log.ErrorContext(ctx.Request.Context(), "lookup user failed", "user_id", id, "err", err)
			RespondInternal(ctx, "Failed to update user")
			return
		}
		if err := authz.CanModifyUser(caller, id, authz.Role(current.Role)); err != nil {
			h.denied(ctx, caller, id, err, "target_role", current.Role)
			return
		}
	}

	if req.RoleID != nil {
		target, err := h.roles.GetByID(cctx, *req.RoleID)
		switch {
		case errors.Is(err, role.ErrNotFound):
			RespondValidation(ctx, []string{validation.MsgRoleNotFound})
			return
		case err != nil:
			h.log.ErrorContext(ctx.Request.Context(), "lookup role failed", "role_id", *req.RoleID, "err", err)
			RespondInternal(ctx, "Failed to update user")
			return
		}
		if err := authz.CanAssignRole(caller, authz.Role(target.Name)); err != nil {
			h.denied(ctx, caller, id, err, "requested_role", target.Name)
			return
		}
	}

	u, err := h.users.Update(cctx, id, req.Params())
	switch {
	case errors.Is(err, user.ErrNotFound):
		RespondNotFound(ctx, MsgUserNotFound)
		return
	case errors.Is(err, user.ErrEmailTaken):
		RespondValidation(ctx, []string{validation.MsgEmailTaken})
		return
	case errors.Is(err, role.ErrNotFound):
		RespondValidation(ctx, []string{validation.MsgRoleNotFound})
		return
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "update user failed", "user_id", id, "err", err)
		RespondInternal(ctx, "Failed to update user")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "user updated", "user_id", id, "updated_by", caller.UserID)
	RespondData(ctx, http.StatusOK, "User updated successfully", u)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	caller, ok := middlewares.Identity(ctx)
	if !ok {
		RespondUnauthorized(ctx, authz.MsgAuthRequired)
		return
	}
	id := userPathID(ctx)

	if err := authz.CanDeleteUser(caller, id); err != nil {
		h.denied(ctx, caller, id, err)
		return
	}
	if !validation.IsUUID(id) {
		RespondValidation(ctx, []string{MsgInvalidUserID})
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	if err := h.users.Delete(cctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, MsgUserNotFound)
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "delete user failed", "user_id", id, "err", err)
		RespondInternal(ctx, "Failed to delete user")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "user deleted", "user_id", id, "deleted_by", caller.UserID)
	RespondData(ctx, http.StatusOK, "User deleted successfully", nil)
}

// userPathID returns the :id param in canonical lower-case form.
func userPathID(ctx *gin.Context) string {
	return strings.ToLower(strings.TrimSpace(ctx.Param("id")))
}

func (h *UsersHandler) denied(ctx *gin.Context, caller authz.Identity, targetID string, err error, extra ...any) {
	attrs := append([]any{
		"user_id", caller.UserID,
		"role", string(caller.Role),
		"target_id", targetID,
		"ip", ctx.ClientIP(),
		"reason", err.Error(),
	}, extra...)
	h.log.WarnContext(ctx.Request.Context(), "user access denied", attrs...)

	if !RespondDenial(ctx, err) {
		RespondInternal(ctx, "Internal server error")
	}
}
