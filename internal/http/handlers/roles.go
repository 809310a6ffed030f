package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/domain/role"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
)

type RoleReader interface {
	GetByID(ctx context.Context, id string) (role.Role, error)
	List(ctx context.Context) ([]role.Role, error)
	Permissions(ctx context.Context, roleID string) ([]role.Permission, error)
}

type RolesHandler struct {
	roles RoleReader
	log   *slog.Logger
}

func NewRolesHandler(roles RoleReader, log *slog.Logger) *RolesHandler {
	if log == nil {
		log = slog.Default()
	}
	return &RolesHandler{roles: roles, log: log}
}

// List is public so that clients can discover the employee role id for sign-up.
func (h *RolesHandler) List(ctx *gin.Context) {
	cctx, cancel := storeContext(ctx)
	defer cancel()

	roles, err := h.roles.List(cctx)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list roles failed", "err", err)
		RespondInternal(ctx, "Failed to retrieve roles")
		return
	}
	RespondData(ctx, http.StatusOK, "", roles)
}

func (h *RolesHandler) Permissions(ctx *gin.Context) {
	id := ctx.Param("id")
	if !validation.IsUUID(id) {
		RespondValidation(ctx, []string{"Role ID must be a valid UUID"})
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	if _, err := h.roles.GetByID(cctx, id); err != nil {
		if errors.Is(err, role.ErrNotFound) {
			RespondNotFound(ctx, validation.MsgRoleNotFound)
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "get role failed", "role_id", id, "err", err)
		RespondInternal(ctx, "Failed to retrieve permissions")
		return
	}

	perms, err := h.roles.Permissions(cctx, id)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list permissions failed", "role_id", id, "err", err)
		RespondInternal(ctx, "Failed to retrieve permissions")
		return
	}
	RespondData(ctx, http.StatusOK, "", perms)
}
