package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/taskhub/internal/authz"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
)

const (
	MsgTaskNotFound  = "Task not found"
	MsgInvalidTaskID = "Task ID must be a valid UUID"
	MsgInvalidStatus = "Status must be pending, in_progress, or completed"
	MsgInvalidPrio   = "Priority must be low, medium, or high"
)

type TaskStore interface {
	Create(ctx context.Context, t task.Task) (task.Task, error)
	GetByID(ctx context.Context, id string) (task.Task, error)
	List(ctx context.Context, f task.ListFilter) ([]task.Task, error)
	Update(ctx context.Context, id string, p task.UpdateParams) (task.Task, error)
	Delete(ctx context.Context, id string) error
}

type TasksHandler struct {
	tasks     TaskStore
	validator *validation.Validator
	log       *slog.Logger
}

func NewTasksHandler(tasks TaskStore, v *validation.Validator, log *slog.Logger) *TasksHandler {
	if log == nil {
		log = slog.Default()
	}
	return &TasksHandler{tasks: tasks, validator: v, log: log}
}

func (h *TasksHandler) ValidateCreate() gin.HandlerFunc {
	return ValidateJSON(h.log, func(ctx context.Context, _ *gin.Context, req *task.CreateRequest, invalid []validation.Invalid) ([]string, error) {
		return h.validator.TaskCreate(ctx, *req, invalid...)
	})
}

func (h *TasksHandler) ValidateUpdate() gin.HandlerFunc {
	return ValidateJSON(h.log, func(ctx context.Context, _ *gin.Context, req *task.UpdateRequest, invalid []validation.Invalid) ([]string, error) {
		return h.validator.TaskUpdate(ctx, *req, invalid...)
	})
}

// List returns every task visible to the caller, newest first.
func (h *TasksHandler) List(ctx *gin.Context) {
	h.list(ctx, task.ListFilter{})
}

func (h *TasksHandler) ListByStatus(ctx *gin.Context) {
	s := task.Status(ctx.Param("status"))
	if !s.Valid() {
		RespondValidation(ctx, []string{MsgInvalidStatus})
		return
	}
	h.list(ctx, task.ListFilter{Status: &s})
}

func (h *TasksHandler) ListByPriority(ctx *gin.Context) {
	p := task.Priority(ctx.Param("priority"))
	if !p.Valid() {
		RespondValidation(ctx, []string{MsgInvalidPrio})
		return
	}
	h.list(ctx, task.ListFilter{Priority: &p})
}

func (h *TasksHandler) list(ctx *gin.Context, f task.ListFilter) {
	caller, ok := middlewares.Identity(ctx)
	if !ok {
		RespondUnauthorized(ctx, authz.MsgAuthRequired)
		return
	}
	f.AssignedTo = authz.TaskScope(caller)

	cctx, cancel := storeContext(ctx)
	defer cancel()

	tasks, err := h.tasks.List(cctx, f)
	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "list tasks failed", "user_id", caller.UserID, "err", err)
		RespondInternal(ctx, "Failed to retrieve tasks")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "tasks retrieved",
		"user_id", caller.UserID, "role", string(caller.Role), "task_count", len(tasks))
	RespondData(ctx, http.StatusOK, "", tasks)
}

// Get answers 404 for a missing task before ownership is considered.
func (h *TasksHandler) Get(ctx *gin.Context) {
	caller, ok := middlewares.Identity(ctx)
	if !ok {
		RespondUnauthorized(ctx, authz.MsgAuthRequired)
		return
	}

	t, ok := h.load(ctx, "Failed to retrieve task")
	if !ok {
		return
	}

	if err := authz.CanViewTask(caller, t.AssignedTo); err != nil {
		h.denied(ctx, caller, t.ID, err)
		return
	}
	RespondData(ctx, http.StatusOK, "", t)
}

func (h *TasksHandler) Create(ctx *gin.Context) {
	caller, _ := middlewares.Identity(ctx)

	req, ok := boundBody[task.CreateRequest](ctx)
	if !ok {
		RespondInternal(ctx, "Failed to create task")
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	created, err := h.tasks.Create(cctx, task.NewFromCreateRequest(*req))
	switch {
	case errors.Is(err, user.ErrNotFound):
		RespondValidation(ctx, []string{validation.MsgAssignedUserNotFound})
		return
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "create task failed", "user_id", caller.UserID, "err", err)
		RespondInternal(ctx, "Failed to create task")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "task created",
		"task_id", created.ID, "assigned_to", created.AssignedTo, "priority", string(created.Priority), "created_by", caller.UserID)
	RespondData(ctx, http.StatusCreated, "Task created successfully", created)
}

func (h *TasksHandler) Update(ctx *gin.Context) {
	caller, ok := middlewares.Identity(ctx)
	if !ok {
		RespondUnauthorized(ctx, authz.MsgAuthRequired)
		return
	}

	req, ok := boundBody[task.UpdateRequest](ctx)
	if !ok {
		RespondInternal(ctx, "Failed to update task")
		return
	}

	current, ok := h.load(ctx, "Failed to update task")
	if !ok {
		return
	}

	if err := authz.CanUpdateTask(caller, current.AssignedTo); err != nil {
		h.denied(ctx, caller, current.ID, err)
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	updated, err := h.tasks.Update(cctx, current.ID, req.Params())
	switch {
	case errors.Is(err, task.ErrNotFound):
		RespondNotFound(ctx, MsgTaskNotFound)
		return
	case errors.Is(err, user.ErrNotFound):
		RespondValidation(ctx, []string{validation.MsgAssignedUserNotFound})
		return
	case err != nil:
		h.log.ErrorContext(ctx.Request.Context(), "update task failed", "task_id", current.ID, "err", err)
		RespondInternal(ctx, "Failed to update task")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "task updated", "task_id", updated.ID, "updated_by", caller.UserID)
	RespondData(ctx, http.StatusOK, "Task updated successfully", updated)
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	caller, _ := middlewares.Identity(ctx)
	id := ctx.Param("id")
	if !validation.IsUUID(id) {
		RespondValidation(ctx, []string{MsgInvalidTaskID})
		return
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	if err := h.tasks.Delete(cctx, id); err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, MsgTaskNotFound)
			return
		}
		h.log.ErrorContext(ctx.Request.Context(), "delete task failed", "task_id", id, "err", err)
		RespondInternal(ctx, "Failed to delete task")
		return
	}

	h.log.InfoContext(ctx.Request.Context(), "task deleted", "task_id", id, "deleted_by", caller.UserID)
	RespondData(ctx, http.StatusOK, "Task deleted successfully", nil)
}

// load fetches the task named by the id path param, answering 400 or 404 itself.
func (h *TasksHandler) load(ctx *gin.Context, failMsg string) (task.Task, bool) {
	id := ctx.Param("id")
	if !validation.IsUUID(id) {
		RespondValidation(ctx, []string{MsgInvalidTaskID})
		return task.Task{}, false
	}

	cctx, cancel := storeContext(ctx)
	defer cancel()

	t, err := h.tasks.GetByID(cctx, id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			h.log.WarnContext(ctx.Request.Context(), "task not found", "task_id", id, "ip", ctx.ClientIP())
			RespondNotFound(ctx, MsgTaskNotFound)
			return task.Task{}, false
		}
		h.log.ErrorContext(ctx.Request.Context(), "get task failed", "task_id", id, "err", err)
		RespondInternal(ctx, failMsg)
		return task.Task{}, false
	}
	return t, true
}

func (h *TasksHandler) denied(ctx *gin.Context, caller authz.Identity, taskID string, err error) {
	h.log.WarnContext(ctx.Request.Context(), "task access denied",
		"user_id", caller.UserID,
		"role", string(caller.Role),
		"task_id", taskID,
		"ip", ctx.ClientIP(),
	)
	if !RespondDenial(ctx, err) {
		RespondInternal(ctx, "Internal server error")
	}
}
