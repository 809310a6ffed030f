package task

import (
	"errors"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

type Task struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  *string       `json:"description"`
	Status       Status        `json:"status"`
	Priority     Priority      `json:"priority"`
	AssignedTo   string        `json:"assigned_to"`
	AssignedUser *user.Summary `json:"assignedUser,omitempty"`
	DueDate      *time.Time    `json:"due_date"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ListFilter narrows a listing; nil fields do not filter.
type ListFilter struct {
	AssignedTo *string
	Status     *Status
	Priority   *Priority
}

type UpdateParams struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	AssignedTo  *string
	DueDate     *time.Time
}

var ErrNotFound = errors.New("task not found")
