package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type CreateRequest struct {
	Title       string  `json:"title" validate:"notblank,max=100" msg:"Title is required and must be a non-empty string." msg_max:"Title must be between 1 and 100 characters"`
	Description *string `json:"description" validate:"omitempty,max=1000" msg:"Description must be less than 1000 characters"`
	Priority    string  `json:"priority" validate:"required,oneof=low medium high" msg:"Priority must be low, medium, or high"`
	AssignedTo  string  `json:"assigned_to" validate:"required,uuidshape" msg:"Assigned user ID must be a valid UUID"`
	DueDate     *string `json:"due_date" validate:"omitempty,isodate" msg:"Due date must be a valid ISO date"`
}

// UpdateRequest is a partial update; every field is optional and null means absent.
type UpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=100" msg:"Title must be between 1 and 100 characters"`
	Description *string `json:"description" validate:"omitempty,max=1000" msg:"Description must be less than 1000 characters"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending in_progress completed" msg:"Status must be pending, in_progress, or completed"`
	Priority    *string `json:"priority" validate:"omitempty,oneof=low medium high" msg:"Priority must be low, medium, or high"`
	AssignedTo  *string `json:"assigned_to" validate:"omitempty,uuidshape" msg:"Assigned user ID must be a valid UUID"`
	DueDate     *string `json:"due_date" validate:"omitempty,isodate" msg:"Due date must be a valid ISO date"`
}

func (r CreateRequest) RequestedPriority() *string {
	p := r.Priority
	return &p
}

func (r UpdateRequest) RequestedPriority() *string { return r.Priority }

// dateLayouts are the accepted due date encodings.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDueDate parses the date formats accepted for due_date.
func ParseDueDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// NewFromCreateRequest builds a pending task ready to insert.
func NewFromCreateRequest(req CreateRequest) Task {
	now := time.Now().UTC()

	t := Task{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(req.Title),
		Status:     StatusPending,
		Priority:   Priority(req.Priority),
		AssignedTo: req.AssignedTo,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Description != nil {
		d := *req.Description
		t.Description = &d
	}
	if req.DueDate != nil {
		if due, ok := ParseDueDate(*req.DueDate); ok {
			t.DueDate = &due
		}
	}
	return t
}

func (r UpdateRequest) Params() UpdateParams {
	var p UpdateParams
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		p.Title = &title
	}
	p.Description = r.Description
	if r.Status != nil {
		s := Status(*r.Status)
		p.Status = &s
	}
	if r.Priority != nil {
		pr := Priority(*r.Priority)
		p.Priority = &pr
	}
	p.AssignedTo = r.AssignedTo
	if r.DueDate != nil {
		if due, ok := ParseDueDate(*r.DueDate); ok {
			p.DueDate = &due
		}
	}
	return p
}
