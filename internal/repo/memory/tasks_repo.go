package memory

import (
	"context"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
)

type TasksRepo struct {
	s *Store
}

// withAssignee must be called with mu held.
func (r *TasksRepo) withAssignee(t task.Task) task.Task {
	if u, ok := r.s.users[t.AssignedTo]; ok {
		summary := user.Summary{ID: u.ID, Name: u.Name, Email: u.Email, Role: r.s.roles[u.RoleID].Name}
		t.AssignedUser = &summary
	}
	return t
}

func (r *TasksRepo) Create(_ context.Context, t task.Task) (task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t.AssignedTo = strings.ToLower(t.AssignedTo)
	if _, ok := r.s.users[t.AssignedTo]; !ok {
		return task.Task{}, user.ErrNotFound
	}
	if t.ID == "" {
		t.ID = newID()
	}
	t.AssignedUser = nil

	r.s.tasks[t.ID] = t
	r.s.order[t.ID] = r.s.next()
	return r.withAssignee(t), nil
}

func (r *TasksRepo) GetByID(_ context.Context, id string) (task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[strings.ToLower(id)]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}
	return r.withAssignee(t), nil
}

func (r *TasksRepo) List(_ context.Context, f task.ListFilter) ([]task.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	ids := make([]string, 0, len(r.s.tasks))
	for id, t := range r.s.tasks {
		if f.AssignedTo != nil && t.AssignedTo != strings.ToLower(*f.AssignedTo) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		ids = append(ids, id)
	}
	r.s.newestFirst(ids, func(id string) time.Time { return r.s.tasks[id].CreatedAt })

	out := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.withAssignee(r.s.tasks[id]))
	}
	return out, nil
}

func (r *TasksRepo) Update(_ context.Context, id string, p task.UpdateParams) (task.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id = strings.ToLower(id)
	t, ok := r.s.tasks[id]
	if !ok {
		return task.Task{}, task.ErrNotFound
	}

	if p.AssignedTo != nil {
		assignee := strings.ToLower(*p.AssignedTo)
		if _, ok := r.s.users[assignee]; !ok {
			return task.Task{}, user.ErrNotFound
		}
		t.AssignedTo = assignee
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		d := *p.Description
		t.Description = &d
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	t.UpdatedAt = time.Now().UTC()

	r.s.tasks[id] = t
	return r.withAssignee(t), nil
}

func (r *TasksRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id = strings.ToLower(id)
	if _, ok := r.s.tasks[id]; !ok {
		return task.ErrNotFound
	}
	delete(r.s.tasks, id)
	delete(r.s.order, id)
	return nil
}
