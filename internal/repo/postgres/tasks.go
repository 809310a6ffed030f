package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/domain/user"
	"github.com/jackc/pgx/v5"
)

type TasksRepo struct {
	db  DB
	obs Observer
}

func NewTasksRepo(db DB, obs Observer) *TasksRepo {
	return &TasksRepo{db: db, obs: observerOrNoop(obs)}
}

// taskSelect embeds the assignee summary.
const taskSelect = `SELECT t.id, t.title, t.description, t.status, t.priority, t.assigned_to, t.due_date,
		t.created_at, t.updated_at, u.id, u.name, u.email, r.name
	FROM tasks t
	JOIN users u ON u.id = t.assigned_to
	JOIN roles r ON r.id = u.role_id`

func scanTask(row pgx.Row) (task.Task, error) {
	var (
		t        task.Task
		status   string
		priority string
		due      *time.Time
		assignee user.Summary
	)

	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &status, &priority, &t.AssignedTo, &due,
		&t.CreatedAt, &t.UpdatedAt, &assignee.ID, &assignee.Name, &assignee.Email, &assignee.Role,
	)
	if err != nil {
		return task.Task{}, err
	}

	t.Status = task.Status(status)
	t.Priority = task.Priority(priority)
	t.DueDate = due
	t.AssignedUser = &assignee
	return t, nil
}

func (r *TasksRepo) Create(ctx context.Context, t task.Task) (task.Task, error) {
	err := r.obs.ObserveDB("tasks.create", func() error {
		_, err := r.db.Exec(ctx,
			`INSERT INTO tasks (id, title, description, status, priority, assigned_to, due_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), t.AssignedTo, t.DueDate, t.CreatedAt, t.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return task.Task{}, user.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("create task: %w", err)
	}

	return r.GetByID(ctx, t.ID)
}

func (r *TasksRepo) GetByID(ctx context.Context, id string) (task.Task, error) {
	var t task.Task
	err := r.obs.ObserveDB("tasks.get_by_id", func() error {
		var err error
		t, err = scanTask(r.db.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// List returns tasks matching f, newest first.
func (r *TasksRepo) List(ctx context.Context, f task.ListFilter) ([]task.Task, error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if f.AssignedTo != nil {
		conds = append(conds, fmt.Sprintf("t.assigned_to = $%d", argsPosition))
		args = append(args, *f.AssignedTo)
		argsPosition++
	}

	if f.Status != nil {
		conds = append(conds, fmt.Sprintf("t.status = $%d", argsPosition))
		args = append(args, string(*f.Status))
		argsPosition++
	}

	if f.Priority != nil {
		conds = append(conds, fmt.Sprintf("t.priority = $%d", argsPosition))
		args = append(args, string(*f.Priority))
	}

	query := taskSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY t.created_at DESC"

	out := make([]task.Task, 0)
	err := r.obs.ObserveDB("tasks.list", func() error {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			t, err := scanTask(rows)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// Update applies the non-nil fields of p and returns the stored task.
func (r *TasksRepo) Update(ctx context.Context, id string, p task.UpdateParams) (task.Task, error) {
	var affected int64
	err := r.obs.ObserveDB("tasks.update", func() error {
		tag, err := r.db.Exec(ctx,
			`UPDATE tasks SET
				title = COALESCE($2, title),
				description = COALESCE($3, description),
				status = COALESCE($4, status),
				priority = COALESCE($5, priority),
				assigned_to = COALESCE($6, assigned_to),
				due_date = COALESCE($7, due_date),
				updated_at = NOW()
			WHERE id = $1`,
			id, p.Title, p.Description, statusArg(p.Status), priorityArg(p.Priority), p.AssignedTo, p.DueDate,
		)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return task.Task{}, user.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return task.Task{}, task.ErrNotFound
	}

	return r.GetByID(ctx, id)
}

func (r *TasksRepo) Delete(ctx context.Context, id string) error {
	var affected int64
	err := r.obs.ObserveDB("tasks.delete", func() error {
		tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return task.ErrNotFound
	}
	return nil
}

func statusArg(s *task.Status) *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

func priorityArg(p *task.Priority) *string {
	if p == nil {
		return nil
	}
	v := string(*p)
	return &v
}
