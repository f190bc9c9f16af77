package repository

import (
	"context"
	"time"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

const taskColumns = `id, organization_id, title, description, status, assignee_id, due_date, created_at, version`

func scanTask(row interface{ Scan(...any) error }, task *domain.Task) error {
	dst := []any{&task.ID, &task.OrganizationID, &task.Title, &task.Description, &task.Status, &task.AssigneeID, &task.DueDate, &task.CreatedAt, &task.Version}
	return row.Scan(dst...)
}

func (r *Repository) CreateTask(ctx context.Context, task *domain.Task) error {
	query := `
		INSERT INTO tasks (organization_id, title, description, status, assignee_id, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{task.OrganizationID, task.Title, task.Description, task.Status, task.AssigneeID, task.DueDate}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetTaskByID(ctx context.Context, id int64) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	task := &domain.Task{}
	if err := scanTask(r.dbpool.QueryRowContext(ctx, query, id), task); err != nil {
		return nil, err
	}

	return task, nil
}

// GetTasksByOrganization 获取组织的任务，date 不为空时只返回当天到期的任务
func (r *Repository) GetTasksByOrganization(ctx context.Context, organizationID int64, date *time.Time) ([]*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE organization_id = $1`
	args := []any{organizationID}
	if date != nil {
		query += ` AND due_date = $2`
		args = append(args, date.Format(time.DateOnly))
	}
	query += ` ORDER BY id`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task := &domain.Task{}
		if err := scanTask(rows, task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *Repository) UpdateTask(ctx context.Context, task *domain.Task) error {
	query := `
		UPDATE tasks
		SET
			title = $1,
			description = $2,
			status = $3,
			assignee_id = $4,
			due_date = $5,
			version = version + 1
		WHERE id = $6 AND version = $7
		RETURNING version
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	args := []any{task.Title, task.Description, task.Status, task.AssigneeID, task.DueDate, task.ID, task.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&task.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return err
	}

	return nil
}

// CountTasksByAssigneeOnDate 统计组织内每个员工在某一天到期的任务数，没有任务的员工不会出现在结果中
func (r *Repository) CountTasksByAssigneeOnDate(ctx context.Context, organizationID int64, date time.Time) (map[int64]int, error) {
	query := `
		SELECT assignee_id, COUNT(*)
		FROM tasks
		WHERE organization_id = $1 AND assignee_id IS NOT NULL AND due_date = $2
		GROUP BY assignee_id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, organizationID, date.Format(time.DateOnly))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var assigneeID int64
		var count int
		if err := rows.Scan(&assigneeID, &count); err != nil {
			return nil, err
		}
		counts[assigneeID] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}
