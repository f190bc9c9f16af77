package domain

import "time"

type TaskStatus string

const (
	TaskStatusTodo  TaskStatus = "todo"
	TaskStatusDoing TaskStatus = "doing"
	TaskStatusDone  TaskStatus = "done"
)

type Task struct {
	ID             int64      `json:"id"`
	OrganizationID int64      `json:"organizationID"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         TaskStatus `json:"status"`
	AssigneeID     *int64     `json:"assigneeID"` // 为空表示还没有分配
	DueDate        *time.Time `json:"dueDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	Version        int32      `json:"-"`
}
