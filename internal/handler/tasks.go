package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

func parseDueDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, errors.New("截止日期格式错误")
	}
	return &d, nil
}

// checkAssignee 确认被分配的员工属于同一个组织
func (h *Handler) checkAssignee(ctx context.Context, actor *domain.Actor, assigneeID int64) error {
	user, err := h.repository.GetUserByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if user.OrganizationID != actor.OrganizationID {
		return domain.ErrNotFound
	}
	return nil
}

// CreateTask 员工只能创建不分配或分配给自己的任务
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	var req struct {
		Title       string  `json:"title" validate:"required,max=200"`
		Description string  `json:"description"`
		AssigneeID  *int64  `json:"assigneeID"`
		DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	dueDate, err := parseDueDate(req.DueDate)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.AssigneeID != nil {
		if !actor.IsManager() && *req.AssigneeID != actor.UserID {
			h.errorResponse(w, r, "权限不足")
			return
		}
		if err := h.checkAssignee(r.Context(), actor, *req.AssigneeID); err != nil {
			h.domainError(w, r, err, "被分配的员工不存在")
			return
		}
	}

	task := &domain.Task{
		OrganizationID: actor.OrganizationID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         domain.TaskStatusTodo,
		AssigneeID:     req.AssigneeID,
		DueDate:        dueDate,
	}

	if err := h.repository.CreateTask(r.Context(), task); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建任务成功", task)
}

func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	var date *time.Time
	if v := r.URL.Query().Get("date"); v != "" {
		d, err := parseDueDate(&v)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		date = d
	}

	tasks, err := h.repository.GetTasksByOrganization(r.Context(), actor.OrganizationID, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取任务列表成功", tasks)
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)
	h.successResponse(w, r, "获取任务成功", task)
}

// UpdateTask 员工只能修改分配给自己的任务的状态，其余字段只有管理员可以修改
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	task := r.Context().Value(TaskCtx).(*domain.Task)

	var req struct {
		Title       *string `json:"title" validate:"omitempty,max=200"`
		Description *string `json:"description"`
		Status      *string `json:"status" validate:"omitempty,oneof=todo doing done"`
		AssigneeID  *int64  `json:"assigneeID"` // 0 表示取消分配
		DueDate     *string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if !actor.IsManager() {
		onlyStatus := req.Title == nil && req.Description == nil && req.AssigneeID == nil && req.DueDate == nil
		assignedToMe := task.AssigneeID != nil && *task.AssigneeID == actor.UserID
		if !onlyStatus || !assignedToMe {
			h.errorResponse(w, r, "权限不足")
			return
		}
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = domain.TaskStatus(*req.Status)
	}
	if req.AssigneeID != nil {
		if *req.AssigneeID == 0 {
			task.AssigneeID = nil
		} else {
			if err := h.checkAssignee(r.Context(), actor, *req.AssigneeID); err != nil {
				h.domainError(w, r, err, "被分配的员工不存在")
				return
			}
			task.AssigneeID = req.AssigneeID
		}
	}
	if req.DueDate != nil {
		dueDate, err := parseDueDate(req.DueDate)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		task.DueDate = dueDate
	}

	if err := h.repository.UpdateTask(r.Context(), task); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "任务已被修改，请刷新后重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新任务成功", task)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	task := r.Context().Value(TaskCtx).(*domain.Task)

	if err := h.repository.DeleteTask(r.Context(), task.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除任务成功", nil)
}
