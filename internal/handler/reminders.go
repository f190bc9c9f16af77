package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

func (h *Handler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	var req struct {
		Title    string    `json:"title" validate:"required,max=200"`
		RemindAt time.Time `json:"remindAt" validate:"required"`
		TaskID   *int64    `json:"taskID"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.RemindAt.Before(time.Now()) {
		h.errorResponse(w, r, "提醒时间不能早于当前时间")
		return
	}

	// 关联的任务必须属于同一个组织
	if req.TaskID != nil {
		task, err := h.repository.GetTaskByID(r.Context(), *req.TaskID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "任务不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}
		if task.OrganizationID != actor.OrganizationID {
			h.errorResponse(w, r, "任务不存在")
			return
		}
	}

	reminder := &domain.Reminder{
		UserID:   actor.UserID,
		TaskID:   req.TaskID,
		Title:    req.Title,
		RemindAt: req.RemindAt,
	}

	if err := h.repository.CreateReminder(r.Context(), reminder); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建提醒成功", reminder)
}

func (h *Handler) GetMyReminders(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	reminders, err := h.repository.GetRemindersByUserID(r.Context(), actor.UserID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取提醒列表成功", reminders)
}

func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "提醒ID无效")
		return
	}

	deleted, err := h.repository.DeleteReminder(r.Context(), id, actor.UserID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !deleted {
		h.errorResponse(w, r, "提醒不存在")
		return
	}

	h.successResponse(w, r, "删除提醒成功", nil)
}
