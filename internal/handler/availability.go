package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/utils"
)

func (h *Handler) GetMyAvailability(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	windows, err := h.repository.GetAvailabilityWindowsByUserID(r.Context(), actor.UserID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取空闲时间成功", windows)
}

func (h *Handler) GetUserAvailability(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	windows, err := h.repository.GetAvailabilityWindowsByUserID(r.Context(), user.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取空闲时间成功", windows)
}

func (h *Handler) CreateAvailabilityWindow(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Weekday   *int32 `json:"weekday" validate:"required,min=0,max=6"`
		StartTime string `json:"startTime" validate:"required"`
		EndTime   string `json:"endTime" validate:"required"`
		Location  string `json:"location" validate:"max=100"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	window := &domain.AvailabilityWindow{
		UserID:    user.ID,
		Weekday:   *req.Weekday,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
	}

	if err := utils.ValidateWindowTime(window); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateAvailabilityWindow(r.Context(), window); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "添加空闲时间成功", window)
}

func (h *Handler) DeleteAvailabilityWindow(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	windowID, err := strconv.ParseInt(chi.URLParam(r, "windowID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "空闲时间ID无效")
		return
	}

	window, err := h.repository.GetAvailabilityWindowByID(r.Context(), windowID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "空闲时间不存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if window.UserID != user.ID {
		h.errorResponse(w, r, "空闲时间不存在")
		return
	}

	if err := h.repository.DeleteAvailabilityWindow(r.Context(), window.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除空闲时间成功", nil)
}
