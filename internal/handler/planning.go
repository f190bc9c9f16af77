package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/planner"
)

// PlanningStore 提供推荐人选需要的数据，由 repository.Repository 实现
type PlanningStore interface {
	GetActiveUsersByOrganization(ctx context.Context, organizationID int64) ([]*domain.User, error)
	GetAvailabilityWindowsByOrganizationAndWeekday(ctx context.Context, organizationID int64, weekday int32) ([]*domain.AvailabilityWindow, error)
	CountTasksByAssigneeOnDate(ctx context.Context, organizationID int64, date time.Time) (map[int64]int, error)
}

func (h *Handler) SuggestEmployees(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	var req struct {
		Date             string  `json:"date" validate:"required,datetime=2006-01-02"`
		StartTime        string  `json:"startTime" validate:"required"`
		EndTime          string  `json:"endTime" validate:"required"`
		PreferredUserIDs []int64 `json:"preferredUserIds"`
		Location         string  `json:"location"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		h.badRequest(w, r, errors.New("日期格式错误"))
		return
	}

	planningRequest := &domain.PlanningRequest{
		Date:             date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		PreferredUserIDs: req.PreferredUserIDs,
		Location:         req.Location,
	}

	employees, err := h.planning.GetActiveUsersByOrganization(r.Context(), actor.OrganizationID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	windows, err := h.planning.GetAvailabilityWindowsByOrganizationAndWeekday(r.Context(), actor.OrganizationID, int32(date.Weekday()))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	counts, err := h.planning.CountTasksByAssigneeOnDate(r.Context(), actor.OrganizationID, date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	suggestions, err := planner.Suggest(planningRequest, employees, windows, counts)
	if err != nil {
		h.domainError(w, r, err, "")
		return
	}

	h.successResponse(w, r, "获取推荐人选成功", suggestions)
}
