package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/utils"
)

const entryNotFoundMsg = "记录不存在"

func (h *Handler) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	kind := r.Context().Value(EntryKindCtx).(domain.EntryKind)

	var req struct {
		Date            string           `json:"date" validate:"required,datetime=2006-01-02"`
		DurationMinutes *int32           `json:"durationMinutes"`
		DistanceKm      *decimal.Decimal `json:"distanceKm"`
		Amount          *decimal.Decimal `json:"amount"`
		Description     string           `json:"description" validate:"max=500"`
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

	entry := &domain.ApprovableEntry{
		Kind:            kind,
		Date:            date,
		DurationMinutes: req.DurationMinutes,
		DistanceKm:      req.DistanceKm,
		Amount:          req.Amount,
		Description:     req.Description,
	}

	if err := utils.ValidateEntryQuantity(entry); err != nil {
		h.badRequest(w, r, err)
		return
	}
	// 只保留与记录类型对应的数量字段
	entry.SetQuantity(entry.Quantity())

	if err := h.approval.Submit(r.Context(), actor, entry); err != nil {
		h.domainError(w, r, err, entryNotFoundMsg)
		return
	}

	h.successResponse(w, r, "提交记录成功", entry)
}

// entryQuery 解析列表和汇总接口共用的 approved、userId 查询参数
func (h *Handler) entryQuery(r *http.Request) (userID *int64, approved *bool, err error) {
	query := r.URL.Query()

	if v := query.Get("userId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, nil, errors.New("用户ID无效")
		}
		userID = &id
	}

	if v := query.Get("approved"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, nil, errors.New("审批状态无效")
		}
		approved = &b
	}

	return userID, approved, nil
}

func (h *Handler) GetEntries(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	kind := r.Context().Value(EntryKindCtx).(domain.EntryKind)

	userID, approved, err := h.entryQuery(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	entries, err := h.approval.List(r.Context(), actor, kind, userID, approved)
	if err != nil {
		h.domainError(w, r, err, entryNotFoundMsg)
		return
	}

	h.successResponse(w, r, "获取记录成功", entries)
}

func (h *Handler) GetEntryTotals(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	kind := r.Context().Value(EntryKindCtx).(domain.EntryKind)

	userID, approved, err := h.entryQuery(r)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	totals, err := h.approval.Totals(r.Context(), actor, kind, userID, approved)
	if err != nil {
		h.domainError(w, r, err, entryNotFoundMsg)
		return
	}

	h.successResponse(w, r, "获取汇总成功", totals)
}

func (h *Handler) SetEntryApproval(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	kind := r.Context().Value(EntryKindCtx).(domain.EntryKind)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	var req struct {
		Approve *bool `json:"approve" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	entry, err := h.approval.SetApproval(r.Context(), actor, kind, id, *req.Approve)
	if err != nil {
		h.domainError(w, r, err, entryNotFoundMsg)
		return
	}

	msg := "已撤销审批"
	if entry.Approved {
		msg = "审批通过"
	}
	h.successResponse(w, r, msg, entry)
}

func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())
	kind := r.Context().Value(EntryKindCtx).(domain.EntryKind)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	if err := h.approval.Delete(r.Context(), actor, kind, id); err != nil {
		h.domainError(w, r, err, entryNotFoundMsg)
		return
	}

	h.successResponse(w, r, "删除记录成功", nil)
}
