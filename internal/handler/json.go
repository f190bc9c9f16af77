package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "requestID", requestIDFromContext(r.Context()), "method", r.Method, "path", r.URL.Path, "error", err)
}

func (h *Handler) readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
		http.Error(w, "服务器内部错误", http.StatusInternalServerError)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		h.errorResponse(w, r, err.Error())
		return
	}

	h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}

func (h *Handler) tooManyRequests(w http.ResponseWriter, r *http.Request, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.limiter.Limit()))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(retryAfter))

	h.writeJSON(w, r, http.StatusTooManyRequests, Response{
		Success: false,
		Message: "请求过于频繁，请稍后再试",
		Data:    map[string]int{"retryAfter": retryAfter},
	})
}

// domainError 把核心逻辑返回的错误转换为响应，notFoundMsg 用于区分不同的资源
func (h *Handler) domainError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	var limited *domain.RateLimitedError
	switch {
	case errors.Is(err, domain.ErrForbidden):
		h.errorResponse(w, r, "权限不足")
	case errors.Is(err, domain.ErrNotFound):
		h.errorResponse(w, r, notFoundMsg)
	case errors.Is(err, domain.ErrInvalidWindow):
		h.errorResponse(w, r, "时间段无效，开始时间必须早于结束时间")
	case errors.As(err, &limited):
		h.tooManyRequests(w, r, limited.RetryAfter)
	default:
		h.internalServerError(w, r, err)
	}
}
