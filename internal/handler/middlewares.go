package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/taskee-dev/taskee/backend/internal/domain"
)

const tokenCookieName = "__taskee_token"

type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *ResponseWriter) WriteHeader(statusCode int) {
	rw.StatusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		ctx := context.WithValue(r.Context(), RequestIDCtx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &ResponseWriter{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		duration := time.Since(start)
		slog.Info("已处理请求", "requestID", requestIDFromContext(r.Context()), "status", rw.StatusCode, "ip", r.RemoteAddr, "method", r.Method, "path", r.URL.Path, "duration", duration)
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.internalServerError(w, r, fmt.Errorf("panic: %v", err))
				stackTrace := string(debug.Stack())
				fmt.Print(stackTrace) // 这里如果用 slog 的话会很乱
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 从 cookie 中获取 token
		cookie, err := r.Cookie(tokenCookieName)
		if err != nil {
			switch {
			case errors.Is(err, http.ErrNoCookie):
				h.errorResponse(w, r, "用户未登录")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		// 验证 token
		claims := &AuthClaims{}
		_, err = jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(h.config.JWT.Secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		userID, err := strconv.ParseInt(claims.Subject, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "无效的令牌")
			return
		}

		// 令牌中的身份信息就是后续所有操作的操作者
		actor := &domain.Actor{
			UserID:         userID,
			Role:           domain.Role(claims.Role),
			OrganizationID: claims.OrganizationID,
		}

		ctx := context.WithValue(r.Context(), ActorCtx, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) myInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := actorFromContext(r.Context())

		myInfo, err := h.repository.GetUserByID(r.Context(), actor.UserID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "个人信息不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), MyInfoCtx, myInfo)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) RequiredRole(roles []domain.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := actorFromContext(r.Context())
			if !ok || !slices.Contains(roles, actor.Role) {
				h.errorResponse(w, r, "权限不足")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *Handler) userInfo(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userIDParam := chi.URLParam(r, "id")
		userID, err := strconv.ParseInt(userIDParam, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "用户ID无效")
			return
		}

		user, err := h.repository.GetUserByID(r.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "用户不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		// 其他组织的用户对当前操作者来说等同于不存在
		actor, _ := actorFromContext(r.Context())
		if user.OrganizationID != actor.OrganizationID {
			h.errorResponse(w, r, "用户不存在")
			return
		}

		ctx := context.WithValue(r.Context(), UserInfoCtx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ownerOrManager 只允许用户本人或者同组织的管理员继续操作，必须放在 userInfo 之后
func (h *Handler) ownerOrManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, _ := actorFromContext(r.Context())
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if actor.UserID != user.ID && !actor.IsManager() {
			h.errorResponse(w, r, "权限不足")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) preventOperateInitialAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := r.Context().Value(UserInfoCtx).(*domain.User)
		if user.Username == h.config.InitialAdmin.Username {
			h.errorResponse(w, r, "禁止操作初始管理员")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) entryKind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind := domain.EntryKind(chi.URLParam(r, "kind"))
		if !kind.Valid() {
			h.errorResponse(w, r, "无效的记录类型")
			return
		}

		ctx := context.WithValue(r.Context(), EntryKindCtx, kind)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) task(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		taskID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			h.errorResponse(w, r, "任务ID无效")
			return
		}

		task, err := h.repository.GetTaskByID(r.Context(), taskID)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				h.errorResponse(w, r, "任务不存在")
			default:
				h.internalServerError(w, r, err)
			}
			return
		}

		actor, _ := actorFromContext(r.Context())
		if task.OrganizationID != actor.OrganizationID {
			h.errorResponse(w, r, "任务不存在")
			return
		}

		ctx := context.WithValue(r.Context(), TaskCtx, task)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// rateLimit 对登录用户按 user:<组织>:<用户> 限流，未登录时按客户端 IP 限流
func (h *Handler) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rateLimitKey(r)

		if err := h.limiter.Allow(r.Context(), key); err != nil {
			var limited *domain.RateLimitedError
			if !errors.As(err, &limited) {
				h.internalServerError(w, r, err)
				return
			}

			slog.Warn("请求被限流",
				"key", key,
				"path", r.URL.Path,
				"method", r.Method,
				"limit", h.limiter.Limit(),
				"windowSec", int(h.limiter.Window().Seconds()),
			)
			h.tooManyRequests(w, r, limited.RetryAfter)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.limiter.Limit()))
		next.ServeHTTP(w, r)
	})
}

func rateLimitKey(r *http.Request) string {
	if actor, ok := actorFromContext(r.Context()); ok {
		return fmt.Sprintf("user:%d:%d", actor.OrganizationID, actor.UserID)
	}
	return "ip:" + clientIP(r)
}

func clientIP(r *http.Request) string {
	if fwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if value := strings.TrimSpace(first); value != "" {
			return value
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}
