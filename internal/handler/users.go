package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllUserInfo(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	users, err := h.repository.GetUsersByOrganization(r.Context(), actor.OrganizationID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

// userConstraintError 处理用户表的唯一约束冲突，返回 false 表示不是约束冲突
func (h *Handler) userConstraintError(w http.ResponseWriter, r *http.Request, err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.ConstraintName {
	case "users_username_key":
		h.badRequest(w, r, errors.New("用户名已存在"))
	case "users_email_key":
		h.badRequest(w, r, errors.New("邮箱已存在"))
	default:
		return false
	}
	return true
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	actor, _ := actorFromContext(r.Context())

	var req struct {
		Username string `json:"username" validate:"required"`
		FullName string `json:"fullName" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Role     string `json:"role" validate:"required,oneof=MANAGER MEDEWERKER"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 生成随机密码，通过邮件告知新用户
	password := utils.GenerateRandomPassword(h.config.NewUser.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 新用户总是属于创建者所在的组织
	user := &domain.User{
		OrganizationID: actor.OrganizationID,
		Username:       req.Username,
		PasswordHash:   string(hashedPassword),
		FullName:       req.FullName,
		Email:          req.Email,
		Role:           domain.Role(req.Role),
	}

	if err := h.repository.CreateUser(r.Context(), user); err != nil {
		if !h.userConstraintError(w, r, err) {
			h.internalServerError(w, r, err)
		}
		return
	}

	mailMessage := domain.MailMessage{
		Type: domain.MailTypeCreateUser,
		To:   user.Email,
		Data: domain.CreateUserMailData{
			FullName: req.FullName,
			Username: req.Username,
			Password: password,
		},
	}

	if err := h.mail.Publish(r.Context(), mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "用户创建成功", user)
}

func (h *Handler) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取用户信息成功", user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName *string `json:"fullName"`
		Email    *string `json:"email" validate:"omitempty,email"`
		Role     *string `json:"role" validate:"omitempty,oneof=MANAGER MEDEWERKER"`
		IsActive *bool   `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = domain.Role(*req.Role)
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		switch {
		case h.userConstraintError(w, r, err):
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新用户信息失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新用户信息成功", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	if err := h.repository.DeleteUser(r.Context(), user.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除用户成功", nil)
}

func (h *Handler) UpdateUserPassword(w http.ResponseWriter, r *http.Request) {
	user := r.Context().Value(UserInfoCtx).(*domain.User)

	var req struct {
		Password string `json:"password" validate:"required,min=8"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	user.PasswordHash = string(hashedPassword)
	if err := h.repository.UpdateUser(r.Context(), user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "修改密码成功", nil)
}
