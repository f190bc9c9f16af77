package domain

import (
	"time"
)

type Role string

const (
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "MEDEWERKER"
)

type User struct {
	ID             int64     `json:"id"`
	OrganizationID int64     `json:"organizationID"`
	Username       string    `json:"username"`
	PasswordHash   string    `json:"-"`
	FullName       string    `json:"fullName"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	Version        int32     `json:"-"`
}

// Actor 是当前请求的操作者，由认证中间件根据令牌构造，核心逻辑不会再去校验凭证
type Actor struct {
	UserID         int64
	Role           Role
	OrganizationID int64
}

func (a *Actor) IsManager() bool {
	return a.Role == RoleManager
}
