package auth

import (
	"time"

	"kindbite/internal/model/auth"
	httputil "kindbite/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// UserInfo 用户信息（用于响应，所有API共用）
type UserInfo struct {
	ID           string `json:"id"`                      // 用户ID
	Email        string `json:"email"`                   // 邮箱
	FirstName    string `json:"first_name,omitempty"`    // 名
	LastName     string `json:"last_name,omitempty"`     // 姓
	Phone        string `json:"phone,omitempty"`         // 电话
	Location     string `json:"location,omitempty"`      // 所在地
	BusinessName string `json:"business_name,omitempty"` // 商家名称
	Role         string `json:"role"`                    // 角色
	KindCoins    uint64 `json:"kind_coins"`              // KindCoins余额
	IsVerified   bool   `json:"is_verified"`             // 是否已认证
	LastLoginAt  string `json:"last_login_at,omitempty"` // 最后登录时间
	CreatedAt    string `json:"created_at,omitempty"`    // 创建时间
}

// toUserInfo 将User实体转换为UserInfo（所有API共用）
func toUserInfo(user *auth.User) UserInfo {
	info := UserInfo{
		ID:           user.ID,
		Email:        user.Email,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		Phone:        user.Phone,
		Location:     user.Location,
		BusinessName: user.BusinessName,
		Role:         string(user.Role),
		KindCoins:    user.KindCoins,
		IsVerified:   user.IsVerified,
	}

	if user.LastLoginAt != nil {
		info.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	info.CreatedAt = user.CreatedAt.Format(time.RFC3339)

	return info
}
