package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kindbite/internal/model/auth"
	"kindbite/internal/service"
)

// RegisterRequest 用户注册请求
type RegisterRequest struct {
	Email        string `json:"email" binding:"required,email"`   // 邮箱（必填，登录凭证）
	Password     string `json:"password" binding:"required,min=8"` // 密码（必填，至少8位）
	FirstName    string `json:"first_name"`                        // 名
	LastName     string `json:"last_name"`                         // 姓
	Phone        string `json:"phone"`                             // 电话
	Location     string `json:"location"`                          // 所在地
	BusinessName string `json:"business_name"`                     // 商家名称（供餐方）
	Role         string `json:"role" binding:"required"`           // 角色
}

// RegisterResponseData 注册响应数据
type RegisterResponseData struct {
	UserID string `json:"user_id"` // 用户ID
	Email  string `json:"email"`   // 邮箱
	Role   string `json:"role"`    // 角色
}

// Register 用户注册
// @Summary      用户注册
// @Description  注册新用户，邮箱作为登录凭证
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "注册请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /api/v1/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	resp, err := h.authService.Register(ctx, service.RegisterParams{
		Email:        req.Email,
		Password:     req.Password,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Phone:        req.Phone,
		Location:     req.Location,
		BusinessName: req.BusinessName,
		Role:         auth.UserRole(req.Role),
	})
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrEmailAlreadyExists):
			code = http.StatusConflict
			errorCode = 40901
		case errors.Is(err, service.ErrInvalidRole):
			code = http.StatusBadRequest
			errorCode = 40002
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "注册成功",
		"data": RegisterResponseData{
			UserID: resp.UserID,
			Email:  resp.Email,
			Role:   resp.Role,
		},
	})
}
