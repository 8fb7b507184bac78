package chat

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kindbite/internal/model/chat"
	"kindbite/internal/pkg/ctxutil"
	"kindbite/internal/service"
)

// SessionInfo 会话信息（用于响应）
type SessionInfo struct {
	ID        string `json:"id"`         // 会话ID
	Title     string `json:"title"`      // 会话标题
	CreatedAt string `json:"created_at"` // 创建时间
	UpdatedAt string `json:"updated_at"` // 最近更新时间
}

// toSessionInfo 将Session实体转换为SessionInfo
func toSessionInfo(s *chat.Session) SessionInfo {
	return SessionInfo{
		ID:        s.ID,
		Title:     s.Title,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
	}
}

// ListSessions 会话列表
// @Summary      会话列表
// @Description  查询当前用户的聊天会话列表，按最近更新时间倒序
// @Tags         聊天
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/chat/sessions [get]
func (h *Handler) ListSessions(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	sessions, err := h.chatService.ListSessions(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询会话失败",
		})
		return
	}

	infos := make([]SessionInfo, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, toSessionInfo(s))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"sessions": infos},
	})
}

// CreateSession 创建会话
// @Summary      创建会话
// @Description  创建一个新的聊天会话
// @Tags         聊天
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/chat/sessions [post]
func (h *Handler) CreateSession(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	session, err := h.chatService.CreateSession(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "创建会话失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toSessionInfo(session),
	})
}

// GetSession 会话详情
// @Summary      会话详情
// @Description  查询会话详情，包含全部消息
// @Tags         聊天
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/chat/sessions/{id} [get]
func (h *Handler) GetSession(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	detail, err := h.chatService.GetSession(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		if errors.Is(err, service.ErrSessionNotFound) {
			code = http.StatusNotFound
			errorCode = 40402
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	messages := make([]MessageInfo, 0, len(detail.Messages))
	for _, m := range detail.Messages {
		messages = append(messages, toMessageInfo(m))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"session":  toSessionInfo(detail.Session),
			"messages": messages,
		},
	})
}

// DeleteSession 删除会话
// @Summary      删除会话
// @Description  删除会话（软删除，消息保留）
// @Tags         聊天
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "会话ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/chat/sessions/{id} [delete]
func (h *Handler) DeleteSession(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	if err := h.chatService.DeleteSession(c.Request.Context(), userID, c.Param("id")); err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		if errors.Is(err, service.ErrSessionNotFound) {
			code = http.StatusNotFound
			errorCode = 40402
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "会话已删除",
	})
}
