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

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	SessionID string `json:"session_id"`                // 会话ID（可选，为空时创建新会话）
	Message   string `json:"message" binding:"required"` // 消息内容（必填）
}

// MessageInfo 消息信息（用于响应）
type MessageInfo struct {
	ID             string `json:"id"`                         // 消息ID
	SessionID      string `json:"session_id"`                 // 会话ID
	Role           string `json:"role"`                       // 角色：user/assistant
	Content        string `json:"content"`                    // 消息内容
	ResponseTimeMs *int   `json:"response_time_ms,omitempty"` // 响应耗时（毫秒）
	CreatedAt      string `json:"created_at"`                 // 创建时间
}

// SendMessageResponseData 发送消息响应数据
type SendMessageResponseData struct {
	SessionID        string      `json:"session_id"`        // 会话ID
	SessionTitle     string      `json:"session_title"`     // 会话标题
	UserMessage      MessageInfo `json:"user_message"`      // 用户消息
	AssistantMessage MessageInfo `json:"assistant_message"` // AI回复
}

// toMessageInfo 将Message实体转换为MessageInfo
func toMessageInfo(m *chat.Message) MessageInfo {
	return MessageInfo{
		ID:             m.ID,
		SessionID:      m.SessionID,
		Role:           string(m.Role),
		Content:        m.Content,
		ResponseTimeMs: m.ResponseTimeMs,
		CreatedAt:      m.CreatedAt.Format(time.RFC3339),
	}
}

// Send 发送消息
// @Summary      发送消息
// @Description  发送消息并获取AI回复，session_id为空时自动创建新会话
// @Tags         聊天
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      SendMessageRequest  true  "发送消息请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      500     {object}  ErrorResponse
// @Router       /api/v1/chat/send [post]
func (h *Handler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	resp, err := h.chatService.SendMessage(c.Request.Context(), userID, req.SessionID, req.Message)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		if errors.Is(err, service.ErrEmptyMessage) {
			code = http.StatusBadRequest
			errorCode = 40003
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": SendMessageResponseData{
			SessionID:        resp.Session.ID,
			SessionTitle:     resp.Session.Title,
			UserMessage:      toMessageInfo(resp.UserMessage),
			AssistantMessage: toMessageInfo(resp.AssistantMessage),
		},
	})
}
