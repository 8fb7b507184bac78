package chat

import (
	httputil "kindbite/internal/pkg/http"
	"kindbite/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// Handler 聊天处理器
type Handler struct {
	chatService      *service.ChatService
	knowledgeService *service.KnowledgeService
}

// NewHandler 创建聊天处理器
func NewHandler(chatService *service.ChatService, knowledgeService *service.KnowledgeService) *Handler {
	return &Handler{
		chatService:      chatService,
		knowledgeService: knowledgeService,
	}
}
