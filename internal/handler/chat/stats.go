package chat

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kindbite/internal/pkg/ctxutil"
)

// GetStats 聊天统计
// @Summary      聊天统计
// @Description  查询当前用户的会话、消息、响应耗时、评价统计
// @Tags         聊天
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /api/v1/chat/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	stats, err := h.chatService.GetStats(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询统计失败",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    stats,
	})
}
