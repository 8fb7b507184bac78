package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kindbite/internal/pkg/ctxutil"
	"kindbite/internal/service"
)

// FeedbackRequest 评价请求
type FeedbackRequest struct {
	MessageID string `json:"message_id" binding:"required"`     // 被评价的消息ID（必填）
	Rating    int    `json:"rating" binding:"required,min=1,max=5"` // 评分1-5（必填）
	Comment   string `json:"comment"`                           // 评论（可选）
}

// SubmitFeedback 提交评价
// @Summary      提交评价
// @Description  对AI回复提交评分和评论，重复提交时覆盖原评价
// @Tags         聊天
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      FeedbackRequest  true  "评价请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /api/v1/chat/feedback [post]
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
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

	err := h.chatService.SubmitFeedback(c.Request.Context(), userID, req.MessageID, req.Rating, req.Comment)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrMessageNotFound):
			code = http.StatusNotFound
			errorCode = 40403
		case errors.Is(err, service.ErrInvalidRating), errors.Is(err, service.ErrNotAssistantMessage):
			code = http.StatusBadRequest
			errorCode = 40004
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "评价已提交",
	})
}
