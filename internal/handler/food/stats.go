package food

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPlatformStats 平台统计
// @Summary      平台统计
// @Description  查询发布数、预订数、完成取餐数和CO2减排总量
// @Tags         食物
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/food/stats [get]
func (h *Handler) GetPlatformStats(c *gin.Context) {
	stats, err := h.foodService.GetPlatformStats(c.Request.Context())
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
