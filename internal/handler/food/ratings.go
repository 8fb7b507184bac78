package food

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kindbite/internal/model/food"
	"kindbite/internal/pkg/ctxutil"
	"kindbite/internal/service"
)

// RateRequest 评价请求
type RateRequest struct {
	Rating           int    `json:"rating" binding:"required,min=1,max=5"` // 总评分1-5（必填）
	Review           string `json:"review"`                                // 评价文字
	FoodQuality      int    `json:"food_quality" binding:"omitempty,min=1,max=5"`      // 食物质量
	PickupExperience int    `json:"pickup_experience" binding:"omitempty,min=1,max=5"` // 取餐体验
	ValueForMoney    int    `json:"value_for_money" binding:"omitempty,min=1,max=5"`   // 性价比
}

// RatingInfo 评价信息（用于响应）
type RatingInfo struct {
	ID               string `json:"id"`
	ListingID        string `json:"listing_id"`
	ReviewerID       string `json:"reviewer_id"`
	Rating           int    `json:"rating"`
	Review           string `json:"review,omitempty"`
	FoodQuality      int    `json:"food_quality,omitempty"`
	PickupExperience int    `json:"pickup_experience,omitempty"`
	ValueForMoney    int    `json:"value_for_money,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// toRatingInfo 将Rating实体转换为RatingInfo
func toRatingInfo(r *food.Rating) RatingInfo {
	return RatingInfo{
		ID:               r.ID,
		ListingID:        r.ListingID,
		ReviewerID:       r.ReviewerID,
		Rating:           r.Rating,
		Review:           r.Review,
		FoodQuality:      r.FoodQuality,
		PickupExperience: r.PickupExperience,
		ValueForMoney:    r.ValueForMoney,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
}

// RateListing 评价发布
// @Summary      评价发布
// @Description  对已完成取餐的发布提交评价，每个用户只能评价一次
// @Tags         食物
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string       true  "发布ID"
// @Param        request  body      RateRequest  true  "评价请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Router       /api/v1/food/listings/{id}/ratings [post]
func (h *Handler) RateListing(c *gin.Context) {
	var req RateRequest
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

	rating, err := h.foodService.RateListing(c.Request.Context(), userID, c.Param("id"), service.RateListingParams{
		Rating:           req.Rating,
		Review:           req.Review,
		FoodQuality:      req.FoodQuality,
		PickupExperience: req.PickupExperience,
		ValueForMoney:    req.ValueForMoney,
	})
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrListingNotFound):
			code = http.StatusNotFound
			errorCode = 40404
		case errors.Is(err, service.ErrInvalidRating), errors.Is(err, service.ErrRatingNotAllowed):
			code = http.StatusBadRequest
			errorCode = 40006
		case errors.Is(err, service.ErrRatingExists):
			code = http.StatusConflict
			errorCode = 40905
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "评价成功",
		"data":    toRatingInfo(rating),
	})
}

// ListRatings 评价列表
// @Summary      评价列表
// @Description  查询发布的评价列表，按时间倒序
// @Tags         食物
// @Produce      json
// @Param        id   path      string  true  "发布ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/food/listings/{id}/ratings [get]
func (h *Handler) ListRatings(c *gin.Context) {
	ratings, err := h.foodService.ListRatings(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询评价失败",
		})
		return
	}

	infos := make([]RatingInfo, 0, len(ratings))
	for _, r := range ratings {
		infos = append(infos, toRatingInfo(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"ratings": infos},
	})
}
