package food

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"kindbite/internal/pkg/ctxutil"
	"kindbite/internal/service"
)

// CreateListingRequest 创建发布请求
type CreateListingRequest struct {
	Name            string   `json:"name" binding:"required"`     // 食物名称（必填）
	Description     string   `json:"description"`                 // 描述
	OriginalPrice   float64  `json:"original_price"`              // 原价
	DiscountedPrice float64  `json:"discounted_price"`            // 折后价（0为免费）
	Quantity        int      `json:"quantity" binding:"required,min=1"` // 数量（必填）
	PickupDate      string   `json:"pickup_date" binding:"required"`    // 取餐日期（必填）
	PickupStart     string   `json:"pickup_start" binding:"required"`   // 取餐窗口开始（必填）
	PickupEnd       string   `json:"pickup_end" binding:"required"`     // 取餐窗口结束（必填）
	Location        string   `json:"location" binding:"required"`       // 取餐地址（必填）
	Latitude        *float64 `json:"latitude"`                    // 纬度
	Longitude       *float64 `json:"longitude"`                   // 经度
	DietaryInfo     []string `json:"dietary_info"`                // 饮食信息
	ImageEmoji      string   `json:"image_emoji"`                 // 表情符号展示
	CO2Saved        float64  `json:"co2_saved"`                   // 预估CO2减排量（kg）
}

// UpdateListingRequest 更新发布请求，缺省字段不更新
type UpdateListingRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	OriginalPrice   *float64 `json:"original_price"`
	DiscountedPrice *float64 `json:"discounted_price"`
	PickupDate      *string  `json:"pickup_date"`
	PickupStart     *string  `json:"pickup_start"`
	PickupEnd       *string  `json:"pickup_end"`
	Location        *string  `json:"location"`
	DietaryInfo     []string `json:"dietary_info"`
	ImageEmoji      *string  `json:"image_emoji"`
}

// CreateListing 创建发布
// @Summary      创建食物发布
// @Description  供餐方发布一批余量食物
// @Tags         食物
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateListingRequest  true  "创建发布请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Router       /api/v1/food/listings [post]
func (h *Handler) CreateListing(c *gin.Context) {
	var req CreateListingRequest
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

	provider, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: err.Error(),
		})
		return
	}

	listing, err := h.foodService.CreateListing(c.Request.Context(), provider, service.CreateListingParams{
		Name:            req.Name,
		Description:     req.Description,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		Quantity:        req.Quantity,
		PickupDate:      req.PickupDate,
		PickupStart:     req.PickupStart,
		PickupEnd:       req.PickupEnd,
		Location:        req.Location,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		DietaryInfo:     req.DietaryInfo,
		ImageEmoji:      req.ImageEmoji,
		CO2Saved:        req.CO2Saved,
	})
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrNotProviderRole):
			code = http.StatusForbidden
			errorCode = 40302
		case errors.Is(err, service.ErrInvalidQuantity):
			code = http.StatusBadRequest
			errorCode = 40005
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "发布成功",
		"data":    toListingInfo(listing),
	})
}

// ListAvailable 可预订发布列表
// @Summary      可预订发布列表
// @Description  查询可预订的食物发布，支持按供餐方类型筛选和关键词搜索
// @Tags         食物
// @Produce      json
// @Param        provider_type  query     string  false  "供餐方类型"
// @Param        search         query     string  false  "名称/描述关键词"
// @Param        is_free        query     bool    false  "只看免费"
// @Param        page           query     int     false  "页码，默认1"
// @Param        page_size      query     int     false  "每页条数，默认20"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/food/listings [get]
func (h *Handler) ListAvailable(c *gin.Context) {
	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	listings, total, err := h.foodService.ListAvailable(
		c.Request.Context(),
		c.Query("provider_type"),
		c.Query("search"),
		c.Query("is_free") == "true",
		page, pageSize,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询发布失败",
		})
		return
	}

	infos := make([]ListingInfo, 0, len(listings))
	for _, l := range listings {
		infos = append(infos, toListingInfo(l))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"listings":  infos,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// ListMine 我的发布列表
// @Summary      我的发布列表
// @Description  供餐方查询自己的全部发布
// @Tags         食物
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int  false  "页码，默认1"
// @Param        page_size  query     int  false  "每页条数，默认20"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/food/my/listings [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	pageSize, _ := strconv.ParseInt(c.DefaultQuery("page_size", "20"), 10, 64)
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	listings, total, err := h.foodService.ListByProvider(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询发布失败",
		})
		return
	}

	infos := make([]ListingInfo, 0, len(listings))
	for _, l := range listings {
		infos = append(infos, toListingInfo(l))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"listings":  infos,
			"total":     total,
			"page":      page,
			"page_size": pageSize,
		},
	})
}

// GetListing 发布详情
// @Summary      发布详情
// @Description  查询食物发布详情
// @Tags         食物
// @Produce      json
// @Param        id   path      string  true  "发布ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/food/listings/{id} [get]
func (h *Handler) GetListing(c *gin.Context) {
	listing, err := h.foodService.GetListing(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Code:    40404,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toListingInfo(listing),
	})
}

// UpdateListing 更新发布
// @Summary      更新发布
// @Description  供餐方更新自己的发布，缺省字段不变
// @Tags         食物
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                true  "发布ID"
// @Param        request  body      UpdateListingRequest  true  "更新请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /api/v1/food/listings/{id} [put]
func (h *Handler) UpdateListing(c *gin.Context) {
	var req UpdateListingRequest
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

	listing, err := h.foodService.UpdateListing(c.Request.Context(), userID, c.Param("id"), service.UpdateListingParams{
		Name:            req.Name,
		Description:     req.Description,
		OriginalPrice:   req.OriginalPrice,
		DiscountedPrice: req.DiscountedPrice,
		PickupDate:      req.PickupDate,
		PickupStart:     req.PickupStart,
		PickupEnd:       req.PickupEnd,
		Location:        req.Location,
		DietaryInfo:     req.DietaryInfo,
		ImageEmoji:      req.ImageEmoji,
	})
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrListingNotFound):
			code = http.StatusNotFound
			errorCode = 40404
		case errors.Is(err, service.ErrNotListingOwner):
			code = http.StatusForbidden
			errorCode = 40303
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    toListingInfo(listing),
	})
}

// DeleteListing 下架发布
// @Summary      下架发布
// @Description  供餐方下架自己的发布（软删除）
// @Tags         食物
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "发布ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/food/listings/{id} [delete]
func (h *Handler) DeleteListing(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	if err := h.foodService.DeleteListing(c.Request.Context(), userID, c.Param("id")); err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrListingNotFound):
			code = http.StatusNotFound
			errorCode = 40404
		case errors.Is(err, service.ErrNotListingOwner):
			code = http.StatusForbidden
			errorCode = 40303
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "发布已下架",
	})
}
