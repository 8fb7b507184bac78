package food

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kindbite/internal/pkg/ctxutil"
	"kindbite/internal/service"
)

// ReserveRequest 创建预订请求
type ReserveRequest struct {
	ListingID           string `json:"listing_id" binding:"required"`     // 发布ID（必填）
	Quantity            int    `json:"quantity" binding:"required,min=1"` // 数量（必填）
	SpecialInstructions string `json:"special_instructions"`              // 备注
}

// ConfirmRequest 确认预订请求
type ConfirmRequest struct {
	ProviderNotes string `json:"provider_notes"` // 供餐方备注
}

// ReserveResponseData 创建预订响应数据
type ReserveResponseData struct {
	Reservation ReservationInfo `json:"reservation"`  // 预订信息
	CoinsEarned int             `json:"coins_earned"` // 本次获得的KindCoins
	Listing     ListingInfo     `json:"listing"`      // 预订后的发布信息
}

// Reserve 创建预订
// @Summary      创建预订
// @Description  预订一批食物，库存校验和扣减原子完成，成功后发放KindCoins奖励
// @Tags         预订
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      ReserveRequest  true  "预订请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Router       /api/v1/food/reservations [post]
func (h *Handler) Reserve(c *gin.Context) {
	var req ReserveRequest
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

	resp, err := h.reservationService.Reserve(c.Request.Context(), userID, req.ListingID, req.Quantity, req.SpecialInstructions)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrListingNotFound):
			code = http.StatusNotFound
			errorCode = 40404
		case errors.Is(err, service.ErrInvalidQuantity):
			code = http.StatusBadRequest
			errorCode = 40005
		case errors.Is(err, service.ErrListingUnavailable), errors.Is(err, service.ErrInsufficientQuantity):
			code = http.StatusConflict
			errorCode = 40902
		case errors.Is(err, service.ErrDuplicateReservation):
			code = http.StatusConflict
			errorCode = 40903
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	data := ReserveResponseData{
		Reservation: toReservationInfo(resp.Reservation),
		CoinsEarned: resp.CoinsEarned,
	}
	if resp.Listing != nil {
		data.Listing = toListingInfo(resp.Listing)
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "预订成功",
		"data":    data,
	})
}

// ListMyReservations 我的预订列表
// @Summary      我的预订列表
// @Description  查询当前用户的预订（按预订时间倒序）及累计获得的KindCoins
// @Tags         预订
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Router       /api/v1/food/reservations [get]
func (h *Handler) ListMyReservations(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	reservations, err := h.reservationService.ListMyReservations(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询预订失败",
		})
		return
	}

	totalCoins, err := h.reservationService.TotalKindCoinsEarned(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询预订失败",
		})
		return
	}

	infos := make([]ReservationInfo, 0, len(reservations))
	for _, r := range reservations {
		infos = append(infos, toReservationInfo(r))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data": gin.H{
			"reservations":           infos,
			"total_kindcoins_earned": totalCoins,
		},
	})
}

// GetReservation 预订详情
// @Summary      预订详情
// @Description  查询预订详情（仅限预订用户或供餐方）
// @Tags         预订
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "预订ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/food/reservations/{id} [get]
func (h *Handler) GetReservation(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	reservation, err := h.reservationService.GetReservation(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			code = http.StatusNotFound
			errorCode = 40405
		case errors.Is(err, service.ErrNotReservationOwner):
			code = http.StatusForbidden
			errorCode = 40304
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
		"data":    toReservationInfo(reservation),
	})
}

// reservationStatusError 预订状态操作的统一错误映射
func reservationStatusError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	errorCode := 50001

	switch {
	case errors.Is(err, service.ErrReservationNotFound), errors.Is(err, service.ErrListingNotFound):
		code = http.StatusNotFound
		errorCode = 40405
	case errors.Is(err, service.ErrNotReservationOwner):
		code = http.StatusForbidden
		errorCode = 40304
	case errors.Is(err, service.ErrInvalidTransition):
		code = http.StatusConflict
		errorCode = 40904
	}

	c.JSON(code, ErrorResponse{
		Code:    errorCode,
		Message: err.Error(),
	})
}

// CancelReservation 取消预订
// @Summary      取消预订
// @Description  取消预订，归还库存并收回KindCoins奖励
// @Tags         预订
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "预订ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/v1/food/reservations/{id}/cancel [post]
func (h *Handler) CancelReservation(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	if err := h.reservationService.Cancel(c.Request.Context(), userID, c.Param("id")); err != nil {
		reservationStatusError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "预订已取消",
	})
}

// ConfirmReservation 确认预订
// @Summary      确认预订
// @Description  供餐方确认预订
// @Tags         预订
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string          true   "预订ID"
// @Param        request  body      ConfirmRequest  false  "确认请求"
// @Success      200     {object}  map[string]interface{}
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Failure      409     {object}  ErrorResponse
// @Router       /api/v1/food/reservations/{id}/confirm [post]
func (h *Handler) ConfirmReservation(c *gin.Context) {
	var req ConfirmRequest
	// body可为空
	_ = c.ShouldBindJSON(&req)

	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	if err := h.reservationService.Confirm(c.Request.Context(), userID, c.Param("id"), req.ProviderNotes); err != nil {
		reservationStatusError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "预订已确认",
	})
}

// PickupReservation 标记已取餐
// @Summary      标记已取餐
// @Description  觅食者或供餐方标记预订已完成取餐
// @Tags         预订
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "预订ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/v1/food/reservations/{id}/pickup [post]
func (h *Handler) PickupReservation(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	if err := h.reservationService.MarkPickedUp(c.Request.Context(), userID, c.Param("id")); err != nil {
		reservationStatusError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已标记取餐",
	})
}

// NoShowReservation 标记未到店
// @Summary      标记未到店
// @Description  供餐方标记觅食者未在取餐窗口到店，归还库存并收回奖励
// @Tags         预订
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "预订ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /api/v1/food/reservations/{id}/noshow [post]
func (h *Handler) NoShowReservation(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	if err := h.reservationService.MarkNoShow(c.Request.Context(), userID, c.Param("id")); err != nil {
		reservationStatusError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "已标记未到店",
	})
}
