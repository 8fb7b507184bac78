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

// ImageInfo 图片信息（用于响应）
type ImageInfo struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	URL       string `json:"url"`
	AltText   string `json:"alt_text,omitempty"`
	IsPrimary bool   `json:"is_primary"`
	CreatedAt string `json:"created_at"`
}

// toImageInfo 将Image实体转换为ImageInfo
func toImageInfo(i *food.Image) ImageInfo {
	return ImageInfo{
		ID:        i.ID,
		ListingID: i.ListingID,
		URL:       i.URL,
		AltText:   i.AltText,
		IsPrimary: i.IsPrimary,
		CreatedAt: i.CreatedAt.Format(time.RFC3339),
	}
}

// UploadImage 上传图片
// @Summary      上传食物图片
// @Description  供餐方为自己的发布上传图片（multipart表单，file字段）
// @Tags         食物
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id          path      string  true   "发布ID"
// @Param        file        formData  file    true   "图片文件"
// @Param        is_primary  formData  bool    false  "是否设为主图"
// @Param        alt_text    formData  string  false  "替代文本"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/food/listings/{id}/images [post]
func (h *Handler) UploadImage(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "缺少图片文件",
			Detail:  err.Error(),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "读取图片文件失败",
			Detail:  err.Error(),
		})
		return
	}
	defer file.Close()

	isPrimary := c.PostForm("is_primary") == "true"
	altText := c.PostForm("alt_text")

	image, err := h.foodService.UploadImage(c.Request.Context(), userID, c.Param("id"), fileHeader.Filename, file, isPrimary, altText)
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
		case errors.Is(err, service.ErrInvalidImageType):
			code = http.StatusBadRequest
			errorCode = 40007
		}

		c.JSON(code, ErrorResponse{
			Code:    errorCode,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "上传成功",
		"data":    toImageInfo(image),
	})
}

// ListImages 图片列表
// @Summary      图片列表
// @Description  查询发布的图片列表，主图在前
// @Tags         食物
// @Produce      json
// @Param        id   path      string  true  "发布ID"
// @Success      200  {object}  map[string]interface{}
// @Router       /api/v1/food/listings/{id}/images [get]
func (h *Handler) ListImages(c *gin.Context) {
	images, err := h.foodService.ListImages(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询图片失败",
		})
		return
	}

	infos := make([]ImageInfo, 0, len(images))
	for _, i := range images {
		infos = append(infos, toImageInfo(i))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"images": infos},
	})
}

// imageURLExpiry 预签名下载URL的有效期
const imageURLExpiry = 15 * time.Minute

// GetImageURL 获取图片下载地址
// @Summary      获取图片下载地址
// @Description  返回图片的预签名下载URL（本地存储直接返回公开URL）
// @Tags         食物
// @Produce      json
// @Param        image_id  path      string  true  "图片ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/food/images/{image_id}/url [get]
func (h *Handler) GetImageURL(c *gin.Context) {
	url, err := h.foodService.ImageDownloadURL(c.Request.Context(), c.Param("image_id"), imageURLExpiry)
	if err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		if errors.Is(err, service.ErrImageNotFound) {
			code = http.StatusNotFound
			errorCode = 40406
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
		"data":    gin.H{"url": url},
	})
}

// DeleteImage 删除图片
// @Summary      删除图片
// @Description  供餐方删除自己发布的图片
// @Tags         食物
// @Produce      json
// @Security     BearerAuth
// @Param        image_id  path      string  true  "图片ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/food/images/{image_id} [delete]
func (h *Handler) DeleteImage(c *gin.Context) {
	userID, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    40101,
			Message: "未授权",
		})
		return
	}

	if err := h.foodService.DeleteImage(c.Request.Context(), userID, c.Param("image_id")); err != nil {
		code := http.StatusInternalServerError
		errorCode := 50001

		switch {
		case errors.Is(err, service.ErrImageNotFound), errors.Is(err, service.ErrListingNotFound):
			code = http.StatusNotFound
			errorCode = 40406
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
		"message": "图片已删除",
	})
}
