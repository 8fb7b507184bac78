package chat

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kindbite/internal/model/chat"
	"kindbite/internal/service"
)

// KnowledgeEntryRequest 知识库条目请求（创建和更新共用）
type KnowledgeEntryRequest struct {
	Title    string   `json:"title"`     // 标题
	Category string   `json:"category"`  // 分类
	Content  string   `json:"content"`   // 正文
	Keywords []string `json:"keywords"`  // 匹配关键词
	Priority int      `json:"priority"`  // 优先级
	IsActive *bool    `json:"is_active"` // 是否有效
}

// KnowledgeEntryInfo 知识库条目信息（用于响应）
type KnowledgeEntryInfo struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Content   string   `json:"content"`
	Keywords  []string `json:"keywords"`
	Priority  int      `json:"priority"`
	IsActive  bool     `json:"is_active"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// toKnowledgeEntryInfo 将KnowledgeEntry实体转换为KnowledgeEntryInfo
func toKnowledgeEntryInfo(e *chat.KnowledgeEntry) KnowledgeEntryInfo {
	return KnowledgeEntryInfo{
		ID:        e.ID,
		Title:     e.Title,
		Category:  string(e.Category),
		Content:   e.Content,
		Keywords:  e.Keywords,
		Priority:  e.Priority,
		IsActive:  e.IsActive,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}

// knowledgeError 知识库操作的统一错误映射
func knowledgeError(c *gin.Context, err error) {
	code := http.StatusInternalServerError
	errorCode := 50001

	switch {
	case errors.Is(err, service.ErrKnowledgeNotFound):
		code = http.StatusNotFound
		errorCode = 40407
	case errors.Is(err, service.ErrInvalidCategory):
		code = http.StatusBadRequest
		errorCode = 40008
	}

	c.JSON(code, ErrorResponse{
		Code:    errorCode,
		Message: err.Error(),
	})
}

// ListKnowledge 知识库条目列表
// @Summary      知识库条目列表
// @Description  查询知识库条目，支持按分类筛选（仅管理员）
// @Tags         知识库管理
// @Produce      json
// @Security     BearerAuth
// @Param        category     query     string  false  "分类筛选"
// @Param        active_only  query     bool    false  "只返回有效条目"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /api/v1/admin/knowledge [get]
func (h *Handler) ListKnowledge(c *gin.Context) {
	entries, err := h.knowledgeService.ListEntries(c.Request.Context(), c.Query("category"), c.Query("active_only") == "true")
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    50001,
			Message: "查询知识库失败",
		})
		return
	}

	infos := make([]KnowledgeEntryInfo, 0, len(entries))
	for _, e := range entries {
		infos = append(infos, toKnowledgeEntryInfo(e))
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    gin.H{"entries": infos},
	})
}

// CreateKnowledge 创建知识库条目
// @Summary      创建知识库条目
// @Description  创建AI聊天回退路径使用的知识库条目（仅管理员）
// @Tags         知识库管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      KnowledgeEntryRequest  true  "条目内容"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Router       /api/v1/admin/knowledge [post]
func (h *Handler) CreateKnowledge(c *gin.Context) {
	var req KnowledgeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}
	if req.Title == "" || req.Content == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "标题和正文不能为空",
		})
		return
	}

	entry, err := h.knowledgeService.CreateEntry(c.Request.Context(), service.KnowledgeEntryParams{
		Title:    req.Title,
		Category: chat.KnowledgeCategory(req.Category),
		Content:  req.Content,
		Keywords: req.Keywords,
		Priority: req.Priority,
		IsActive: req.IsActive,
	})
	if err != nil {
		knowledgeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "创建成功",
		"data":    toKnowledgeEntryInfo(entry),
	})
}

// GetKnowledge 知识库条目详情
// @Summary      知识库条目详情
// @Description  查询单个知识库条目（仅管理员）
// @Tags         知识库管理
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "条目ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/admin/knowledge/{id} [get]
func (h *Handler) GetKnowledge(c *gin.Context) {
	entry, err := h.knowledgeService.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		knowledgeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "success",
		"data":    toKnowledgeEntryInfo(entry),
	})
}

// UpdateKnowledge 更新知识库条目
// @Summary      更新知识库条目
// @Description  更新知识库条目，只更新请求中出现的字段（仅管理员）
// @Tags         知识库管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                 true  "条目ID"
// @Param        request  body      KnowledgeEntryRequest  true  "更新内容"
// @Success      200     {object}  map[string]interface{}
// @Failure      400     {object}  ErrorResponse
// @Failure      401     {object}  ErrorResponse
// @Failure      403     {object}  ErrorResponse
// @Failure      404     {object}  ErrorResponse
// @Router       /api/v1/admin/knowledge/{id} [put]
func (h *Handler) UpdateKnowledge(c *gin.Context) {
	var req KnowledgeEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Code:    40001,
			Message: "Invalid request body",
			Detail:  err.Error(),
		})
		return
	}

	entry, err := h.knowledgeService.UpdateEntry(c.Request.Context(), c.Param("id"), service.KnowledgeEntryParams{
		Title:    req.Title,
		Category: chat.KnowledgeCategory(req.Category),
		Content:  req.Content,
		Keywords: req.Keywords,
		Priority: req.Priority,
		IsActive: req.IsActive,
	})
	if err != nil {
		knowledgeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "更新成功",
		"data":    toKnowledgeEntryInfo(entry),
	})
}

// DeleteKnowledge 删除知识库条目
// @Summary      删除知识库条目
// @Description  删除知识库条目（仅管理员）
// @Tags         知识库管理
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "条目ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /api/v1/admin/knowledge/{id} [delete]
func (h *Handler) DeleteKnowledge(c *gin.Context) {
	if err := h.knowledgeService.DeleteEntry(c.Request.Context(), c.Param("id")); err != nil {
		knowledgeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "条目已删除",
	})
}
