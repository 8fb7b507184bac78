package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	mongoClient *mongo.Client
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(mongoClient *mongo.Client) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
	}
}

// Health 健康检查
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "kindbite",
	})
}

// Ready 就绪检查（含MongoDB连通性）
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.mongoClient != nil {
		if err := h.mongoClient.Ping(c.Request.Context(), nil); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"detail": "mongodb unreachable",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}
