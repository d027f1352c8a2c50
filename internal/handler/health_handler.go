package handler

import (
	"context"
	"net/http"
	"time"

	wsgateway "friend_chat_server/internal/gateway/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger 存活探测，mysql/redis 连接实现
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler 健康检查
type HealthHandler struct {
	pinger   Pinger // 可为 nil
	registry *wsgateway.Registry
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(pinger Pinger, registry *wsgateway.Registry) *HealthHandler {
	return &HealthHandler{pinger: pinger, registry: registry}
}

// Health GET /health
// 依赖不可用时返回 503，供负载均衡摘除实例
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	if h.registry != nil {
		body["online"] = h.registry.Count()
	}
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			zap.L().Warn("health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
		}
	}
	c.JSON(status, body)
}
