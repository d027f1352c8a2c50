// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接升级
package handler

import (
	"context"

	"friend_chat_server/internal/service/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler 长连接入口
type WsHandler struct {
	server *chat.ChatServer
}

// NewWsHandler 创建长连接处理器
func NewWsHandler(server *chat.ChatServer) *WsHandler {
	return &WsHandler{server: server}
}

// Connect 升级为 WebSocket 并挂到 ChatServer
// GET /wss?token=xxx
// 用户身份只取 JWT，同一用户的新连接会顶掉旧连接
func (h *WsHandler) Connect(c *gin.Context) {
	userId := currentUserId(c)
	conn, err := chat.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade 失败时已写回 HTTP 错误
		zap.L().Warn("websocket upgrade failed", zap.String("user_id", userId), zap.Error(err))
		return
	}
	// 连接的生命周期长于本次请求
	h.server.Attach(context.WithoutCancel(c.Request.Context()), userId, conn)
}
