// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 路由
package router

import (
	"friend_chat_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 路由
// 浏览器无法为 WebSocket 设置请求头，Token 可放在查询参数中
// 请求示例: ws://host:port/wss?token=xxx
func (rt *Router) RegisterWebSocketRoutes(r *gin.Engine) {
	r.GET("/wss", middleware.JWTAuthWS(), rt.handlers.Ws.Connect)
}
