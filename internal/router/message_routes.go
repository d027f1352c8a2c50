// Package router 提供 HTTP 路由注册
// 本文件定义私聊消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册私聊消息路由（需要认证）
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.POST("/send", rt.withSend(rt.handlers.Message.Send)...)
		messageGroup.GET("/conversations", rt.handlers.Message.Conversations)
		messageGroup.GET("/conversation/:user_id", rt.handlers.Message.Conversation)
		messageGroup.POST("/read/:user_id", rt.handlers.Message.MarkRead)
		messageGroup.DELETE("/:message_id", rt.handlers.Message.Delete)
	}
}
