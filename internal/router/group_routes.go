// Package router 提供 HTTP 路由注册
// 本文件定义群组相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterGroupRoutes 注册群组路由（需要认证）
func (rt *Router) RegisterGroupRoutes(rg *gin.RouterGroup) {
	groupGroup := rg.Group("/group")
	{
		groupGroup.POST("/create", rt.handlers.Group.Create)
		groupGroup.GET("/mine", rt.handlers.Group.MyGroups)
		groupGroup.GET("/:group_id", rt.handlers.Group.Get)
		groupGroup.POST("/:group_id/leave", rt.handlers.Group.Leave)

		// ===== 成员管理（仅管理员） =====
		groupGroup.POST("/:group_id/members", rt.handlers.Group.AddMember)
		groupGroup.DELETE("/:group_id/members/:user_id", rt.handlers.Group.RemoveMember)

		// ===== 群消息 =====
		groupGroup.POST("/:group_id/messages", rt.withSend(rt.handlers.Group.SendMessage)...)
		groupGroup.GET("/:group_id/messages", rt.handlers.Group.Messages)
	}
}
